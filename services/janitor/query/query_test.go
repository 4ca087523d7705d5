// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/pipeline"
	"github.com/codejanitor/janitor/services/janitor/query"
	"github.com/codejanitor/janitor/services/janitor/registry"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// A dead chain: orphan calls dead_helper (imported from helpers.py, so the
// call is a graph edge), and nothing calls orphan. Both should show up under
// transitively_dead even though only orphan itself is unreferenced at the
// graph level — dead_helper's only caller is dead.
func TestRun_TransitivelyDeadFollowsDeadCallers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "helpers.py", "def dead_helper():\n    pass\n")
	writeFile(t, root, "chain.py", ""+
		"from helpers import dead_helper\n\n\n"+
		"def orphan():\n    dead_helper()\n\n\n"+
		"def main():\n    pass\n")

	b := graph.NewBuilder(ast.NewHost(), registry.ID, graph.DefaultBuildOptions())
	build, err := b.Build(context.Background(), root)
	require.NoError(t, err)

	scan, err := pipeline.Run(context.Background(), root, build, pipeline.DefaultOptions())
	require.NoError(t, err)

	res, err := query.Run(build, scan, query.Options{})
	require.NoError(t, err)
	require.Contains(t, res.TransitivelyDead, "orphan")
	require.Contains(t, res.TransitivelyDead, "dead_helper")
}

func TestBuildFacts_BuildsStoreWhenEverythingIsProtected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "def main():\n    pass\n")

	b := graph.NewBuilder(ast.NewHost(), registry.ID, graph.DefaultBuildOptions())
	build, err := b.Build(context.Background(), root)
	require.NoError(t, err)

	scan, err := pipeline.Run(context.Background(), root, build, pipeline.DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, scan.Dead)

	store := query.BuildFacts(build, scan)
	require.NotNil(t, store)
}
