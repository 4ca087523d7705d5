// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/registry"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func build(t *testing.T, root string) *graph.BuildResult {
	t.Helper()
	b := graph.NewBuilder(ast.NewHost(), registry.ID, graph.DefaultBuildOptions())
	res, err := b.Build(context.Background(), root)
	require.NoError(t, err)
	return res
}

func entityID(res *graph.BuildResult, filePath, qualifiedName string) (uint64, bool) {
	for id, e := range res.Entities {
		if filepath.Base(e.FilePath) == filepath.Base(filePath) && e.QualifiedName == qualifiedName {
			return id, true
		}
	}
	return 0, false
}

// Scenario 1 (spec §8): a name bound by `from ... import` and called from
// another file wires exactly one edge from the caller to the callee.
func TestBuilder_TwoFileCallEdge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mod_a.py", "def helper(): pass\n")
	writeFile(t, root, "mod_b.py", "from mod_a import helper\n\ndef main():\n    helper()\n")

	res := build(t, root)

	mainID, ok := entityID(res, "mod_b.py", "main")
	require.True(t, ok)
	helperID, ok := entityID(res, "mod_a.py", "helper")
	require.True(t, ok)

	require.True(t, res.Graph.HasIncomingEdge(helperID))
	sources := res.Graph.IncomingSourceIDs(helperID)
	require.Equal(t, []uint64{mainID}, sources)
}

// Scenario 2: relative import.
func TestBuilder_RelativeImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/utils.py", "def util(): pass\n")
	writeFile(t, root, "pkg/main.py", "from .utils import util\n\ndef run():\n    util()\n")

	res := build(t, root)

	runID, ok := entityID(res, "main.py", "run")
	require.True(t, ok)
	utilID, ok := entityID(res, "utils.py", "util")
	require.True(t, ok)

	require.Equal(t, []uint64{runID}, res.Graph.IncomingSourceIDs(utilID))
}

// Scenario 3: attribute call via a bare import.
func TestBuilder_AttributeCallViaBareImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "utils.py", "def process(): pass\n")
	writeFile(t, root, "main.py", "import utils\n\ndef run():\n    utils.process()\n")

	res := build(t, root)

	runID, ok := entityID(res, "main.py", "run")
	require.True(t, ok)
	processID, ok := entityID(res, "utils.py", "process")
	require.True(t, ok)

	require.Equal(t, []uint64{runID}, res.Graph.IncomingSourceIDs(processID))
}

func TestBuilder_ExcludesConfiguredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "venv/lib/dead.py", "def dead(): pass\n")
	writeFile(t, root, "app.py", "def main(): pass\n")

	res := build(t, root)

	_, ok := entityID(res, "dead.py", "dead")
	require.False(t, ok, "venv/ must be excluded from the walk")
	_, ok = entityID(res, "app.py", "main")
	require.True(t, ok)
}
