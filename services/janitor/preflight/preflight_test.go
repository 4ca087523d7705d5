// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package preflight_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/preflight"
)

func initRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		require.NoError(t, cmd.Run())
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("def main():\n    pass\n"), 0o644))
	run("add", ".")
	run("commit", "-q", "-m", "init")
	return root
}

func TestCheck_PassesCleanTree(t *testing.T) {
	root := initRepo(t)
	res, err := preflight.Check(context.Background(), root, preflight.Config{})
	require.NoError(t, err)
	require.True(t, res.Passed)
}

func TestCheck_BlocksDirtyTreeWithoutForce(t *testing.T) {
	root := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("def main():\n    return 1\n"), 0o644))

	res, err := preflight.Check(context.Background(), root, preflight.Config{})
	require.NoError(t, err)
	require.False(t, res.Passed)
	require.NotEmpty(t, res.BlockedReason)
}

func TestCheck_ForcePassesDespiteDirtyTree(t *testing.T) {
	root := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte("def main():\n    return 1\n"), 0o644))

	res, err := preflight.Check(context.Background(), root, preflight.Config{Force: true})
	require.NoError(t, err)
	require.True(t, res.Passed)
}

func TestCheck_NonGitRepoPasses(t *testing.T) {
	root := t.TempDir()
	res, err := preflight.Check(context.Background(), root, preflight.Config{})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.True(t, res.NotGitRepo)
}
