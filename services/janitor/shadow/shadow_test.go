// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package shadow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/shadow"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Scenario 6 (spec §8): shadow-sim rollback. Initialize, unmap a.py,
// (a failing test run would happen in the caller), remap a.py; verify
// shadow_src/a.py is again a valid symlink and the real file's bytes are
// unchanged.
func TestShadowTree_UnmapThenRemapRestoresSymlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "def a(): pass\n")
	writeFile(t, root, "b.py", "def b(): pass\n")

	tr, err := shadow.Initialize(root, nil)
	require.NoError(t, err)

	broken, err := tr.VerifyIntegrity()
	require.NoError(t, err)
	require.Empty(t, broken)

	require.NoError(t, tr.Unmap("a.py"))

	link := filepath.Join(root, shadow.ShadowDirName, "a.py")
	_, err = os.Lstat(link)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, tr.Remap("a.py"))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	require.True(t, info.Mode()&os.ModeSymlink != 0)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "def a(): pass\n", string(content))
}

func TestShadowTree_OpenWithoutInitializeFails(t *testing.T) {
	root := t.TempDir()
	_, err := shadow.Open(root, nil)
	require.ErrorIs(t, err, shadow.ErrNotInitialized)
}

func TestShadowTree_MoveToGhostVaultsFileAndRemovesSymlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dead.py", "def dead(): pass\n")

	tr, err := shadow.Initialize(root, nil)
	require.NoError(t, err)

	require.NoError(t, tr.MoveToGhost("dead.py"))

	link := filepath.Join(root, shadow.ShadowDirName, "dead.py")
	_, err = os.Lstat(link)
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(root, "dead.py"))
	require.True(t, os.IsNotExist(err), "the real file must be gone from its original location")

	content, err := os.ReadFile(filepath.Join(root, ".janitor", "ghost", "dead.py"))
	require.NoError(t, err)
	require.Equal(t, "def dead(): pass\n", string(content))
}
