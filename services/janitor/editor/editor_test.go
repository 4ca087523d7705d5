// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package editor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/editor"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEditor_DeleteSymbolsRemovesRangeAndTrailingNewline(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "utils.py", "def dead():\n    pass\n\n\ndef alive():\n    pass\n")

	e := editor.New(root)
	err := e.DeleteSymbols(file, []editor.Target{{StartByte: 0, EndByte: uint32(len("def dead():\n    pass\n"))}})
	require.NoError(t, err)

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "\ndef alive():\n    pass\n", string(got))
}

func TestEditor_RestoreAllReturnsExactOriginalBytes(t *testing.T) {
	root := t.TempDir()
	original := "def dead():\n    pass\n\n\ndef alive():\n    pass\n"
	file := writeFile(t, root, "utils.py", original)

	e := editor.New(root)
	require.NoError(t, e.DeleteSymbols(file, []editor.Target{{StartByte: 0, EndByte: 5}}))
	require.NoError(t, e.RestoreAll())

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, original, string(got))
}

func TestEditor_CommitRemovesBackups(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "utils.py", "def dead():\n    pass\n")

	e := editor.New(root)
	require.NoError(t, e.DeleteSymbols(file, []editor.Target{{StartByte: 0, EndByte: 5}}))
	require.NoError(t, e.Commit())

	entries, err := os.ReadDir(filepath.Join(root, editor.GhostDirName))
	require.NoError(t, err)
	require.Empty(t, entries)
}

// Scenario 7 (spec §8): a 4-byte emoji straddling a target range must snap
// outward to its full boundary and splice without panic.
func TestEditor_DeleteSymbolsSnapsUTF8Boundary(t *testing.T) {
	root := t.TempDir()
	emoji := "\U0001F680" // 4 bytes
	content := "x = \"" + emoji + "\"\n"
	file := writeFile(t, root, "a.py", content)

	p := uint32(len("x = \""))
	e := editor.New(root)
	err := e.DeleteSymbols(file, []editor.Target{{StartByte: p + 1, EndByte: p + 2}})
	require.NoError(t, err)

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "x = \"\"\n", string(got))
}

func TestEditor_ReplaceSymbolsSplicesReplacement(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "a.py", "def f():\n    return 1\n")

	bodyStart := uint32(len("def f():\n    return "))
	bodyEnd := uint32(len("def f():\n    return 1"))

	e := editor.New(root)
	err := e.ReplaceSymbols(file, []editor.Target{{StartByte: bodyStart, EndByte: bodyEnd, Replacement: []byte("2")}})
	require.NoError(t, err)

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "def f():\n    return 2\n", string(got))
}

func TestPreviewSplice_DoesNotWriteFile(t *testing.T) {
	root := t.TempDir()
	content := "def dead():\n    pass\n"
	file := writeFile(t, root, "a.py", content)

	preview, err := editor.PreviewSplice(file, []editor.Target{{StartByte: 0, EndByte: uint32(len(content))}}, true)
	require.NoError(t, err)
	require.NotEmpty(t, preview.Text)
	require.Equal(t, 2, preview.Removed)

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, content, string(got))
}
