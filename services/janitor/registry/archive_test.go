// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestTable_SaveOpen_RoundTrip(t *testing.T) {
	table := NewTable()
	table.Insert(SymbolEntry{
		ID: ID("b.py", "helper"), Name: "helper", QualifiedName: "helper",
		Kind: ast.KindFunction, FilePath: "b.py", StartByte: 0, EndByte: 10,
		StartLine: 1, EndLine: 1, BaseClasses: nil, Decorators: []string{"app.get(\"/\")"},
	})
	table.Insert(SymbolEntry{
		ID: ID("a.py", "Widget.render"), Name: "render", QualifiedName: "Widget.render",
		Kind: ast.KindMethod, FilePath: "a.py", StartByte: 20, EndByte: 40,
		StartLine: 3, EndLine: 5, ParentClass: "Widget", BaseClasses: []string{"Base", "Mixin"},
		StructuralHash: 0xDEADBEEF, HasHash: true,
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.janitor")
	require.NoError(t, table.Save(path))

	handle, err := Open(path)
	require.NoError(t, err)
	defer handle.Close()

	require.Equal(t, 2, handle.Len())

	all := handle.All()
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].ID, all[i].ID)
	}

	row, err := handle.FindByID(ID("a.py", "Widget.render"))
	require.NoError(t, err)
	require.Equal(t, "render", row.Name)
	require.Equal(t, "Widget", row.ParentClass)
	require.True(t, row.HasHash)
	require.Equal(t, uint64(0xDEADBEEF), row.StructuralHash)
	if diff := cmp.Diff([]string{"Base", "Mixin"}, row.BaseClasses); diff != "" {
		t.Fatalf("base classes mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_FindByID_NotFound(t *testing.T) {
	table := NewTable()
	table.Insert(SymbolEntry{ID: 1, Name: "x", QualifiedName: "x", FilePath: "x.py"})

	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.janitor")
	require.NoError(t, table.Save(path))

	handle, err := Open(path)
	require.NoError(t, err)
	defer handle.Close()

	_, err = handle.FindByID(999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_RejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.janitor")
	require.NoError(t, os.WriteFile(path, []byte("NOT A REAL ARCHIVE AT ALL, JUST GARBAGE BYTES PADDING OUT"), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrArchiveInvalid)
}
