// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dedup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/dedup"
)

// Scenario 4 (spec §8): structural dedup. add(a,b) and sum(x,y) share a
// hash; sub(a,b) does not.
func TestGroupByHash_GroupsStructurallyIdenticalFunctions(t *testing.T) {
	add := &ast.Entity{Name: "add", StructuralHash: 111, HasHash: true}
	sum := &ast.Entity{Name: "sum", StructuralHash: 111, HasHash: true}
	sub := &ast.Entity{Name: "sub", StructuralHash: 222, HasHash: true}

	groups := dedup.GroupByHash([]*ast.Entity{add, sum, sub})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Members, 2)
	require.Equal(t, uint64(111), groups[0].Hash)
}

func TestExtractParams_ReturnsLeadingIdentifiers(t *testing.T) {
	content := []byte("def add(a, b: int, c=3):\n    return a + b + c\n")
	e := &ast.Entity{Name: "add", StartByte: 0, EndByte: uint32(len(content))}

	raw, names, err := dedup.ExtractParams(content, e)
	require.NoError(t, err)
	require.Equal(t, "a, b: int, c=3", raw)
	require.Equal(t, []string{"a", "b", "c"}, names)
}

func TestBodyAfterSignature_ReturnsStatementsAfterColon(t *testing.T) {
	content := []byte("def add(a, b):\n    return a + b\n")
	e := &ast.Entity{Name: "add", StartByte: 0, EndByte: uint32(len(content))}

	body := dedup.BodyAfterSignature(content, e)
	require.Equal(t, "\n    return a + b\n", body)
}

func TestApply_RewritesSameFileGroupAndAppendsImpl(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "mathy.py")
	content := "def add(a, b):\n    return a + b\n\n\ndef total(x, y):\n    return x + y\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	add := &ast.Entity{Name: "add", FilePath: path, StartByte: 0, EndByte: uint32(len("def add(a, b):\n    return a + b\n")), StructuralHash: 42, HasHash: true}
	totalStart := uint32(len("def add(a, b):\n    return a + b\n\n\n"))
	total := &ast.Entity{Name: "total", FilePath: path, StartByte: totalStart, EndByte: uint32(len(content)), StructuralHash: 42, HasHash: true}

	groups := dedup.GroupByHash([]*ast.Entity{add, total})
	require.Len(t, groups, 1)

	results, err := dedup.Apply(context.Background(), groups, nil, dedup.Options{ProjectRoot: root})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Applied)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(got), "def _add_impl(a, b):")
	require.Contains(t, string(got), "return _add_impl(a, b)")
	require.Contains(t, string(got), "return _add_impl(x, y)")
}

func TestApply_SkipsCrossFileGroups(t *testing.T) {
	a := &ast.Entity{Name: "add", FilePath: "a.py", StructuralHash: 1, HasHash: true}
	b := &ast.Entity{Name: "sum", FilePath: "b.py", StructuralHash: 1, HasHash: true}

	groups := dedup.GroupByHash([]*ast.Entity{a, b})
	results, err := dedup.Apply(context.Background(), groups, nil, dedup.Options{ProjectRoot: t.TempDir()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Applied)
	require.NotEmpty(t, results[0].SkipReason)
}
