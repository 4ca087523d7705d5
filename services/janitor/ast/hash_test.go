// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/require"
)

func hashOfFunction(t *testing.T, src string, funcIndex int) uint64 {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)

	root := tree.RootNode()
	var funcs []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "function_definition" {
			funcs = append(funcs, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	require.Greater(t, len(funcs), funcIndex)

	body := funcs[funcIndex].ChildByFieldName("body")
	require.NotNil(t, body)
	return StructuralHash(body, []byte(src))
}

func TestStructuralHash_RenamingDoesNotChangeHash(t *testing.T) {
	h1 := hashOfFunction(t, "def add(a, b):\n    return a + b\n", 0)
	h2 := hashOfFunction(t, "def sum(x, y):\n    return x + y\n", 0)
	require.Equal(t, h1, h2)
}

func TestStructuralHash_OperatorChangeChangesHash(t *testing.T) {
	h1 := hashOfFunction(t, "def add(a, b):\n    return a + b\n", 0)
	h2 := hashOfFunction(t, "def sub(a, b):\n    return a - b\n", 0)
	require.NotEqual(t, h1, h2)
}

func TestStructuralHash_DocstringDoesNotChangeHash(t *testing.T) {
	h1 := hashOfFunction(t, "def add(a, b):\n    return a + b\n", 0)
	h2 := hashOfFunction(t, "def add(a, b):\n    \"\"\"Adds two numbers.\"\"\"\n    return a + b\n", 0)
	require.Equal(t, h1, h2)
}

func TestStructuralHash_Deterministic(t *testing.T) {
	h1 := hashOfFunction(t, "def add(a, b):\n    return a + b\n", 0)
	h2 := hashOfFunction(t, "def add(a, b):\n    return a + b\n", 0)
	require.Equal(t, h1, h2)
}
