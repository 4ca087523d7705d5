// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wisdom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/wisdom"
)

func TestClassifyFile_DunderIsLifecycleMethod(t *testing.T) {
	content := []byte("class Foo:\n    def __init__(self): pass\n")
	e := &ast.Entity{Name: "__init__", QualifiedName: "Foo.__init__", Kind: ast.KindMethod, StartByte: 15, EndByte: 42}
	wisdom.ClassifyFile([]*ast.Entity{e}, content, wisdom.ComputeFileFlags("models.py", content, nil))
	require.Equal(t, ast.ProtectionLifecycleMethod, e.ProtectedBy)
}

func TestClassifyFile_FastApiDependsIsOverride(t *testing.T) {
	content := []byte("def get_db():\n    return Depends(session_factory)\n")
	e := &ast.Entity{Name: "get_db", QualifiedName: "get_db", Kind: ast.KindFunction, StartByte: 0, EndByte: uint32(len(content))}
	flags := wisdom.ComputeFileFlags("deps.py", content, nil)
	require.True(t, flags.HasDI)
	wisdom.ClassifyFile([]*ast.Entity{e}, content, flags)
	require.Equal(t, ast.ProtectionFastApiOverride, e.ProtectedBy)
}

func TestClassifyFile_AllExportsIsPackageExport(t *testing.T) {
	content := []byte("__all__ = ['helper']\n\ndef helper(): pass\n")
	e := &ast.Entity{Name: "helper", QualifiedName: "helper", Kind: ast.KindFunction, StartByte: 23, EndByte: uint32(len(content))}
	flags := wisdom.ComputeFileFlags("utils.py", content, nil)
	wisdom.ClassifyFile([]*ast.Entity{e}, content, flags)
	require.Equal(t, ast.ProtectionPackageExport, e.ProtectedBy)
}

func TestClassifyFile_PluginDirPublicIsEntryPoint(t *testing.T) {
	content := []byte("def run(): pass\n")
	e := &ast.Entity{Name: "run", QualifiedName: "run", Kind: ast.KindFunction, StartByte: 0, EndByte: uint32(len(content))}
	flags := wisdom.ComputeFileFlags("plugins/foo.py", content, nil)
	require.True(t, flags.IsPluginDir)
	wisdom.ClassifyFile([]*ast.Entity{e}, content, flags)
	require.Equal(t, ast.ProtectionEntryPoint, e.ProtectedBy)
}

func TestClassifyFile_AlreadyProtectedIsSkipped(t *testing.T) {
	content := []byte("def helper(): pass\n")
	e := &ast.Entity{Name: "helper", ProtectedBy: ast.ProtectionReferenced}
	wisdom.ClassifyFile([]*ast.Entity{e}, content, wisdom.ComputeFileFlags("x.py", content, nil))
	require.Equal(t, ast.ProtectionReferenced, e.ProtectedBy)
}
