// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package registry implements the disk-backed, memory-mappable symbol
// archive: every Entity found by a scan, in a fixed-width row shape, sorted
// by a stable 64-bit id so a reader can binary-search it without
// deserializing the whole file.
package registry

import (
	"hash/fnv"

	"github.com/codejanitor/janitor/services/janitor/ast"
)

// SymbolEntry is one archived row: the same fields as ast.Entity, plus the
// stable Id used for lookup and sort order.
type SymbolEntry struct {
	ID             uint64
	Name           string
	QualifiedName  string
	Kind           ast.Kind
	FilePath       string
	StartByte      uint32
	EndByte        uint32
	StartLine      uint32
	EndLine        uint32
	ParentClass    string
	BaseClasses    []string
	Decorators     []string
	ProtectedBy    ast.Protection
	StructuralHash uint64
	HasHash        bool
}

// ID computes the stable 64-bit symbol id from "file_path::qualified_name",
// using FNV-1a — deterministic across runs and platforms, which is all the
// registry's sort-and-binary-search contract requires.
func ID(filePath, qualifiedName string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(filePath))
	h.Write([]byte("::"))
	h.Write([]byte(qualifiedName))
	return h.Sum64()
}

// FromEntity converts an extracted Entity into an archivable SymbolEntry.
func FromEntity(e *ast.Entity) SymbolEntry {
	return SymbolEntry{
		ID:             ID(e.FilePath, e.QualifiedName),
		Name:           e.Name,
		QualifiedName:  e.QualifiedName,
		Kind:           e.Kind,
		FilePath:       e.FilePath,
		StartByte:      e.StartByte,
		EndByte:        e.EndByte,
		StartLine:      uint32(e.StartLine),
		EndLine:        uint32(e.EndLine),
		ParentClass:    e.ParentClass,
		BaseClasses:    e.BaseClasses,
		Decorators:     e.Decorators,
		ProtectedBy:    e.ProtectedBy,
		StructuralHash: e.StructuralHash,
		HasHash:        e.HasHash,
	}
}
