// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ast hosts the per-language concrete-syntax-tree extractors.
//
// Each language driver wraps a tree-sitter grammar, runs a query over the
// parsed tree, and emits Entities: definitions with stable byte/line ranges
// and enough metadata (decorators, base classes, parent class) for the
// downstream reference graph and wisdom classifier to work without ever
// re-parsing the source.
package ast

// Kind enumerates the definitions the CST Host can extract.
type Kind uint8

const (
	KindFunction Kind = iota
	KindAsyncFunction
	KindClass
	KindMethod
	KindDecorated
	KindAssignment
	KindTypeAlias
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindAsyncFunction:
		return "AsyncFunction"
	case KindClass:
		return "Class"
	case KindMethod:
		return "Method"
	case KindDecorated:
		return "Decorated"
	case KindAssignment:
		return "Assignment"
	case KindTypeAlias:
		return "TypeAlias"
	default:
		return "Unknown"
	}
}

// Protection is the reason an Entity survived the elimination pipeline.
// A zero value (ProtectionNone) means the entity is still a deletion candidate.
type Protection uint8

const (
	ProtectionNone Protection = iota
	ProtectionDirectory
	ProtectionReferenced
	ProtectionWisdomRule
	ProtectionLibraryMode
	ProtectionPackageExport
	ProtectionConfigReference
	ProtectionMetaprogrammingDanger
	ProtectionLifecycleMethod
	ProtectionEntryPoint
	ProtectionQtAutoSlot
	ProtectionSqlAlchemyMeta
	ProtectionOrmLifecycle
	ProtectionPydanticAlias
	ProtectionFastApiOverride
	ProtectionPytestFixture
	ProtectionGrepShield
	ProtectionTestReference
)

func (p Protection) String() string {
	switch p {
	case ProtectionNone:
		return ""
	case ProtectionDirectory:
		return "Directory"
	case ProtectionReferenced:
		return "Referenced"
	case ProtectionWisdomRule:
		return "WisdomRule"
	case ProtectionLibraryMode:
		return "LibraryMode"
	case ProtectionPackageExport:
		return "PackageExport"
	case ProtectionConfigReference:
		return "ConfigReference"
	case ProtectionMetaprogrammingDanger:
		return "MetaprogrammingDanger"
	case ProtectionLifecycleMethod:
		return "LifecycleMethod"
	case ProtectionEntryPoint:
		return "EntryPoint"
	case ProtectionQtAutoSlot:
		return "QtAutoSlot"
	case ProtectionSqlAlchemyMeta:
		return "SqlAlchemyMeta"
	case ProtectionOrmLifecycle:
		return "OrmLifecycle"
	case ProtectionPydanticAlias:
		return "PydanticAlias"
	case ProtectionFastApiOverride:
		return "FastApiOverride"
	case ProtectionPytestFixture:
		return "PytestFixture"
	case ProtectionGrepShield:
		return "GrepShield"
	case ProtectionTestReference:
		return "TestReference"
	default:
		return "Unknown"
	}
}

// ModuleSentinelName is the synthetic entity name inserted once per file so
// that module-level calls and file-level include edges have somewhere to
// attach in the reference graph.
const ModuleSentinelName = "__MODULE__"

// Entity is a single definition extracted from source. It is immutable after
// extraction except for ProtectedBy, which the pipeline writes exactly once.
type Entity struct {
	Name           string
	QualifiedName  string
	Kind           Kind
	FilePath       string // normalized: forward slashes, canonical
	StartByte      uint32
	EndByte        uint32
	StartLine      int
	EndLine        int
	ParentClass    string // set for entities inside a class body: methods (decorated or not) and class-level assignments
	BaseClasses    []string
	Decorators     []string // leading '@' stripped
	ProtectedBy    Protection
	StructuralHash uint64
	HasHash        bool // StructuralHash is only meaningful for functions/methods
}

// IsModuleSentinel reports whether e is the synthetic per-file node.
func (e *Entity) IsModuleSentinel() bool {
	return e.Name == ModuleSentinelName
}

// IsDunder reports whether name is a Python dunder identifier, e.g. __init__.
// Dunder names never count as private regardless of leading underscores.
func IsDunder(name string) bool {
	return len(name) > 4 && name[:2] == "__" && name[len(name)-2:] == "__"
}

// IsPrivate reports whether name is conventionally private: a single leading
// underscore and not a dunder.
func IsPrivate(name string) bool {
	if IsDunder(name) {
		return false
	}
	return len(name) > 0 && name[0] == '_'
}

// IsExported reports the inverse of IsPrivate for top-level Python symbols.
func IsExported(name string) bool {
	return !IsPrivate(name)
}

// ParseStats summarizes one Host.Parse invocation.
type ParseStats struct {
	FilePath   string
	EntityCount int
	ParseError bool
}

// ByteRangeOverflowError marks a file too large for 32-bit byte offsets.
type ByteRangeOverflowError struct {
	FilePath string
	Size     int64
}

func (e *ByteRangeOverflowError) Error() string {
	return "file exceeds 2^32-1 bytes: " + e.FilePath
}
