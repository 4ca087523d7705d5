// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import (
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	janitorast "github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/pipeline"
)

// BuildFacts lowers one pipeline run's ScanResult and reference Graph into a
// mangle FactStore: dead(Symbol, File), protected(Symbol, File, Reason),
// calls(Caller, Callee) and in_file(Symbol, File). Symbol names use each
// Entity's QualifiedName so that methods of identically named classes in
// different files don't collide.
func BuildFacts(build *graph.BuildResult, scan *pipeline.ScanResult) factstore.FactStore {
	store := factstore.NewSimpleInMemoryStore()

	for _, e := range scan.Dead {
		store.Add(ast.NewAtom("dead", ast.String(symbolKey(e)), ast.String(e.FilePath)))
		store.Add(ast.NewAtom("in_file", ast.String(symbolKey(e)), ast.String(e.FilePath)))
	}
	for _, e := range scan.Protected {
		store.Add(ast.NewAtom("protected", ast.String(symbolKey(e)), ast.String(e.FilePath), ast.String(e.ProtectedBy.String())))
		store.Add(ast.NewAtom("in_file", ast.String(symbolKey(e)), ast.String(e.FilePath)))
	}

	for _, edge := range build.Graph.Edges() {
		callerID := build.Graph.NodeID(edge.From)
		calleeID := build.Graph.NodeID(edge.To)
		caller, ok := build.Entities[callerID]
		if !ok || caller.IsModuleSentinel() {
			continue
		}
		callee, ok := build.Entities[calleeID]
		if !ok {
			continue
		}
		store.Add(ast.NewAtom("calls", ast.String(symbolKey(caller)), ast.String(symbolKey(callee))))
	}

	return store
}

// symbolKey is the stable string identity a symbol is addressed by in
// mangle facts: its qualified name falls back to its bare name when the
// extractor didn't resolve one (module-level assignments, for instance).
func symbolKey(e *janitorast.Entity) string {
	if e.QualifiedName != "" {
		return e.QualifiedName
	}
	return e.Name
}
