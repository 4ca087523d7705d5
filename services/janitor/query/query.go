// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query runs a small Datalog program (google/mangle) over the facts
// a pipeline run produces, so a caller can ask derived questions — "what's
// transitively dead once X goes?" — without writing Go to walk the graph
// again.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/pipeline"
)

// Options configures one query run.
type Options struct {
	// ExtraRulesPath optionally points at a user .mg file appended after
	// the bundled rules (spec's `--rules extra.mg`).
	ExtraRulesPath string
}

// Result holds the predicates callers most often want out of the default
// rule set.
type Result struct {
	TransitivelyDead []string
	OrphanedCallers  []string
}

// Run lowers build+scan into facts, evaluates the bundled (plus any extra)
// Datalog rules against them, and extracts the predicates Result names.
func Run(build *graph.BuildResult, scan *pipeline.ScanResult, opts Options) (*Result, error) {
	store := BuildFacts(build, scan)

	source, err := LoadRules(opts.ExtraRulesPath)
	if err != nil {
		return nil, fmt.Errorf("query: loading rules: %w", err)
	}

	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("query: parsing rules: %w", err)
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("query: analyzing rules: %w", err)
	}

	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("query: evaluating rules: %w", err)
	}

	res := &Result{}
	collect(store, "transitively_dead", 1, func(a ast.Atom) {
		res.TransitivelyDead = append(res.TransitivelyDead, stringArg(a, 0))
	})
	collect(store, "orphaned_caller", 1, func(a ast.Atom) {
		res.OrphanedCallers = append(res.OrphanedCallers, stringArg(a, 0))
	})

	sort.Strings(res.TransitivelyDead)
	sort.Strings(res.OrphanedCallers)

	return res, nil
}

// collect visits every fact store atom whose predicate symbol matches name.
func collect(store factstore.FactStore, name string, arity int, visit func(ast.Atom)) {
	store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: name, Arity: arity}), func(a ast.Atom) error {
		visit(a)
		return nil
	})
}

// stringArg returns arg i of a as a plain Go string, or "" if it isn't a
// mangle string constant.
func stringArg(a ast.Atom, i int) string {
	if i >= len(a.Args) {
		return ""
	}
	c, ok := a.Args[i].(ast.Constant)
	if !ok || c.Type != ast.StringType {
		return ""
	}
	return c.Symbol
}
