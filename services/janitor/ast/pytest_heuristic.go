// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"bytes"
	"strings"
)

// PytestFixtureHeuristic protects pytest fixtures, a case the Wisdom
// Classifier's per-entity rule table never sees because a fixture is
// identified by its own decorator plus a whole-file special case, not by
// any of the 14 ordered rules in spec §4.6. Grounded on
// original_source/crates/anatomist/src/heuristics/pytest.rs.
//
// Two detection rules, either of which protects an entity:
//  1. The entity carries a `@pytest.fixture` or `@fixture` decorator.
//  2. The entity's file is a conftest.py and the file's raw bytes contain
//     any pytest marker (`pytest` or `@fixture` anywhere) — conftest.py
//     fixtures are discovered by pytest across the whole directory tree, so
//     every definition in the file is protected, not just decorated ones.
type PytestFixtureHeuristic struct{}

func (PytestFixtureHeuristic) Apply(e *Entity, content []byte) Protection {
	if strings.HasSuffix(e.FilePath, "conftest.py") && containsPytestMarker(content) {
		return ProtectionPytestFixture
	}
	for _, d := range e.Decorators {
		if isFixtureDecorator(d) {
			return ProtectionPytestFixture
		}
	}
	return ProtectionNone
}

// isFixtureDecorator checks decorator source text with the leading '@'
// already stripped (per Entity.Decorators), so "@fixture" in the original
// byte-scan becomes a bare "fixture" prefix check here.
func isFixtureDecorator(d string) bool {
	if strings.Contains(d, "pytest.fixture") {
		return true
	}
	return d == "fixture" || strings.HasPrefix(d, "fixture(")
}

func containsPytestMarker(content []byte) bool {
	return bytes.Contains(content, []byte("pytest")) || bytes.Contains(content, []byte("@fixture"))
}
