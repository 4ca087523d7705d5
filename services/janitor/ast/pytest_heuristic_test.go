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

	"github.com/stretchr/testify/require"
)

func extractPythonFile(t *testing.T, src, filePath string) []*Entity {
	t.Helper()
	d := newPythonDriver()
	entities, ok := d.Extract(context.Background(), []byte(src), filePath)
	require.True(t, ok)
	applyHeuristics(entities, []byte(src), []Heuristic{PytestFixtureHeuristic{}})
	return entities
}

func TestPytestFixtureHeuristic_DecoratedFixture(t *testing.T) {
	src := "import pytest\n\n@pytest.fixture\ndef db_conn():\n    pass\n"
	entities := extractPythonFile(t, src, "tests/conftest_helpers.py")
	e := findEntity(entities, "db_conn")
	require.NotNil(t, e)
	require.Equal(t, ProtectionPytestFixture, e.ProtectedBy)
}

func TestPytestFixtureHeuristic_BareFixtureDecorator(t *testing.T) {
	src := "from pytest import fixture\n\n@fixture\ndef client():\n    pass\n"
	entities := extractPythonFile(t, src, "tests/conftest_helpers.py")
	e := findEntity(entities, "client")
	require.NotNil(t, e)
	require.Equal(t, ProtectionPytestFixture, e.ProtectedBy)
}

func TestPytestFixtureHeuristic_ConftestProtectsEveryDefinition(t *testing.T) {
	src := "import pytest\n\ndef helper():\n    pass\n\n@pytest.fixture\ndef client():\n    pass\n"
	entities := extractPythonFile(t, src, "conftest.py")

	helper := findEntity(entities, "helper")
	require.NotNil(t, helper)
	require.Equal(t, ProtectionPytestFixture, helper.ProtectedBy)

	client := findEntity(entities, "client")
	require.NotNil(t, client)
	require.Equal(t, ProtectionPytestFixture, client.ProtectedBy)
}

func TestPytestFixtureHeuristic_ConftestWithoutMarkersLeavesEntitiesUnprotected(t *testing.T) {
	src := "def helper():\n    pass\n"
	entities := extractPythonFile(t, src, "conftest.py")
	e := findEntity(entities, "helper")
	require.NotNil(t, e)
	require.Equal(t, ProtectionNone, e.ProtectedBy)
}

func TestPytestFixtureHeuristic_UnrelatedDecoratorNotMatched(t *testing.T) {
	src := "@my_fixture_decorator\ndef widget():\n    pass\n"
	entities := extractPythonFile(t, src, "app.py")
	e := findEntity(entities, "widget")
	require.NotNil(t, e)
	require.Equal(t, ProtectionNone, e.ProtectedBy)
}

func TestHost_RegistersPytestFixtureHeuristicByDefault(t *testing.T) {
	h := NewHost()
	require.Len(t, h.heuristics, 1)
	_, ok := h.heuristics[0].(PytestFixtureHeuristic)
	require.True(t, ok)
}
