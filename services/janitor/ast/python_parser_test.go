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

func extractPython(t *testing.T, src string) []*Entity {
	t.Helper()
	d := newPythonDriver()
	entities, ok := d.Extract(context.Background(), []byte(src), "sample.py")
	require.True(t, ok)
	return entities
}

func findEntity(entities []*Entity, qualifiedName string) *Entity {
	for _, e := range entities {
		if e.QualifiedName == qualifiedName {
			return e
		}
	}
	return nil
}

func TestPythonDriver_TopLevelFunction(t *testing.T) {
	entities := extractPython(t, "def helper():\n    pass\n")
	e := findEntity(entities, "helper")
	require.NotNil(t, e)
	require.Equal(t, KindFunction, e.Kind)
	require.Greater(t, e.EndByte, e.StartByte)
}

func TestPythonDriver_AsyncFunction(t *testing.T) {
	entities := extractPython(t, "async def fetch():\n    pass\n")
	e := findEntity(entities, "fetch")
	require.NotNil(t, e)
	require.Equal(t, KindAsyncFunction, e.Kind)
}

func TestPythonDriver_ClassWithMethodsAndBases(t *testing.T) {
	src := "class Widget(Base, Mixin):\n    def render(self):\n        pass\n"
	entities := extractPython(t, src)

	class := findEntity(entities, "Widget")
	require.NotNil(t, class)
	require.Equal(t, KindClass, class.Kind)
	require.Equal(t, []string{"Base", "Mixin"}, class.BaseClasses)

	method := findEntity(entities, "Widget.render")
	require.NotNil(t, method)
	require.Equal(t, KindMethod, method.Kind)
	require.Equal(t, "Widget", method.ParentClass)
}

func TestPythonDriver_DecoratedFunctionSpansFromAt(t *testing.T) {
	src := "@app.get(\"/\")\ndef index():\n    pass\n"
	entities := extractPython(t, src)
	e := findEntity(entities, "index")
	require.NotNil(t, e)
	require.Equal(t, KindDecorated, e.Kind)
	require.Equal(t, uint32(0), e.StartByte)
	require.Equal(t, []string{`app.get("/")`}, e.Decorators)

	// The decorated definition must not ALSO appear as a separate bare entity.
	count := 0
	for _, ent := range entities {
		if ent.Name == "index" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestPythonDriver_ModuleAssignment(t *testing.T) {
	entities := extractPython(t, "__all__ = [\"a\", \"b\"]\n")
	e := findEntity(entities, "__all__")
	require.NotNil(t, e)
	require.Equal(t, KindAssignment, e.Kind)
}

func TestPythonDriver_ParseErrorOnInvalidUTF8(t *testing.T) {
	d := newPythonDriver()
	_, ok := d.Extract(context.Background(), []byte{0xff, 0xfe, 0x00}, "bad.py")
	require.False(t, ok)
}
