// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// cppDriver runs the reduced entity query: top-level function definitions
// and class/struct specifiers. #include resolution is the graph builder's
// concern (spec §4.4), not the Host's.
type cppDriver struct{ lang *sitter.Language }

func newCppDriver() *cppDriver { return &cppDriver{lang: cpp.GetLanguage()} }

func (c *cppDriver) Language() string     { return "cpp" }
func (c *cppDriver) Extensions() []string { return []string{".cpp", ".cc", ".cxx", ".h", ".hpp", ".hh"} }

func (c *cppDriver) Extract(ctx context.Context, content []byte, filePath string) ([]*Entity, bool) {
	if !utf8.Valid(content) {
		return nil, false
	}
	parser := sitter.NewParser()
	parser.SetLanguage(c.lang)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil || tree == nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, false
	}

	var out []*Entity
	n := int(root.ChildCount())
	for i := 0; i < n; i++ {
		if e := cppTopLevelEntity(root.Child(i), content, filePath); e != nil {
			out = append(out, e)
		}
	}
	return out, true
}

func cppTopLevelEntity(node *sitter.Node, content []byte, filePath string) *Entity {
	switch node.Type() {
	case "function_definition":
		declarator := node.ChildByFieldName("declarator")
		name := cppFunctionName(declarator, content)
		if name == "" {
			return nil
		}
		return &Entity{
			Name: name, QualifiedName: name, Kind: KindFunction, FilePath: filePath,
			StartByte: uint32(node.StartByte()), EndByte: uint32(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1,
		}
	case "class_specifier", "struct_specifier":
		name := nodeText(node.ChildByFieldName("name"), content)
		if name == "" {
			return nil
		}
		return &Entity{
			Name: name, QualifiedName: name, Kind: KindClass, FilePath: filePath,
			StartByte: uint32(node.StartByte()), EndByte: uint32(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1,
		}
	default:
		return nil
	}
}

// cppFunctionName descends through pointer/reference/function declarators to
// find the innermost identifier naming the function.
func cppFunctionName(node *sitter.Node, content []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "qualified_identifier":
			return nodeText(node, content)
		case "function_declarator", "pointer_declarator", "reference_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return ""
		}
	}
	return ""
}
