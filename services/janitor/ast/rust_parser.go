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
	"github.com/smacker/go-tree-sitter/rust"
)

// rustDriver runs the reduced entity query: top-level functions and type
// definitions (struct/enum/trait). No decorators/base-classes/hash.
type rustDriver struct{ lang *sitter.Language }

func newRustDriver() *rustDriver { return &rustDriver{lang: rust.GetLanguage()} }

func (r *rustDriver) Language() string     { return "rust" }
func (r *rustDriver) Extensions() []string { return []string{".rs"} }

func (r *rustDriver) Extract(ctx context.Context, content []byte, filePath string) ([]*Entity, bool) {
	if !utf8.Valid(content) {
		return nil, false
	}
	parser := sitter.NewParser()
	parser.SetLanguage(r.lang)
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
		if e := rustTopLevelEntity(root.Child(i), content, filePath); e != nil {
			out = append(out, e)
		}
	}
	return out, true
}

func rustTopLevelEntity(node *sitter.Node, content []byte, filePath string) *Entity {
	kind := KindFunction
	switch node.Type() {
	case "function_item":
		kind = KindFunction
	case "struct_item", "enum_item", "trait_item":
		kind = KindTypeAlias
	default:
		return nil
	}
	name := nodeText(node.ChildByFieldName("name"), content)
	if name == "" {
		return nil
	}
	return &Entity{
		Name: name, QualifiedName: name, Kind: kind, FilePath: filePath,
		StartByte: uint32(node.StartByte()), EndByte: uint32(node.EndByte()),
		StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1,
	}
}
