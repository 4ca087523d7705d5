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
	"github.com/smacker/go-tree-sitter/javascript"
)

// javascriptDriver runs the reduced, non-Python entity query: top-level
// functions and class declarations only. No decorators, base classes, or
// structural hash are populated, per spec §4.1.
type javascriptDriver struct{ lang *sitter.Language }

func newJavaScriptDriver() *javascriptDriver {
	return &javascriptDriver{lang: javascript.GetLanguage()}
}

func (j *javascriptDriver) Language() string     { return "javascript" }
func (j *javascriptDriver) Extensions() []string { return []string{".js", ".jsx", ".mjs", ".cjs"} }

func (j *javascriptDriver) Extract(ctx context.Context, content []byte, filePath string) ([]*Entity, bool) {
	return extractJSLikeEntities(ctx, j.lang, content, filePath)
}

// extractJSLikeEntities is shared by the JavaScript and TypeScript drivers:
// both grammars expose the same top-level declaration shapes for the
// reduced query.
func extractJSLikeEntities(ctx context.Context, lang *sitter.Language, content []byte, filePath string) ([]*Entity, bool) {
	if !utf8.Valid(content) {
		return nil, false
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
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
		if e := jsTopLevelEntity(root.Child(i), content, filePath); e != nil {
			out = append(out, e)
		}
	}
	return out, true
}

func jsTopLevelEntity(node *sitter.Node, content []byte, filePath string) *Entity {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		name := nodeText(node.ChildByFieldName("name"), content)
		if name == "" {
			return nil
		}
		return &Entity{
			Name: name, QualifiedName: name, Kind: KindFunction, FilePath: filePath,
			StartByte: uint32(node.StartByte()), EndByte: uint32(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1,
		}
	case "class_declaration":
		name := nodeText(node.ChildByFieldName("name"), content)
		if name == "" {
			return nil
		}
		return &Entity{
			Name: name, QualifiedName: name, Kind: KindClass, FilePath: filePath,
			StartByte: uint32(node.StartByte()), EndByte: uint32(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1,
		}
	case "interface_declaration", "type_alias_declaration":
		name := nodeText(node.ChildByFieldName("name"), content)
		if name == "" {
			return nil
		}
		return &Entity{
			Name: name, QualifiedName: name, Kind: KindTypeAlias, FilePath: filePath,
			StartByte: uint32(node.StartByte()), EndByte: uint32(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1, EndLine: int(node.EndPoint().Row) + 1,
		}
	case "export_statement":
		// `export function f() {}` / `export class C {}` / `export default ...`
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			return jsTopLevelEntity(decl, content, filePath)
		}
		return nil
	default:
		return nil
	}
}
