// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonDriver extracts Entities from Python source.
//
// Unlike the other drivers it captures decorators, base classes, parent
// class, and a structural hash for every function-kind entity. A decorated
// function or class definition is merged into one Entity spanning from the
// first '@' through the end of the inner definition; the switch below never
// visits the inner function_definition/class_definition node a second time as
// a bare top-level statement, so no separate suppression pass is needed.
type pythonDriver struct{}

func newPythonDriver() *pythonDriver { return &pythonDriver{} }

func (p *pythonDriver) Language() string     { return "python" }
func (p *pythonDriver) Extensions() []string { return []string{".py", ".pyi"} }

func (p *pythonDriver) Extract(ctx context.Context, content []byte, filePath string) ([]*Entity, bool) {
	if !utf8.Valid(content) {
		return nil, false
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil || tree == nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, false
	}

	var entities []*Entity
	rootChildCount := int(root.ChildCount())
	for i := 0; i < rootChildCount; i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			entities = append(entities, p.processFunction(child, content, filePath, nil, ""))
		case "class_definition":
			entities = append(entities, p.processClass(child, content, filePath, nil)...)
		case "decorated_definition":
			entities = append(entities, p.processDecorated(child, content, filePath)...)
		case "expression_statement":
			if e := p.processModuleAssignment(child, content, filePath); e != nil {
				entities = append(entities, e)
			}
		}
	}

	var out []*Entity
	for _, e := range entities {
		if e != nil {
			out = append(out, e)
		}
	}
	return out, true
}

// processDecorated handles a decorated_definition: it merges the decorator
// span with whichever inner definition (function or class) it wraps.
func (p *pythonDriver) processDecorated(node *sitter.Node, content []byte, filePath string) []*Entity {
	decorators := p.extractDecorators(node, content)
	declStart := node.StartByte()

	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_definition":
			e := p.processFunction(child, content, filePath, decorators, "")
			if e != nil {
				e.StartByte = uint32(declStart)
				e.StartLine = int(node.StartPoint().Row) + 1
				e.Kind = KindDecorated
			}
			return []*Entity{e}
		case "class_definition":
			es := p.processClass(child, content, filePath, decorators)
			if len(es) > 0 && es[0] != nil {
				es[0].StartByte = uint32(declStart)
				es[0].StartLine = int(node.StartPoint().Row) + 1
				es[0].Kind = KindDecorated
			}
			return es
		}
	}
	return nil
}

// processClass extracts a class and, recursively, its methods.
func (p *pythonDriver) processClass(node *sitter.Node, content []byte, filePath string, decorators []string) []*Entity {
	var name string
	var bases []string
	var bodyNode *sitter.Node

	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = nodeText(child, content)
			}
		case "argument_list":
			bases = append(bases, p.extractBaseClasses(child, content)...)
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	class := &Entity{
		Name:          name,
		QualifiedName: name,
		Kind:          KindClass,
		FilePath:      filePath,
		StartByte:     uint32(node.StartByte()),
		EndByte:       uint32(node.EndByte()),
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		BaseClasses:   bases,
		Decorators:    decorators,
	}

	entities := []*Entity{class}
	if bodyNode != nil {
		entities = append(entities, p.extractClassMembers(bodyNode, content, filePath, name)...)
	}
	return entities
}

// extractClassMembers walks a class body for methods and class-variable
// assignments.
func (p *pythonDriver) extractClassMembers(body *sitter.Node, content []byte, filePath, className string) []*Entity {
	var out []*Entity
	n := int(body.ChildCount())
	for i := 0; i < n; i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			out = append(out, p.processFunction(child, content, filePath, nil, className))
		case "decorated_definition":
			decorators := p.extractDecorators(child, content)
			dn := int(child.ChildCount())
			for j := 0; j < dn; j++ {
				def := child.Child(j)
				if def.Type() == "function_definition" {
					m := p.processFunction(def, content, filePath, decorators, className)
					if m != nil {
						m.StartByte = uint32(child.StartByte())
						m.StartLine = int(child.StartPoint().Row) + 1
						m.Kind = KindDecorated
					}
					out = append(out, m)
					break
				}
			}
		case "expression_statement":
			if e := p.processModuleAssignment(child, content, filePath); e != nil {
				e.ParentClass = className
				e.QualifiedName = className + "." + e.Name
				out = append(out, e)
			}
		}
	}
	return out
}

// processFunction extracts one function/method definition, including async
// detection and, for every function-kind entity, a structural hash over the
// body block.
func (p *pythonDriver) processFunction(node *sitter.Node, content []byte, filePath string, decorators []string, className string) *Entity {
	var name string
	var isAsync bool
	var bodyNode *sitter.Node

	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			if name == "" {
				name = nodeText(child, content)
			}
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	kind := KindFunction
	if isAsync {
		kind = KindAsyncFunction
	}
	if className != "" {
		kind = KindMethod
	}

	qualified := name
	if className != "" {
		qualified = className + "." + name
	}

	e := &Entity{
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		FilePath:      filePath,
		StartByte:     uint32(node.StartByte()),
		EndByte:       uint32(node.EndByte()),
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		ParentClass:   className,
		Decorators:    decorators,
	}
	if bodyNode != nil {
		e.StructuralHash = StructuralHash(bodyNode, content)
		e.HasHash = true
	}
	return e
}

// processModuleAssignment extracts a top-level `name = ...` statement as a
// KindAssignment entity. Only the leading identifier of the left-hand side is
// captured; tuple/attribute targets are skipped.
func (p *pythonDriver) processModuleAssignment(stmt *sitter.Node, content []byte, filePath string) *Entity {
	if stmt.ChildCount() == 0 {
		return nil
	}
	assign := stmt.Child(0)
	if assign.Type() != "assignment" {
		return nil
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return nil
	}
	name := nodeText(left, content)
	if name == "" {
		return nil
	}
	return &Entity{
		Name:          name,
		QualifiedName: name,
		Kind:          KindAssignment,
		FilePath:      filePath,
		StartByte:     uint32(stmt.StartByte()),
		EndByte:       uint32(stmt.EndByte()),
		StartLine:     int(stmt.StartPoint().Row) + 1,
		EndLine:       int(stmt.EndPoint().Row) + 1,
	}
}

// extractDecorators returns the decorator source texts of a
// decorated_definition with the leading '@' stripped.
func (p *pythonDriver) extractDecorators(node *sitter.Node, content []byte) []string {
	var out []string
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		text := nodeText(child, content)
		out = append(out, strings.TrimPrefix(strings.TrimSpace(text), "@"))
	}
	return out
}

// extractBaseClasses filters the identifier/attribute children of a class's
// argument_list, per spec §4.1.
func (p *pythonDriver) extractBaseClasses(argList *sitter.Node, content []byte) []string {
	var out []string
	n := int(argList.ChildCount())
	for i := 0; i < n; i++ {
		arg := argList.Child(i)
		switch arg.Type() {
		case "identifier":
			out = append(out, nodeText(arg, content))
		case "attribute":
			out = append(out, nodeText(arg, content))
		}
	}
	return out
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}
