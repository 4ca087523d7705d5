// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// callSite is one call expression found in a file: the plain name being
// called (for `func()`) or the attribute name (for `obj.method()` /
// `self.method()`), plus the receiver text when it is a method call.
type callSite struct {
	target     string
	receiver   string // non-empty for attribute calls
	isMethod   bool
	startByte  uint32
}

const maxCallExpressionDepth = 50

// extractPythonCallSites walks root looking for every "call" node and
// records it against the byte offset it occurs at; resolveEnclosingEntity
// later maps that offset back to the entity (or __MODULE__) it falls inside.
func extractPythonCallSites(root *sitter.Node, content []byte) []callSite {
	var out []callSite
	var walk func(n *sitter.Node, depth int)
	walk = func(n *sitter.Node, depth int) {
		if n == nil || depth > maxCallExpressionDepth {
			return
		}
		if n.Type() == "call" {
			if cs, ok := extractSingleCallSite(n, content); ok {
				out = append(out, cs)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), depth+1)
		}
	}
	walk(root, 0)
	return out
}

func extractSingleCallSite(node *sitter.Node, content []byte) (callSite, bool) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil && node.ChildCount() > 0 {
		funcNode = node.Child(0)
	}
	if funcNode == nil {
		return callSite{}, false
	}

	cs := callSite{startByte: node.StartByte()}

	switch funcNode.Type() {
	case "identifier":
		cs.target = nodeText(funcNode, content)
	case "attribute":
		objectNode := funcNode.ChildByFieldName("object")
		attrNode := funcNode.ChildByFieldName("attribute")
		if attrNode != nil {
			cs.target = nodeText(attrNode, content)
		}
		if objectNode != nil {
			receiver := nodeText(objectNode, content)
			if objectNode.Type() == "call" && (receiver == "super()" || receiver == "super") {
				receiver = "super"
			}
			cs.receiver = receiver
			cs.isMethod = true
		}
	default:
		cs.target = nodeText(funcNode, content)
	}

	if cs.target == "" {
		return callSite{}, false
	}
	return cs, true
}
