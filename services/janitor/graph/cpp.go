// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// cppInclude is one #include directive. IsSystem distinguishes <foo.h> from
// "foo.h"; only the latter is resolved against the local tree, matching the
// filesystem-local-only import resolution used for Python.
type cppInclude struct {
	path     string
	isSystem bool
}

// extractCppIncludes walks content for preproc_include directives. Per
// spec §4.4, C++ edges are file-level, so callers attach these directly to
// the including file's __MODULE__ node rather than resolving into specific
// symbols.
func extractCppIncludes(content []byte) []cppInclude {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil
	}

	var out []cppInclude
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "preproc_include" {
			if inc, ok := parseIncludeDirective(n, content); ok {
				out = append(out, inc)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func parseIncludeDirective(node *sitter.Node, content []byte) (cppInclude, bool) {
	path := node.ChildByFieldName("path")
	if path == nil {
		return cppInclude{}, false
	}
	switch path.Type() {
	case "string_literal":
		text := nodeText(path, content)
		return cppInclude{path: trimQuotes(text), isSystem: false}, true
	case "system_lib_string":
		text := nodeText(path, content)
		return cppInclude{path: trimAngles(text), isSystem: true}, true
	}
	return cppInclude{}, false
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func trimAngles(s string) string {
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		return s[1 : len(s)-1]
	}
	return s
}
