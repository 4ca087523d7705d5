// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pyImport is one resolved import statement: a raw dotted path (with leading
// dots preserved for relative imports), the names it binds (empty for a bare
// `import foo.bar` or a wildcard import), and whether it is a wildcard.
type pyImport struct {
	rawPath    string
	names      []string
	isWildcard bool
}

// extractPythonImports walks the whole tree (not just top-level statements)
// so inline imports inside function bodies are still visible to call-site
// resolution, matching real Python code that imports lazily to avoid
// circular dependencies.
func extractPythonImports(content []byte) []pyImport {
	tree, root := parsePython(content)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var out []pyImport
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "import_statement":
			out = append(out, processImportStatement(n, content)...)
			return
		case "import_from_statement":
			if imp, ok := processImportFromStatement(n, content); ok {
				out = append(out, imp)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func processImportStatement(node *sitter.Node, content []byte) []pyImport {
	var out []pyImport
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, pyImport{rawPath: nodeText(child, content)})
		case "aliased_import":
			for j := 0; j < int(child.ChildCount()); j++ {
				if dn := child.Child(j); dn.Type() == "dotted_name" {
					out = append(out, pyImport{rawPath: nodeText(dn, content)})
					break
				}
			}
		}
	}
	return out
}

func processImportFromStatement(node *sitter.Node, content []byte) (pyImport, bool) {
	var modulePath string
	var names []string
	var isWildcard bool
	var isRelative bool
	var sawImport bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			isRelative = true
			var prefix, name string
			for j := 0; j < int(child.ChildCount()); j++ {
				g := child.Child(j)
				switch g.Type() {
				case "import_prefix":
					prefix = nodeText(g, content)
				case "dotted_name":
					name = nodeText(g, content)
				}
			}
			modulePath = prefix + name
		case "dotted_name":
			name := nodeText(child, content)
			if !sawImport {
				modulePath = name
			} else {
				names = append(names, name)
			}
		case "wildcard_import":
			isWildcard = true
		case "aliased_import":
			var importName string
			for j := 0; j < int(child.ChildCount()); j++ {
				g := child.Child(j)
				if g.Type() == "identifier" || g.Type() == "dotted_name" {
					importName = nodeText(g, content)
					break
				}
			}
			if importName != "" {
				names = append(names, importName)
			}
		case "identifier":
			if sawImport {
				names = append(names, nodeText(child, content))
			}
		}
	}

	if modulePath == "" && !isRelative {
		return pyImport{}, false
	}
	if modulePath == "" && isRelative {
		modulePath = "."
	}
	return pyImport{rawPath: modulePath, names: names, isWildcard: isWildcard}, true
}

func parsePython(content []byte) (*sitter.Tree, *sitter.Node) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return nil, nil
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, nil
	}
	return tree, root
}

func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

// leadingDots counts the leading '.' characters of a raw import path.
func leadingDots(rawPath string) int {
	return len(rawPath) - len(strings.TrimLeft(rawPath, "."))
}
