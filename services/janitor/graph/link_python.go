// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

// linkPythonFile re-parses pf for imports and call-sites, resolves each
// import to a target file local to root, and emits one edge per call-site
// whose name is bound by an import the file actually has (spec §4.4).
func (b *Builder) linkPythonFile(root string, pf parsedFile, res *BuildResult) {
	content, unmap, err := mmapfile.Map(pf.path)
	if err != nil {
		return
	}
	defer unmap()

	imports := extractPythonImports(content)
	importTargets := b.resolveImportTargets(root, pf.path, imports, res)
	if len(importTargets) == 0 {
		return
	}

	tree, rootNode := parsePython(content)
	if tree == nil {
		return
	}
	defer tree.Close()

	moduleID := b.idFunc(pf.path, ast.ModuleSentinelName)
	var moduleSentinelEntity *ast.Entity
	for _, e := range pf.entities {
		if e.IsModuleSentinel() {
			moduleSentinelEntity = e
			break
		}
	}

	for _, cs := range extractPythonCallSites(rootNode, content) {
		targets, ok := importTargets[cs.target]
		if !ok {
			continue
		}
		caller := enclosingEntity(pf.entities, moduleSentinelEntity, cs.startByte)
		var callerID uint64
		if caller == nil {
			callerID = moduleID
		} else {
			callerID = b.idFunc(caller.FilePath, caller.QualifiedName)
		}
		for _, targetID := range targets {
			res.Graph.AddEdge(callerID, targetID)
		}
	}
}

// resolveImportTargets builds the name -> [symbol id] map described in spec
// §4.4: a bare `import foo.bar` admits every name foo/bar.py defines; `from foo
// import a, b` admits exactly a and b; wildcard imports behave like bare
// imports.
func (b *Builder) resolveImportTargets(root, sourceFile string, imports []pyImport, res *BuildResult) map[string][]uint64 {
	out := make(map[string][]uint64)
	for _, imp := range imports {
		targetFile, ok := resolvePythonImportFile(root, sourceFile, imp.rawPath)
		if !ok {
			continue
		}
		targetIDs := res.FileSymbols[targetFile]
		admitAll := imp.isWildcard || len(imp.names) == 0
		for _, id := range targetIDs {
			e := res.Entities[id]
			if e == nil || e.IsModuleSentinel() {
				continue
			}
			if admitAll {
				out[e.Name] = append(out[e.Name], id)
				continue
			}
			for _, name := range imp.names {
				if e.Name == name {
					out[e.Name] = append(out[e.Name], id)
				}
			}
		}
	}
	return out
}

// resolvePythonImportFile implements spec §4.4's resolution algorithm:
// count leading dots; for relative imports walk up the source file's parent
// directory k-1 times, otherwise start from root; try "<base>/<tail>.py",
// then "<base>/<tail>/__init__.py"; "from . import x" resolves to the
// current directory's __init__.py. The result is normalized the same way
// every other path in the system is.
func resolvePythonImportFile(root, sourceFile, rawPath string) (string, bool) {
	dots := leadingDots(rawPath)
	tail := strings.TrimLeft(rawPath, ".")

	var base string
	if dots == 0 {
		base = root
	} else {
		base = filepath.Dir(sourceFile)
		for i := 0; i < dots-1; i++ {
			base = filepath.Dir(base)
		}
	}

	if tail == "" {
		return existingFile(filepath.Join(base, "__init__.py"))
	}

	dotted := strings.ReplaceAll(tail, ".", string(filepath.Separator))
	if p, ok := existingFile(filepath.Join(base, dotted+".py")); ok {
		return p, true
	}
	return existingFile(filepath.Join(base, dotted, "__init__.py"))
}

// existingFile stats candidate and, if it exists and is a regular file,
// returns its canonicalized, normalized path. A failed stat/canonicalize is
// silently treated as "import not found" per spec §7 ("a failed canonicalize
// on an import target means the import is dropped silently").
func existingFile(candidate string) (string, bool) {
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		resolved = candidate
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}
	return ast.NormalizePath(abs), true
}
