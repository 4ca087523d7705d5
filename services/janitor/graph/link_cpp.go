// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"path/filepath"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

// linkCppFile wires file-level __MODULE__ -> __MODULE__ edges for every
// #include "..." directive that resolves to another known C++ file in the
// project (spec §4.4). System includes (<...>) are never resolved locally.
func (b *Builder) linkCppFile(root string, pf parsedFile, res *BuildResult) {
	content, unmap, err := mmapfile.Map(pf.path)
	if err != nil {
		return
	}
	defer unmap()

	moduleID := b.idFunc(pf.path, ast.ModuleSentinelName)
	dir := filepath.Dir(pf.path)

	for _, inc := range extractCppIncludes(content) {
		if inc.isSystem {
			continue
		}
		target, ok := existingFile(filepath.Join(dir, inc.path))
		if !ok {
			target, ok = existingFile(filepath.Join(root, inc.path))
		}
		if !ok {
			continue
		}
		if _, known := res.FileSymbols[target]; !known {
			continue
		}
		targetModuleID := b.idFunc(target, ast.ModuleSentinelName)
		res.Graph.AddEdge(moduleID, targetModuleID)
	}
}
