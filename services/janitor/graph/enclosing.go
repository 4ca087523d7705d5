// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import "github.com/codejanitor/janitor/services/janitor/ast"

// enclosingEntity returns the smallest entity in entities whose byte range
// contains offset, falling back to the module sentinel when no entity
// contains it (a call made directly at module scope).
func enclosingEntity(entities []*ast.Entity, moduleSentinel *ast.Entity, offset uint32) *ast.Entity {
	var best *ast.Entity
	var bestWidth uint32
	for _, e := range entities {
		if e.IsModuleSentinel() {
			continue
		}
		if offset < e.StartByte || offset >= e.EndByte {
			continue
		}
		width := e.EndByte - e.StartByte
		if best == nil || width < bestWidth {
			best = e
			bestWidth = width
		}
	}
	if best != nil {
		return best
	}
	return moduleSentinel
}
