// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dedup implements the Deduplicator (spec §4.12): groups entities
// by structural hash, copies the canonical member's body into a shared
// `_<name>_impl`, rewrites every member (the canonical one included) into a
// call to it, and drives the rewrite through the Safe Editor.
package dedup

import (
	"sort"

	"github.com/codejanitor/janitor/services/janitor/ast"
)

// Group is a set of entities (≥2) sharing a structural hash.
type Group struct {
	Hash    uint64
	Members []*ast.Entity
}

// GroupByHash collects entities that carry a structural hash (HasHash) into
// Groups of size ≥ 2, preserving each group's member order from entities
// (the first member encountered becomes the canonical implementation).
// Groups are returned sorted by hash for deterministic output.
func GroupByHash(entities []*ast.Entity) []Group {
	byHash := make(map[uint64][]*ast.Entity)
	var order []uint64
	for _, e := range entities {
		if !e.HasHash {
			continue
		}
		if _, seen := byHash[e.StructuralHash]; !seen {
			order = append(order, e.StructuralHash)
		}
		byHash[e.StructuralHash] = append(byHash[e.StructuralHash], e)
	}

	var groups []Group
	for _, h := range order {
		if len(byHash[h]) >= 2 {
			groups = append(groups, Group{Hash: h, Members: byHash[h]})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Hash < groups[j].Hash })
	return groups
}

// SameFile reports whether every member of g lives in the same file. The
// Safe Editor operates one transaction per file (spec §4.12 step 4); a
// group spanning files has no single file to append `_<name>_impl` to, so
// callers skip it and log why (SPEC_FULL §7's open-question decision).
func (g Group) SameFile() bool {
	if len(g.Members) == 0 {
		return true
	}
	first := g.Members[0].FilePath
	for _, m := range g.Members[1:] {
		if m.FilePath != first {
			return false
		}
	}
	return true
}
