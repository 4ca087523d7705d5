// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

// Heuristic lets the CST Host assign an early Protection to an Entity during
// extraction (spec §4.1 step 7) — distinct from, and prior to, the Wisdom
// Classifier's post-hoc pass. Heuristics are applied in registration order;
// the first one to return other than ProtectionNone wins, and an entity that
// already carries a ProtectedBy (from an earlier heuristic) is skipped.
type Heuristic interface {
	Apply(e *Entity, content []byte) Protection
}

// applyHeuristics runs every registered heuristic over entities in order,
// writing ProtectedBy for the first match. It never overwrites a Protection
// already set by an earlier heuristic in the same call.
func applyHeuristics(entities []*Entity, content []byte, heuristics []Heuristic) {
	if len(heuristics) == 0 {
		return
	}
	for _, e := range entities {
		if e.ProtectedBy != ProtectionNone {
			continue
		}
		for _, h := range heuristics {
			if pr := h.Apply(e, content); pr != ProtectionNone {
				e.ProtectedBy = pr
				break
			}
		}
	}
}
