// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package orphan implements the Orphan Detector (spec §4.5): files whose
// entities have no cross-file incoming edge and are not entry-points or
// plugin-managed. The pipeline refines the raw set after classification by
// dropping any file that contributed an entity to the protected set.
package orphan

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/graph"
)

// DefaultEntryPointFiles is the spec §4.5 entry-point basename set.
var DefaultEntryPointFiles = map[string]bool{
	"wsgi.py":   true,
	"asgi.py":   true,
	"manage.py": true,
	"main.py":   true,
	"app.py":    true,
}

// DefaultPluginDirs is the spec §4.5/§4.6 plugin-directory set.
var DefaultPluginDirs = map[string]bool{
	"spiders":  true,
	"plugins":  true,
	"commands": true,
	"handlers": true,
	"tasks":    true,
}

// Options configures which files are exempt from orphan status regardless
// of their edge count.
type Options struct {
	EntryPointFiles map[string]bool
	PluginDirs      map[string]bool
}

// DefaultOptions returns the spec-mandated sets.
func DefaultOptions() Options {
	return Options{EntryPointFiles: DefaultEntryPointFiles, PluginDirs: DefaultPluginDirs}
}

// Detect computes the raw orphan file set (spec §4.5, first paragraph):
// every file that is not __init__.py, not an entry point, not under a
// plugin directory, and whose entities have zero incoming edges originating
// in a different file. The result is sorted ascending.
func Detect(res *graph.BuildResult, opts Options) []string {
	var raw []string
	for file, ids := range res.FileSymbols {
		if isExemptFile(file, opts) {
			continue
		}
		if hasCrossFileIncoming(res, ids, file) {
			continue
		}
		raw = append(raw, file)
	}
	sort.Strings(raw)
	return raw
}

// Refine drops any raw orphan file that contributed at least one entity to
// protected, per spec §4.5's second paragraph and §8's invariant
// ("orphan_files contains no file whose path contributed any entity to
// protected").
func Refine(raw []string, protectedFiles map[string]bool) []string {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if protectedFiles[f] {
			continue
		}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func isExemptFile(file string, opts Options) bool {
	base := filepath.Base(file)
	if base == "__init__.py" {
		return true
	}
	if opts.EntryPointFiles[base] {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(file), "/") {
		if opts.PluginDirs[seg] {
			return true
		}
	}
	return false
}

func hasCrossFileIncoming(res *graph.BuildResult, ids []uint64, file string) bool {
	for _, id := range ids {
		for _, srcID := range res.Graph.IncomingSourceIDs(id) {
			src := res.Entities[srcID]
			if src != nil && src.FilePath != file {
				return true
			}
		}
	}
	return false
}
