// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline implements the Pipeline Orchestrator — the "Funnel of
// Truth" (spec §4.8): the 6-stage sequence that turns extracted entities and
// their reference graph into a ScanResult partitioning dead from protected.
package pipeline

import (
	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/extscan"
	"github.com/codejanitor/janitor/services/janitor/orphan"
	"github.com/codejanitor/janitor/services/janitor/wisdom"
)

// DefaultProtectedDirs is the stage-0 protected directory set (spec §4.8/§6).
var DefaultProtectedDirs = map[string]bool{}

func init() {
	for _, d := range []string{
		"tests", "test", "examples", "example", "docs_src", "docs", "sandbox",
		"bin", "scripts", "tutorial", "benchmarks", "fixtures", "migrations",
	} {
		DefaultProtectedDirs[d] = true
	}
}

// Options configures one pipeline run.
type Options struct {
	ProtectedDirs         map[string]bool
	PluginDirs            map[string]bool
	LibraryMode           bool // opt-in stage 3
	GrepShieldOptions     extscan.GrepShieldOptions
	BridgeExcludeDirs     map[string]bool
	OrphanEntryPointFiles map[string]bool
}

// DefaultOptions returns the spec-mandated defaults with library mode off.
func DefaultOptions() Options {
	return Options{
		ProtectedDirs:         DefaultProtectedDirs,
		PluginDirs:            wisdom.DefaultPluginDirs,
		GrepShieldOptions:     extscan.DefaultGrepShieldOptions(),
		OrphanEntryPointFiles: orphan.DefaultEntryPointFiles,
	}
}

// ScanResult is the pipeline's final output (spec §3): dead and protected
// partition the extracted entities, stage_counts records how many entities
// each numbered stage protected, and orphan_files is the refined orphan set.
type ScanResult struct {
	Dead        []*ast.Entity
	Protected   []*ast.Entity
	Total       int
	StageCounts [6]int
	OrphanFiles []string
}
