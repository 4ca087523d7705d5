// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/extscan"
	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/mmapfile"
	"github.com/codejanitor/janitor/services/janitor/orphan"
	"github.com/codejanitor/janitor/services/janitor/wisdom"
)

var tracer = otel.Tracer("janitor/pipeline")

// Run sequences stages 0-5 against build, attaches Protection reasons in
// place on build's entities, refines orphans, and returns the ScanResult.
// It never fails on a per-file error; a file that cannot be read for a
// body-scan stage simply contributes no protection that stage.
//
// Some entities already carry a ProtectedBy before Run ever sees them — the
// CST Host's own registered heuristics (e.g. PytestFixtureHeuristic) run at
// parse time, earlier than any numbered stage. Every stage below skips an
// entity that already has a ProtectedBy, so a parser-pass protection is
// counted in the final ScanResult's Protected slice but never in
// StageCounts, matching spec §4.8's "conftest heuristic" example.
func Run(ctx context.Context, root string, build *graph.BuildResult, opts Options) (*ScanResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.Int("symbol_count", len(build.Entities))))
	defer span.End()
	_ = ctx

	if opts.ProtectedDirs == nil {
		opts.ProtectedDirs = DefaultProtectedDirs
	}
	if opts.PluginDirs == nil {
		opts.PluginDirs = wisdom.DefaultPluginDirs
	}

	var stageCounts [6]int

	runDirectoryStage(build, opts, &stageCounts)
	runReferenceStage(build, &stageCounts)
	runWisdomStage(build, opts, &stageCounts)

	if candidatesEmpty(build) {
		return finish(build, opts, stageCounts), nil
	}

	if opts.LibraryMode {
		runLibraryModeStage(build, &stageCounts)
		if candidatesEmpty(build) {
			return finish(build, opts, stageCounts), nil
		}
	}

	runBridgeShieldStage(root, build, opts, &stageCounts)
	if candidatesEmpty(build) {
		return finish(build, opts, stageCounts), nil
	}

	runGrepShieldStage(root, build, opts, &stageCounts)

	return finish(build, opts, stageCounts), nil
}

// runDirectoryStage is stage 0: any entity under a protected directory is
// protected for that reason alone, regardless of reachability.
func runDirectoryStage(build *graph.BuildResult, opts Options, stageCounts *[6]int) {
	for _, e := range build.Entities {
		if e.IsModuleSentinel() || e.ProtectedBy != ast.ProtectionNone {
			continue
		}
		if inProtectedDir(e.FilePath, opts.ProtectedDirs) {
			e.ProtectedBy = ast.ProtectionDirectory
			stageCounts[0]++
		}
	}
}

// runReferenceStage is stage 1: any entity with an incoming graph edge
// (from anywhere, including its own file) survives.
func runReferenceStage(build *graph.BuildResult, stageCounts *[6]int) {
	for id, e := range build.Entities {
		if e.IsModuleSentinel() || e.ProtectedBy != ast.ProtectionNone {
			continue
		}
		if build.Graph.HasIncomingEdge(id) {
			e.ProtectedBy = ast.ProtectionReferenced
			stageCounts[1]++
		}
	}
}

// runWisdomStage is stage "2+4": the wisdom classifier's 14-rule table,
// applied per file so file-level flags are computed exactly once.
func runWisdomStage(build *graph.BuildResult, opts Options, stageCounts *[6]int) {
	byFile := make(map[string][]*ast.Entity)
	for _, e := range build.Entities {
		if e.IsModuleSentinel() {
			continue
		}
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}

	for file, entities := range byFile {
		content, unmap, err := mmapfile.Map(file)
		if err != nil {
			slog.Warn("pipeline: wisdom stage could not map file", slog.String("file", file), slog.Any("error", err))
			continue
		}
		flags := wisdom.ComputeFileFlags(file, content, opts.PluginDirs)
		before := countProtected(entities)
		wisdom.ClassifyFile(entities, content, flags)
		stageCounts[2] += countProtected(entities) - before
		unmap()
	}
}

// runLibraryModeStage is the opt-in stage 3: any remaining top-level,
// non-private entity is protected as a library's public surface.
func runLibraryModeStage(build *graph.BuildResult, stageCounts *[6]int) {
	for _, e := range build.Entities {
		if e.IsModuleSentinel() || e.ProtectedBy != ast.ProtectionNone {
			continue
		}
		if e.ParentClass == "" && ast.IsExported(e.Name) {
			e.ProtectedBy = ast.ProtectionLibraryMode
			stageCounts[3]++
		}
	}
}

// runBridgeShieldStage is stage 4.5: any remaining entity whose decorator
// text contains a JS/TS quoted URL-path literal is shielded.
func runBridgeShieldStage(root string, build *graph.BuildResult, opts Options, stageCounts *[6]int) {
	bridgePaths, err := extscan.BridgePaths(root, opts.GrepShieldOptions.ExcludeDirs)
	if err != nil {
		slog.Warn("pipeline: bridge extraction failed", slog.Any("error", err))
		return
	}
	if len(bridgePaths) == 0 {
		return
	}
	for _, e := range build.Entities {
		if e.IsModuleSentinel() || e.ProtectedBy != ast.ProtectionNone {
			continue
		}
		for _, d := range e.Decorators {
			if decoratorMatchesAnyBridgePath(d, bridgePaths) {
				e.ProtectedBy = ast.ProtectionGrepShield
				stageCounts[4]++
				break
			}
		}
	}
}

// runGrepShieldStage is stage 5: a project-wide grep for the names of every
// still-dead entity.
func runGrepShieldStage(root string, build *graph.BuildResult, opts Options, stageCounts *[6]int) {
	names := remainingNames(build)
	if len(names) == 0 {
		return
	}
	found, err := extscan.GrepShield(root, names, opts.GrepShieldOptions)
	if err != nil {
		slog.Warn("pipeline: grep shield failed", slog.Any("error", err))
		return
	}
	for _, e := range build.Entities {
		if e.IsModuleSentinel() || e.ProtectedBy != ast.ProtectionNone {
			continue
		}
		if found[e.Name] {
			e.ProtectedBy = ast.ProtectionGrepShield
			stageCounts[5]++
		}
	}
}

func finish(build *graph.BuildResult, opts Options, stageCounts [6]int) *ScanResult {
	res := &ScanResult{StageCounts: stageCounts}
	protectedFiles := make(map[string]bool)

	for _, e := range build.Entities {
		if e.IsModuleSentinel() {
			continue
		}
		res.Total++
		if e.ProtectedBy == ast.ProtectionNone {
			res.Dead = append(res.Dead, e)
		} else {
			res.Protected = append(res.Protected, e)
			protectedFiles[e.FilePath] = true
		}
	}

	sortEntities(res.Dead)
	sortEntities(res.Protected)

	entryPoints := opts.OrphanEntryPointFiles
	if entryPoints == nil {
		entryPoints = orphan.DefaultEntryPointFiles
	}
	raw := orphan.Detect(build, orphan.Options{EntryPointFiles: entryPoints, PluginDirs: opts.PluginDirs})
	res.OrphanFiles = orphan.Refine(raw, protectedFiles)

	return res
}

func candidatesEmpty(build *graph.BuildResult) bool {
	for _, e := range build.Entities {
		if !e.IsModuleSentinel() && e.ProtectedBy == ast.ProtectionNone {
			return false
		}
	}
	return true
}

func remainingNames(build *graph.BuildResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range build.Entities {
		if e.IsModuleSentinel() || e.ProtectedBy != ast.ProtectionNone {
			continue
		}
		if !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, e.Name)
		}
	}
	return out
}

func countProtected(entities []*ast.Entity) int {
	n := 0
	for _, e := range entities {
		if e.ProtectedBy != ast.ProtectionNone {
			n++
		}
	}
	return n
}

func inProtectedDir(filePath string, protectedDirs map[string]bool) bool {
	for _, seg := range strings.Split(filepath.ToSlash(filePath), "/") {
		if protectedDirs[seg] {
			return true
		}
	}
	return false
}

func decoratorMatchesAnyBridgePath(decorator string, bridgePaths map[string]bool) bool {
	for p := range bridgePaths {
		if strings.Contains(decorator, p) {
			return true
		}
	}
	return false
}

func sortEntities(entities []*ast.Entity) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].FilePath != entities[j].FilePath {
			return entities[i].FilePath < entities[j].FilePath
		}
		return entities[i].QualifiedName < entities[j].QualifiedName
	})
}
