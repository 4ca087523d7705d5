// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/authz"
	"github.com/codejanitor/janitor/services/janitor/editor"
	"github.com/codejanitor/janitor/services/janitor/pipeline"
	"github.com/codejanitor/janitor/services/janitor/preflight"
)

func runPurge(cmd *cobra.Command, args []string) error {
	if !dryRun && !authz.VerifyToken(purgeToken) {
		return fmt.Errorf("%s", authz.RefusalMessage)
	}

	ctx := cmd.Context()

	if !dryRun {
		result, err := preflight.Check(ctx, projectPath, preflight.Config{Force: forcePreflight, AutoStash: autoStash})
		if err != nil {
			return fmt.Errorf("preflight check: %w", err)
		}
		if !result.Passed {
			return fmt.Errorf("preflight: %s", result.BlockedReason)
		}
		defer preflight.Cleanup(ctx, projectPath, result)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	build, err := buildGraph(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building reference graph: %w", err)
	}
	res, err := pipeline.Run(ctx, projectPath, build, cfg.ToPipelineOptions())
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	byFile := groupByFile(res.Dead)
	if dryRun {
		return previewPurge(byFile)
	}
	return applyPurge(byFile)
}

func groupByFile(entities []*ast.Entity) map[string][]*ast.Entity {
	byFile := make(map[string][]*ast.Entity)
	for _, e := range entities {
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}
	return byFile
}

func targetsFor(entities []*ast.Entity) []editor.Target {
	targets := make([]editor.Target, 0, len(entities))
	for _, e := range entities {
		targets = append(targets, editor.Target{StartByte: e.StartByte, EndByte: e.EndByte})
	}
	return targets
}

func previewPurge(byFile map[string][]*ast.Entity) error {
	color := colorEnabled()
	for file, entities := range byFile {
		preview, err := editor.PreviewSplice(file, targetsFor(entities), true)
		if err != nil {
			return fmt.Errorf("previewing %s: %w", file, err)
		}
		fmt.Printf("--- %s (+%d/-%d) ---\n%s\n", file, preview.Added, preview.Removed, renderDiff(preview.Text, color))
	}
	return nil
}

// renderDiff colorizes added/removed lines when stdout is a terminal.
func renderDiff(diffText string, color bool) string {
	if !color {
		return diffText
	}
	lines := strings.Split(diffText, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = "\x1b[32m" + line + "\x1b[0m"
		case strings.HasPrefix(line, "-"):
			lines[i] = "\x1b[31m" + line + "\x1b[0m"
		}
	}
	return strings.Join(lines, "\n")
}

func applyPurge(byFile map[string][]*ast.Entity) error {
	e := editor.New(projectPath)
	for file, entities := range byFile {
		if err := e.DeleteSymbols(file, targetsFor(entities)); err != nil {
			return fmt.Errorf("deleting from %s: %w", file, err)
		}
	}
	if err := e.Commit(); err != nil {
		return fmt.Errorf("committing purge: %w", err)
	}
	fmt.Printf("purged %d symbols across %d files\n", countEntities(byFile), len(byFile))
	return nil
}

func countEntities(byFile map[string][]*ast.Entity) int {
	n := 0
	for _, entities := range byFile {
		n += len(entities)
	}
	return n
}
