// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/config"
	"github.com/codejanitor/janitor/services/janitor/extscan"
	"github.com/codejanitor/janitor/services/janitor/graph"
	"github.com/codejanitor/janitor/services/janitor/pipeline"
	"github.com/codejanitor/janitor/services/janitor/registry"
)

// resolveProjectPath is the root command's persistent pre-run hook: it
// defaults an empty --path to "." and sets up tracing. The path is passed
// on as given; the graph builder resolves its own absolute copy.
func resolveProjectPath(cmd *cobra.Command, args []string) error {
	if projectPath == "" {
		projectPath = "."
	}
	return setupTracing()
}

func loadConfig() (*config.Config, error) {
	searchDir := configPath
	if searchDir == "" {
		searchDir = projectPath
	}
	return config.Load(searchDir)
}

func buildGraph(ctx context.Context, cfg *config.Config) (*graph.BuildResult, error) {
	b := graph.NewBuilder(ast.NewHostForLanguages(cfg.EnabledLanguages()), registry.ID, cfg.ToBuildOptions())
	return b.Build(ctx, projectPath)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	build, err := buildGraph(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building reference graph: %w", err)
	}

	opts := cfg.ToPipelineOptions()
	opts.LibraryMode = opts.LibraryMode || libraryMode

	res, err := pipeline.Run(ctx, projectPath, build, opts)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	if err := saveRegistry(build); err != nil {
		return fmt.Errorf("saving symbol registry: %w", err)
	}

	printScanResult(res)
	printNearMissHints(res, opts.GrepShieldOptions)
	return nil
}

// printNearMissHints surfaces external-file tokens that almost match a dead
// name — a symbol misspelled in a template would otherwise be deleted while
// the template silently breaks. Hints never change the classification.
func printNearMissHints(res *pipeline.ScanResult, opts extscan.GrepShieldOptions) {
	if len(res.Dead) == 0 {
		return
	}
	tokens, err := extscan.CollectExternalTokens(projectPath, opts, 20000)
	if err != nil || len(tokens) == 0 {
		return
	}
	for _, e := range res.Dead {
		if hint, ok := extscan.DidYouMean(e.Name, tokens); ok {
			fmt.Printf("  hint: external files mention %q, close to dead symbol %q\n", hint, e.Name)
		}
	}
}

// saveRegistry archives every extracted entity (protection status included)
// to .janitor/symbols.janitor, where later invocations and external readers
// can binary-search it without re-scanning.
func saveRegistry(build *graph.BuildResult) error {
	table := registry.NewTable()
	for _, e := range build.Entities {
		if e.IsModuleSentinel() {
			continue
		}
		table.Insert(registry.FromEntity(e))
	}
	return table.Save(filepath.Join(projectPath, ".janitor", "symbols.janitor"))
}

func printScanResult(res *pipeline.ScanResult) {
	fmt.Printf("scanned %d symbols: %d dead, %d protected\n", res.Total, len(res.Dead), len(res.Protected))
	for i, count := range res.StageCounts {
		if count > 0 {
			fmt.Printf("  stage %d protected %d symbols\n", i, count)
		}
	}
	if len(res.OrphanFiles) > 0 {
		fmt.Printf("orphan files (%d):\n", len(res.OrphanFiles))
		for _, f := range res.OrphanFiles {
			fmt.Printf("  %s\n", f)
		}
	}
	fmt.Println("dead symbols:")
	for _, e := range res.Dead {
		fmt.Printf("  %s:%d %s (%s)\n", e.FilePath, e.StartLine, e.Name, e.Kind)
	}
}
