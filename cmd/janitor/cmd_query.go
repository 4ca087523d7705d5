// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codejanitor/janitor/services/janitor/pipeline"
	"github.com/codejanitor/janitor/services/janitor/query"
)

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	build, err := buildGraph(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building reference graph: %w", err)
	}
	scan, err := pipeline.Run(ctx, projectPath, build, cfg.ToPipelineOptions())
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	res, err := query.Run(build, scan, query.Options{ExtraRulesPath: extraRulesPath})
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	switch queryPredicate {
	case "orphaned_caller":
		printNames("orphaned_caller", res.OrphanedCallers)
	default:
		printNames("transitively_dead", res.TransitivelyDead)
	}
	return nil
}

func printNames(predicate string, names []string) {
	fmt.Printf("%s (%d):\n", predicate, len(names))
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
}
