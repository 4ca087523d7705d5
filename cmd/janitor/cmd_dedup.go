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
	"github.com/codejanitor/janitor/services/janitor/dedup"
	"github.com/codejanitor/janitor/services/janitor/preflight"
)

func runDedup(cmd *cobra.Command, args []string) error {
	if !authz.VerifyToken(dedupToken) {
		return fmt.Errorf("%s", authz.RefusalMessage)
	}

	ctx := cmd.Context()

	result, err := preflight.Check(ctx, projectPath, preflight.Config{Force: forcePreflight, AutoStash: autoStash})
	if err != nil {
		return fmt.Errorf("preflight check: %w", err)
	}
	if !result.Passed {
		return fmt.Errorf("preflight: %s", result.BlockedReason)
	}
	defer preflight.Cleanup(ctx, projectPath, result)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	build, err := buildGraph(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building reference graph: %w", err)
	}

	var entities []*ast.Entity
	for _, e := range build.Entities {
		if !e.IsModuleSentinel() {
			entities = append(entities, e)
		}
	}
	groups := dedup.GroupByHash(entities)
	if len(groups) == 0 {
		fmt.Println("no structurally identical functions found")
		return nil
	}

	opts := dedup.Options{ProjectRoot: projectPath}
	if testRunner != "" {
		opts.TestRunner = strings.Fields(testRunner)
	}

	results, err := dedup.Apply(ctx, groups, nil, opts)
	if err != nil {
		return fmt.Errorf("deduplicating: %w", err)
	}

	for _, r := range results {
		names := make([]string, 0, len(r.Group.Members))
		for _, m := range r.Group.Members {
			names = append(names, m.Name)
		}
		if r.Applied {
			fmt.Printf("merged [%s] (hash %d)\n", strings.Join(names, ", "), r.Group.Hash)
		} else {
			fmt.Printf("skipped [%s] (hash %d): %s\n", strings.Join(names, ", "), r.Group.Hash, r.SkipReason)
		}
	}
	return nil
}
