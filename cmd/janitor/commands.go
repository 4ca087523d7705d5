// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codejanitor/janitor/services/janitor/extscan"
)

var (
	projectPath    string
	configPath     string
	libraryMode    bool
	purgeToken     string
	dedupToken     string
	dryRun         bool
	extraRulesPath string
	queryPredicate string
	testRunner     string
	forcePreflight bool
	autoStash      bool
	traceEnabled   bool

	rootCmd = &cobra.Command{
		Use:   "janitor",
		Short: "Find and safely remove dead code from a project",
		Long: `janitor extracts every definition in a project, builds a cross-file
reference graph, and runs it through a staged classifier to separate dead
code from everything a human or a framework still reaches.`,
		SilenceUsage:      true,
		PersistentPreRunE: resolveProjectPath,
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestCommand(args)
			return cmd.Help()
		},
	}

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Run the pipeline and report dead and protected symbols",
		RunE:  runScan,
	}

	purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete dead symbols from disk (requires --token)",
		Long:  "purge requires an Ed25519-signed authorization token (spec §4.11) unless --dry-run is given; without --dry-run it rewrites files through the Safe Editor.",
		RunE:  runPurge,
	}

	dedupCmd = &cobra.Command{
		Use:   "dedup",
		Short: "Collapse structurally identical functions into one shared implementation",
		RunE:  runDedup,
	}

	shadowCmd = &cobra.Command{
		Use:   "shadow",
		Short: "Manage the shadow tree used to simulate deletions",
	}
	shadowInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a symlink mirror of the project under .janitor/shadow_src",
		RunE:  runShadowInit,
	}
	shadowVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Report any broken symlinks in the shadow tree",
		RunE:  runShadowVerify,
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Run a fresh scan and Datalog rules over its facts",
		RunE:  runQuery,
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rescan automatically whenever project files change",
		RunE:  runWatch,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&projectPath, "path", ".", "Project root to operate on")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Directory containing .janitor.yaml (defaults to --path)")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "Emit OpenTelemetry spans for parsing and pipeline stages to stderr")

	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&libraryMode, "library-mode", false, "Protect every top-level exported symbol (stage 3, opt-in)")

	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().StringVar(&purgeToken, "token", "", "Base64 Ed25519 signature authorizing the purge")
	purgeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the diff without writing any file")
	purgeCmd.Flags().BoolVar(&forcePreflight, "force", false, "Proceed even if the git working tree is dirty")
	purgeCmd.Flags().BoolVar(&autoStash, "auto-stash", false, "Stash uncommitted changes before purging, then restore them")

	rootCmd.AddCommand(dedupCmd)
	dedupCmd.Flags().StringVar(&dedupToken, "token", "", "Base64 Ed25519 signature authorizing the rewrite")
	dedupCmd.Flags().StringVar(&testRunner, "test-runner", "", "Command to verify each rewrite, e.g. \"pytest -q\"")
	dedupCmd.Flags().BoolVar(&forcePreflight, "force", false, "Proceed even if the git working tree is dirty")
	dedupCmd.Flags().BoolVar(&autoStash, "auto-stash", false, "Stash uncommitted changes before deduplicating, then restore them")

	rootCmd.AddCommand(shadowCmd)
	shadowCmd.AddCommand(shadowInitCmd)
	shadowCmd.AddCommand(shadowVerifyCmd)

	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&extraRulesPath, "rules", "", "Extra .mg rule file appended to the bundled rules")
	queryCmd.Flags().StringVar(&queryPredicate, "predicate", "transitively_dead", "Derived predicate to print: transitively_dead or orphaned_caller")

	rootCmd.AddCommand(watchCmd)
}

// suggestCommand prints a "did you mean" hint for an unrecognized
// subcommand instead of cobra's bare usage dump.
func suggestCommand(args []string) {
	if len(args) == 0 {
		return
	}
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	if suggestion, ok := extscan.DidYouMean(args[0], names); ok {
		fmt.Fprintf(os.Stderr, "unknown command %q, did you mean %q?\n", args[0], suggestion)
	}
}
