// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command janitor is the CLI front-end to the dead-code elimination
// pipeline: scan a project, preview or apply deletions, deduplicate
// structurally identical functions, and inspect the result through a small
// Datalog query layer.
package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

func main() {
	initLogger()
	err := rootCmd.Execute()
	shutdownTracing()
	if err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	level := slog.LevelInfo
	if os.Getenv("JANITOR_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// colorEnabled reports whether stdout is a real terminal, the way the CLI
// decides whether to emit ANSI color in its purge diff preview.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
