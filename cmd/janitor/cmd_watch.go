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
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/codejanitor/janitor/services/janitor/watch"
)

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	w, err := watch.New(projectPath, func(paths []string) {
		fmt.Printf("%d files changed, rescanning...\n", len(paths))
		if err := runScan(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "rescan failed: %v\n", err)
		}
	}, watch.DefaultOptions())
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watching %s: %w", projectPath, err)
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", projectPath)
	<-ctx.Done()
	return nil
}
