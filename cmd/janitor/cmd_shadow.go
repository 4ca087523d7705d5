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

	"github.com/codejanitor/janitor/services/janitor/shadow"
)

func runShadowInit(cmd *cobra.Command, args []string) error {
	tree, err := shadow.Initialize(projectPath, shadow.DefaultExcludeDirs)
	if err != nil {
		return fmt.Errorf("initializing shadow tree: %w", err)
	}
	_ = tree
	fmt.Println("shadow tree ready at .janitor/shadow_src")
	return nil
}

func runShadowVerify(cmd *cobra.Command, args []string) error {
	tree, err := shadow.Open(projectPath, shadow.DefaultExcludeDirs)
	if err != nil {
		return fmt.Errorf("opening shadow tree: %w", err)
	}
	broken, err := tree.VerifyIntegrity()
	if err != nil {
		return fmt.Errorf("verifying shadow tree: %w", err)
	}
	if len(broken) == 0 {
		fmt.Println("shadow tree intact")
		return nil
	}
	fmt.Printf("%d broken symlinks:\n", len(broken))
	for _, p := range broken {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
