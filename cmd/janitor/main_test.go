// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunScan_ArchivesSymbolRegistry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "app.py"),
		[]byte("def dead():\n    pass\n\n\ndef main():\n    pass\n"),
		0o644,
	))

	projectPath = root
	configPath = ""
	libraryMode = false
	scanCmd.SetContext(context.Background())

	require.NoError(t, runScan(scanCmd, nil))

	_, err := os.Stat(filepath.Join(root, ".janitor", "symbols.janitor"))
	require.NoError(t, err, "scan must archive the symbol registry")
}

func TestRunPurge_RejectsWithoutToken(t *testing.T) {
	root := t.TempDir()
	projectPath = root
	purgeToken = ""
	dryRun = false
	purgeCmd.SetContext(context.Background())

	err := runPurge(purgeCmd, nil)
	require.Error(t, err)
}
