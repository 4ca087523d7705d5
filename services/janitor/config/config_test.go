// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/config"
)

func TestLoad_DefaultsWithNoConfigFile(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.Contains(t, cfg.ProtectedDirs, "tests")
	require.True(t, cfg.Languages.Python)
	require.False(t, cfg.LibraryMode)
}

func TestLoad_ReadsYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := "library_mode: true\nprotected_dirs:\n  - vendor\n  - generated\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".janitor.yaml"), []byte(yaml), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.True(t, cfg.LibraryMode)
	require.ElementsMatch(t, []string{"vendor", "generated"}, cfg.ProtectedDirs)
}

func TestLoad_EnvVarOverridesLibraryMode(t *testing.T) {
	t.Setenv("JANITOR_LIBRARY_MODE", "true")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.True(t, cfg.LibraryMode)
}

func TestLoad_RejectsEmptyDirEntries(t *testing.T) {
	dir := t.TempDir()
	yaml := "protected_dirs:\n  - \"\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".janitor.yaml"), []byte(yaml), 0o644))

	_, err := config.Load(dir)
	require.Error(t, err)
}

func TestToPipelineOptions_CarriesResolvedSets(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	opts := cfg.ToPipelineOptions()
	require.True(t, opts.ProtectedDirs["tests"])
	require.NotEmpty(t, opts.GrepShieldOptions.Extensions)
	require.NotEmpty(t, opts.OrphanEntryPointFiles)
}
