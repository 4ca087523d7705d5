// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extscan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/extscan"
)

// Scenario 8 (spec §8): a name with no Python references but a literal hit
// in a template file must be found by the grep shield.
func TestGrepShield_FindsTemplateReference(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "templates", "home.html"),
		[]byte("<div>{{ render_widget }}</div>"),
		0o644,
	))

	found, err := extscan.GrepShield(root, []string{"render_widget", "totally_unused"}, extscan.DefaultGrepShieldOptions())
	require.NoError(t, err)
	require.True(t, found["render_widget"])
	require.False(t, found["totally_unused"])
}

func TestGrepShield_EmptyNamesReturnsEmpty(t *testing.T) {
	found, err := extscan.GrepShield(t.TempDir(), nil, extscan.DefaultGrepShieldOptions())
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestBridgePaths_ExtractsQuotedRoutePaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "routes.ts"),
		[]byte(`fetch("/api/v1/widgets"); const x = 'not-a-path';`),
		0o644,
	))

	paths, err := extscan.BridgePaths(root, nil)
	require.NoError(t, err)
	require.True(t, paths["/api/v1/widgets"])
	require.False(t, paths["not-a-path"])
}

func TestDidYouMean_SurfacesCloseToken(t *testing.T) {
	hint, ok := extscan.DidYouMean("render_widget", []string{"render_widgets", "unrelated_thing"})
	require.True(t, ok)
	require.Equal(t, "render_widgets", hint)
}

func TestDidYouMean_RejectsDistantCandidates(t *testing.T) {
	_, ok := extscan.DidYouMean("render_widget", []string{"zzz"})
	require.False(t, ok)
}

func TestCollectExternalTokens_FindsTemplateIdentifiers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "home.html"),
		[]byte("<p>{{ render_widgets }}</p>"),
		0o644,
	))

	tokens, err := extscan.CollectExternalTokens(root, extscan.DefaultGrepShieldOptions(), 100)
	require.NoError(t, err)
	require.Contains(t, tokens, "render_widgets")
	require.NotContains(t, tokens, "p", "tokens shorter than three characters are dropped")
}
