// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mmapfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

func TestMap_ReturnsFileBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("def a(): pass\n"), 0o644))

	data, unmap, err := mmapfile.Map(path)
	require.NoError(t, err)
	require.Equal(t, "def a(): pass\n", string(data))
	require.NoError(t, unmap())
}

func TestMap_EmptyFileYieldsNilSliceAndNoOpClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.py")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	data, unmap, err := mmapfile.Map(path)
	require.NoError(t, err)
	require.Empty(t, data)
	require.NoError(t, unmap())
}

func TestMap_MissingFileFails(t *testing.T) {
	_, _, err := mmapfile.Map(filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)
}
