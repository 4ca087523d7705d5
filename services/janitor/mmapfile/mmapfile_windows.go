// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

//go:build windows

package mmapfile

import "os"

// Map falls back to a single whole-file read on windows. This sacrifices
// the page-cache-only guarantee (the bytes are copied into the Go heap
// once) but keeps the contract identical for every caller; there is no
// ecosystem windows mmap wrapper in this dependency set. A future
// CreateFileMapping/MapViewOfFile-backed implementation would close the
// gap.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
