// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package mmapfile maps whole files read-only. It is the single place the
// system touches file bytes in bulk: the CST host, the registry archive,
// and every external-file walker (grep shield, bridge extractor, token
// collector) read through Map so their working set stays in the kernel page
// cache instead of the Go heap.
//
// On unix the mapping is a real mmap(2); on windows Map falls back to a
// whole-file read (see mmapfile_windows.go). Either way the caller gets a
// byte slice and a close function that must be called exactly once, and the
// slice must not be used after close.
package mmapfile

// A zero-length file maps to an empty slice (nil on unix, where mmap(2)
// rejects length 0) and a no-op close on every platform; callers that
// consider an empty file invalid (the registry) check for it themselves.
