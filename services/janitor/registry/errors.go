// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import "errors"

// ErrArchiveInvalid covers a corrupt, truncated, or version-mismatched
// archive header — a hard error on open, never tolerated like a parse error.
var ErrArchiveInvalid = errors.New("registry: archive invalid")

// ErrNotSorted names an archive whose rows are not sorted by id. No function
// in this package returns it: Save always sorts before writing.
var ErrNotSorted = errors.New("registry: rows not sorted by id")

// ErrNotFound is returned by FindByID when no row matches.
var ErrNotFound = errors.New("registry: symbol id not found")
