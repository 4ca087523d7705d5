// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import (
	_ "embed"
	"os"
)

// defaultRules is the bundled program: transitively_dead closes dead(X)
// under the calls(X, Y) edge, so that a callee Y of a transitively dead
// caller is itself marked transitively dead, recursively, unless Y holds a
// protection other than Referenced.
//
//go:embed default.mg
var defaultRules string

// LoadRules returns the bundled rule source, optionally followed by the
// contents of an extra user-supplied .mg file (spec's `--rules extra.mg`
// flag). Extra rules may reference dead/protected/calls/in_file and define
// further derived predicates; they are concatenated, not merged clause by
// clause, so later declarations of the same predicate simply add clauses.
func LoadRules(extraPath string) (string, error) {
	if extraPath == "" {
		return defaultRules, nil
	}
	extra, err := os.ReadFile(extraPath)
	if err != nil {
		return "", err
	}
	return defaultRules + "\n" + string(extra), nil
}
