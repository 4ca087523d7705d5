// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extscan

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

// DefaultGrepExtensions is the spec §4.7 extension set scanned by the grep
// shield.
var DefaultGrepExtensions = map[string]bool{}

func init() {
	for _, e := range []string{
		"html", "htm", "css", "scss", "js", "jsx", "ts", "tsx", "vue", "svelte",
		"xml", "yaml", "yml", "toml", "json", "ini", "cfg", "env", "conf",
		"jinja", "j2", "mako", "md", "rst", "txt", "sh", "bash",
	} {
		DefaultGrepExtensions[e] = true
	}
}

// DefaultExcludeDirs mirrors graph.DefaultExcludeDirs; kept as its own copy
// so extscan has no import dependency on the graph package.
var DefaultExcludeDirs = map[string]bool{
	"__pycache__": true, ".git": true, ".janitor": true, "venv": true,
	".venv": true, "target": true, "node_modules": true, ".pytest_cache": true,
}

// GrepShieldOptions configures GrepShield's directory walk.
type GrepShieldOptions struct {
	ExcludeDirs map[string]bool
	Extensions  map[string]bool
}

// DefaultGrepShieldOptions returns the spec-mandated sets.
func DefaultGrepShieldOptions() GrepShieldOptions {
	return GrepShieldOptions{ExcludeDirs: DefaultExcludeDirs, Extensions: DefaultGrepExtensions}
}

// GrepShield builds an Aho-Corasick automaton over names and streams every
// file under root whose extension is in the grep set, recording each name
// whose pattern matches at least once. Terminates early once every name is
// found. Returns the empty set immediately if names is empty (spec §4.7).
func GrepShield(root string, names []string, opts GrepShieldOptions) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(names) == 0 {
		return found, nil
	}
	if opts.ExcludeDirs == nil {
		opts.ExcludeDirs = DefaultExcludeDirs
	}
	if opts.Extensions == nil {
		opts.Extensions = DefaultGrepExtensions
	}

	a := newAutomaton(names)
	remaining := make(map[int]bool, len(names))
	for i := range names {
		remaining[i] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && opts.ExcludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(remaining) == 0 {
			return filepath.SkipAll
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if !opts.Extensions[ext] {
			return nil
		}
		content, unmap, err := mmapfile.Map(path)
		if err != nil {
			return nil
		}
		a.search(content, remaining, func(idx int) {
			found[names[idx]] = true
		})
		unmap()
		return nil
	})
	if err != nil {
		return found, err
	}
	return found, nil
}
