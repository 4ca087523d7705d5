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

var bridgeExtensions = map[string]bool{".js": true, ".jsx": true, ".ts": true, ".tsx": true}

// BridgePaths walks every JS/TS/JSX/TSX file under root and collects quoted
// string literals that begin with '/', body length > 1, containing only
// ASCII-printable non-quote bytes (spec §4.7's bridge extractor). The result
// feeds the pipeline's stage 4.5 bridge shield.
func BridgePaths(root string, excludeDirs map[string]bool) (map[string]bool, error) {
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}
	paths := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !bridgeExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		content, unmap, err := mmapfile.Map(path)
		if err != nil {
			return nil
		}
		for _, p := range extractQuotedPaths(content) {
			paths[p] = true
		}
		unmap()
		return nil
	})
	return paths, err
}

// extractQuotedPaths scans content byte-by-byte for quoted string literals
// whose body begins with '/', has length > 1, and is entirely ASCII
// printable non-quote bytes.
func extractQuotedPaths(content []byte) []string {
	var out []string
	n := len(content)
	for i := 0; i < n; i++ {
		q := content[i]
		if q != '\'' && q != '"' && q != '`' {
			continue
		}
		j := i + 1
		for j < n && content[j] != q {
			if content[j] < 0x20 || content[j] > 0x7e {
				break
			}
			j++
		}
		if j < n && content[j] == q {
			body := content[i+1 : j]
			if len(body) > 1 && body[0] == '/' {
				out = append(out, string(body))
			}
		}
		i = j
	}
	return out
}
