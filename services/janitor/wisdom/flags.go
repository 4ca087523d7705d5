// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package wisdom implements the per-file Wisdom Classifier (spec §4.6): a
// fixed-order rule table that assigns a protection reason to an entity based
// on framework conventions — decorators, dunder names, ORM metadata, Qt
// slots, __all__ exports, and plugin directories.
package wisdom

import (
	"bytes"
	"path/filepath"
	"strings"
)

var diPatterns = [][]byte{[]byte("Depends("), []byte("Security("), []byte("dependency_overrides")}

var ormMarkers = [][]byte{[]byte("(Model)"), []byte("(Base)"), []byte("(Document)"), []byte("(db.Model)")}

var qtMarkers = [][]byte{[]byte("QWidget"), []byte("QMainWindow"), []byte("QObject")}

var metaprogPatterns = [][]byte{
	[]byte("getattr("), []byte("setattr("), []byte("hasattr("), []byte("delattr("),
	[]byte("eval("), []byte("exec("), []byte("__import__("),
	[]byte("importlib."), []byte(".__dict__"), []byte("type("),
}

var sqlAlchemyMetaBodyMarkers = [][]byte{[]byte("declared_attr"), []byte("hybrid_property"), []byte("hybrid_method")}

// DefaultPluginDirs mirrors orphan.DefaultPluginDirs; kept as its own copy so
// wisdom has no dependency on the orphan package.
var DefaultPluginDirs = map[string]bool{
	"spiders":  true,
	"plugins":  true,
	"commands": true,
	"handlers": true,
	"tasks":    true,
}

// FileFlags are the one-linear-scan-per-flag results computed once per file
// and consulted by every entity rule in that file (spec §4.6).
type FileFlags struct {
	HasDI         bool
	HasORM        bool
	HasSQLAlchemy bool
	HasQt         bool
	HasMetaprog   bool
	IsInit        bool
	IsPluginDir   bool
	AllExports    map[string]bool
}

// ComputeFileFlags scans content once per flag and inspects filePath for the
// path-based flags.
func ComputeFileFlags(filePath string, content []byte, pluginDirs map[string]bool) FileFlags {
	if pluginDirs == nil {
		pluginDirs = DefaultPluginDirs
	}
	lower := bytes.ToLower(content)

	f := FileFlags{
		HasDI:         containsAny(content, diPatterns),
		HasORM:        containsAny(content, ormMarkers),
		HasSQLAlchemy: bytes.Contains(lower, []byte("sqlalchemy")),
		HasQt:         containsAny(content, qtMarkers),
		HasMetaprog:   containsAny(content, metaprogPatterns),
		IsInit:        strings.HasSuffix(filepath.ToSlash(filePath), "__init__.py"),
		AllExports:    extractAllExports(content),
	}
	for _, seg := range strings.Split(filepath.ToSlash(filePath), "/") {
		if pluginDirs[seg] {
			f.IsPluginDir = true
			break
		}
	}
	return f
}

func containsAny(content []byte, patterns [][]byte) bool {
	for _, p := range patterns {
		if bytes.Contains(content, p) {
			return true
		}
	}
	return false
}

// extractAllExports finds the first `__all__ = [ ... ]` or `__all__ = ( ... )`
// literal and returns the set of quoted alphanumeric/underscore tokens
// inside it.
func extractAllExports(content []byte) map[string]bool {
	idx := bytes.Index(content, []byte("__all__"))
	if idx < 0 {
		return nil
	}
	rest := content[idx:]
	open := bytes.IndexAny(rest, "[(")
	if open < 0 {
		return nil
	}
	closeByte := byte(']')
	if rest[open] == '(' {
		closeByte = ')'
	}
	closeIdx := bytes.IndexByte(rest[open:], closeByte)
	if closeIdx < 0 {
		return nil
	}
	body := rest[open+1 : open+closeIdx]

	out := make(map[string]bool)
	var quote byte
	var tok []byte
	for _, b := range body {
		if quote == 0 {
			if b == '\'' || b == '"' {
				quote = b
				tok = tok[:0]
			}
			continue
		}
		if b == quote {
			if len(tok) > 0 && isIdentBytes(tok) {
				out[string(tok)] = true
			}
			quote = 0
			continue
		}
		tok = append(tok, b)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isIdentBytes(b []byte) bool {
	for _, c := range b {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}
