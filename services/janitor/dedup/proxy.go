// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dedup

import (
	"bytes"
	"errors"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/ast"
)

// ErrNoParameterList is returned when an entity's source text has no
// balanced `(...)` after its definition start.
var ErrNoParameterList = errors.New("dedup: no balanced parameter list found")

// ExtractParams locates the first balanced `(...)` after e's definition
// start and returns its raw text (without the parens) and the leading
// identifier of each top-level comma-separated parameter — each taken
// verbatim up to its first `:` or `=`, whitespace-stripped, with empty
// entries (from a bare trailing comma) removed.
func ExtractParams(content []byte, e *ast.Entity) (raw string, names []string, err error) {
	body := entityText(content, e)

	open := bytes.IndexByte(body, '(')
	if open < 0 {
		return "", nil, ErrNoParameterList
	}
	closeIdx, ok := matchParen(body, open)
	if !ok {
		return "", nil, ErrNoParameterList
	}

	raw = string(body[open+1 : closeIdx])
	for _, part := range splitTopLevel(raw, ',') {
		name := leadingIdentifier(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return raw, names, nil
}

// BodyAfterSignature returns the definition's body: everything after the
// first top-level `:` that follows the parameter list's closing paren
// (skipping an optional `-> ReturnType` annotation), up to e's end.
func BodyAfterSignature(content []byte, e *ast.Entity) string {
	body := entityText(content, e)
	open := bytes.IndexByte(body, '(')
	if open < 0 {
		return ""
	}
	closeIdx, ok := matchParen(body, open)
	if !ok {
		return ""
	}
	colon := bytes.IndexByte(body[closeIdx:], ':')
	if colon < 0 {
		return ""
	}
	return string(body[closeIdx+colon+1:])
}

func entityText(content []byte, e *ast.Entity) []byte {
	if e == nil || int(e.EndByte) > len(content) || e.StartByte >= e.EndByte {
		return nil
	}
	return content[e.StartByte:e.EndByte]
}

// matchParen returns the index of the ')' matching the '(' at openIdx.
func matchParen(body []byte, openIdx int) (int, bool) {
	depth := 0
	for i := openIdx; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside any
// bracket pair ((), [], {}).
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// leadingIdentifier returns part's text up to its first ':' or '=',
// whitespace-stripped.
func leadingIdentifier(part string) string {
	end := len(part)
	if i := strings.IndexAny(part, ":="); i >= 0 {
		end = i
	}
	return strings.TrimSpace(part[:end])
}
