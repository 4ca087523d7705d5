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
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

// maxHintDistance caps how far a fuzzy candidate may be (Levenshtein) from
// the queried name before a hint is more confusing than helpful.
const maxHintDistance = 3

// DidYouMean is a read-only operator hint: it surfaces the closest string
// actually present in candidates, or nothing when even the best candidate
// is too far away. Only candidates that contain every character of name in
// order, ignoring case, are ranked; a candidate that lacks one of name's
// characters is never suggested. It never changes a classification —
// callers only print it.
func DidYouMean(name string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	best := ranks[0]
	if best.Distance > maxHintDistance || best.Target == name {
		return "", false
	}
	return best.Target, true
}

// CollectExternalTokens walks the same files the grep shield scans and
// returns the identifier-like tokens (letters/digits/underscore, length ≥ 3)
// they contain, deduplicated, capped at maxTokens. This feeds the CLI's
// "did you mean" hint for dead names the grep shield missed — a name that
// appears slightly misspelled in a template is worth a second look before
// deletion.
func CollectExternalTokens(root string, opts GrepShieldOptions, maxTokens int) ([]string, error) {
	if opts.ExcludeDirs == nil {
		opts.ExcludeDirs = DefaultExcludeDirs
	}
	if opts.Extensions == nil {
		opts.Extensions = DefaultGrepExtensions
	}

	seen := make(map[string]bool)
	var tokens []string

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
		if len(tokens) >= maxTokens {
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
		for _, tok := range identifierTokens(content) {
			if !seen[tok] {
				seen[tok] = true
				tokens = append(tokens, tok)
				if len(tokens) >= maxTokens {
					break
				}
			}
		}
		unmap()
		return nil
	})
	if err != nil {
		return tokens, err
	}
	return tokens, nil
}

func identifierTokens(content []byte) []string {
	var out []string
	start := -1
	for i := 0; i <= len(content); i++ {
		var b byte
		if i < len(content) {
			b = content[i]
		}
		isIdent := b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
		if isIdent {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if i-start >= 3 {
				out = append(out, string(content[start:i]))
			}
			start = -1
		}
	}
	return out
}
