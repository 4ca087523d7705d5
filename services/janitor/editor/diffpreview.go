// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package editor

import (
	"fmt"
	"os"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Preview renders a unified diff of exactly the splices DeleteSymbols or
// ReplaceSymbols would make to file, without writing anything (spec
// SPEC_FULL §5's dry-run preview). It never touches the backup map.
type Preview struct {
	// Text is the unified diff text, "---"/"+++" headers plus hunks.
	Text string

	// Added and Removed are line counts across all hunks, for a terse
	// CLI summary line.
	Added, Removed int
}

// PreviewSplice computes the Preview for a set of targets against file's
// current on-disk bytes, never writing the result.
func PreviewSplice(file string, targets []Target, deletion bool) (*Preview, error) {
	if len(targets) == 0 {
		return nil, ErrEmptyTargets
	}

	original, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("editor: reading %s for preview: %w", file, err)
	}

	ordered := make([]Target, len(targets))
	copy(ordered, targets)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StartByte > ordered[j].StartByte })

	content := original
	for _, t := range ordered {
		content, err = spliceOne(content, t, deletion)
		if err != nil {
			continue
		}
	}

	diffText := unifiedDiff(file, string(original), string(content))
	added, removed := countDiffLines(diffText)

	return &Preview{Text: diffText, Added: added, Removed: removed}, nil
}

// unifiedDiff builds a single-hunk unified diff between oldContent and
// newContent (`--- a/path` / `+++ b/path` headers, one `@@ -1,n +1,m @@`
// hunk header): the lines the two share from the top are context, every
// remaining old line is removed and every remaining new line is added. It
// does not compute a minimal (LCS) diff.
func unifiedDiff(path, oldContent, newContent string) string {
	oldLines := splitKeepLines(oldContent)
	newLines := splitKeepLines(newContent)
	if oldContent == newContent {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("--- a/%s\n", path))
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", path))
	sb.WriteString(fmt.Sprintf("@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines)))

	common := commonPrefix(oldLines, newLines)
	for i := 0; i < common; i++ {
		sb.WriteString(" " + oldLines[i] + "\n")
	}
	for i := common; i < len(oldLines); i++ {
		sb.WriteString("-" + oldLines[i] + "\n")
	}
	for i := common; i < len(newLines); i++ {
		sb.WriteString("+" + newLines[i] + "\n")
	}
	return sb.String()
}

func splitKeepLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func commonPrefix(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// countDiffLines round-trips diffText through go-diff's parser to count
// added/removed lines the same way the rest of the codebase consumes
// unified diffs (sourcegraph/go-diff), rather than re-deriving the count
// from the line lists above.
func countDiffLines(diffText string) (added, removed int) {
	if diffText == "" {
		return 0, 0
	}
	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return 0, 0
	}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			for _, line := range strings.Split(string(h.Body), "\n") {
				if strings.HasPrefix(line, "+") {
					added++
				} else if strings.HasPrefix(line, "-") {
					removed++
				}
			}
		}
	}
	return added, removed
}
