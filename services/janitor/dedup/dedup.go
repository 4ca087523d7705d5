// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dedup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/editor"
)

// Options configures one deduplication run.
type Options struct {
	// ProjectRoot is the working directory the test runner is invoked in.
	ProjectRoot string

	// TestRunner is the external verification command (e.g.
	// []string{"pytest", "-q"}). A nil or empty slice skips verification
	// and treats the rewrite as accepted outright.
	TestRunner []string
}

// Result reports what happened to one duplicate group.
type Result struct {
	Group      Group
	Applied    bool
	SkipReason string
}

// Apply rewrites every same-file duplicate group in groups: it appends a
// canonical `_<name>_impl` function to the group's shared file and
// replaces every member's body with a call into it, driving the edit
// through one Safe Editor transaction per file. After all groups in a
// file are rewritten, it invokes opts.TestRunner in opts.ProjectRoot;
// failure rolls the file back via RestoreAll, success commits.
func Apply(ctx context.Context, groups []Group, fileContents map[string][]byte, opts Options) ([]Result, error) {
	byFile := make(map[string][]Group)
	var results []Result

	for _, g := range groups {
		if !g.SameFile() {
			results = append(results, Result{Group: g, SkipReason: "duplicate group spans multiple files; no single file to host _impl"})
			slog.Warn("dedup: skipping cross-file group", slog.Uint64("hash", g.Hash))
			continue
		}
		file := g.Members[0].FilePath
		byFile[file] = append(byFile[file], g)
	}

	for file, fileGroups := range byFile {
		content := fileContents[file]
		if content == nil {
			var err error
			content, err = os.ReadFile(file)
			if err != nil {
				return results, fmt.Errorf("dedup: reading %s: %w", file, err)
			}
		}

		e := editor.New(opts.ProjectRoot)
		applied, err := rewriteFile(e, file, content, fileGroups)
		if err != nil {
			return results, fmt.Errorf("dedup: rewriting %s: %w", file, err)
		}
		if !applied {
			continue
		}

		rolledBack := false
		if runTests(ctx, opts) {
			if err := e.Commit(); err != nil {
				return results, fmt.Errorf("dedup: committing %s: %w", file, err)
			}
		} else {
			if err := e.RestoreAll(); err != nil {
				return results, fmt.Errorf("dedup: restoring %s: %w", file, err)
			}
			rolledBack = true
		}

		for _, g := range fileGroups {
			if rolledBack {
				results = append(results, Result{Group: g, SkipReason: "test runner failed; file rolled back"})
			} else {
				results = append(results, Result{Group: g, Applied: true})
			}
		}
	}

	return results, nil
}

// rewriteFile appends every group's `_<name>_impl` to the end of file and
// replaces every member's body with a proxy call, all through one Safe
// Editor transaction.
func rewriteFile(e *editor.Editor, file string, content []byte, groups []Group) (bool, error) {
	var appendix strings.Builder
	var replaceTargets []editor.Target

	for _, g := range groups {
		canonical := g.Members[0]
		_, canonicalParams, err := ExtractParams(content, canonical)
		if err != nil {
			slog.Warn("dedup: could not extract canonical parameters", slog.String("file", file), slog.String("name", canonical.Name))
			continue
		}
		implName := fmt.Sprintf("_%s_impl", canonical.Name)
		body := BodyAfterSignature(content, canonical)

		appendix.WriteString("\n\n")
		appendix.WriteString(fmt.Sprintf("def %s(%s):", implName, strings.Join(canonicalParams, ", ")))
		appendix.WriteString(body)
		appendix.WriteString("\n")

		for _, member := range g.Members {
			_, memberParams, err := ExtractParams(content, member)
			if err != nil {
				slog.Warn("dedup: could not extract member parameters", slog.String("file", file), slog.String("name", member.Name))
				continue
			}
			call := fmt.Sprintf("\n    return %s(%s)\n", implName, strings.Join(memberParams, ", "))
			replaceTargets = append(replaceTargets, symbolBodyTarget(content, member, call))
		}
	}

	if appendix.Len() == 0 {
		return false, nil
	}

	if len(replaceTargets) > 0 {
		if err := e.ReplaceSymbols(file, replaceTargets); err != nil {
			return false, err
		}
	}

	// The new functions are appended at the end of the (now-rewritten)
	// file, following the existing content (spec §6). The Safe Editor skips
	// an empty range, so the whole file is replaced by itself plus the
	// appendix.
	current, err := os.ReadFile(file)
	if err != nil {
		return false, err
	}
	endOfFile := uint32(len(current))
	if err := e.ReplaceSymbols(file, []editor.Target{{
		StartByte:   0,
		EndByte:     endOfFile,
		Replacement: append(current, appendix.String()...),
	}}); err != nil {
		return false, err
	}

	return true, nil
}

// symbolBodyTarget builds the Target that replaces member's signature-body
// with a proxy call into the shared implementation.
func symbolBodyTarget(content []byte, member *ast.Entity, call string) editor.Target {
	bodyText := BodyAfterSignature(content, member)
	bodyStart := member.EndByte - uint32(len(bodyText))
	return editor.Target{StartByte: bodyStart, EndByte: member.EndByte, Replacement: []byte(call)}
}

// runTests invokes opts.TestRunner in opts.ProjectRoot. A missing runner
// binary is treated as a warning, not a verification failure (spec §6);
// everything else (non-zero exit, context cancellation) fails the run.
func runTests(ctx context.Context, opts Options) bool {
	if len(opts.TestRunner) == 0 {
		return true
	}

	cmd := exec.CommandContext(ctx, opts.TestRunner[0], opts.TestRunner[1:]...)
	cmd.Dir = opts.ProjectRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return true
	}
	if _, ok := err.(*exec.Error); ok {
		slog.Warn("dedup: test runner not found, treating as pass", slog.String("runner", opts.TestRunner[0]))
		return true
	}
	slog.Warn("dedup: test runner failed, rolling back", slog.String("runner", opts.TestRunner[0]), slog.String("stderr", stderr.String()))
	return false
}
