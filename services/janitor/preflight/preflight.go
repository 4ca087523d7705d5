// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package preflight guards destructive pipeline operations (purge, dedup)
// against clobbering a developer's uncommitted work. It is additive safety
// on top of the Authorization Gate, not a substitute for it.
package preflight

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Config controls how the guard reacts to a dirty working tree.
type Config struct {
	// Force proceeds despite uncommitted changes.
	Force bool

	// AutoStash stashes uncommitted changes before the caller's operation
	// and is expected to be popped back via Cleanup afterward.
	AutoStash bool
}

// Result reports what Check found.
type Result struct {
	Passed        bool
	NotGitRepo    bool
	DirtyFiles    []string
	StashRef      string
	BlockedReason string
}

// Check reports whether it is safe to let a destructive operation touch
// root. A repository that isn't under git at all is allowed through with
// NotGitRepo set — there's nothing to protect.
func Check(ctx context.Context, root string, cfg Config) (*Result, error) {
	if !isGitRepository(ctx, root) {
		return &Result{Passed: true, NotGitRepo: true}, nil
	}

	dirty, err := dirtyFiles(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("preflight: git status: %w", err)
	}
	if len(dirty) == 0 {
		return &Result{Passed: true}, nil
	}

	if cfg.Force {
		return &Result{Passed: true, DirtyFiles: dirty}, nil
	}

	if cfg.AutoStash {
		if err := runGit(ctx, root, "stash", "push", "-m", "janitor-preflight-autostash"); err != nil {
			return nil, fmt.Errorf("preflight: auto-stash: %w", err)
		}
		return &Result{Passed: true, DirtyFiles: dirty, StashRef: "stash@{0}"}, nil
	}

	return &Result{
		Passed:        false,
		DirtyFiles:    dirty,
		BlockedReason: fmt.Sprintf("working tree has %d uncommitted change(s); commit, stash, or pass --force", len(dirty)),
	}, nil
}

// Cleanup pops a stash created by Check's AutoStash path. A no-op when
// result.StashRef is empty.
func Cleanup(ctx context.Context, root string, result *Result) error {
	if result == nil || result.StashRef == "" {
		return nil
	}
	return runGit(ctx, root, "stash", "pop")
}

func isGitRepository(ctx context.Context, root string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = root
	return cmd.Run() == nil
}

func dirtyFiles(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	cmd.Dir = root
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out.String(), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		// Untracked files ("?? path") aren't touched by the pipeline and
		// don't block it; everything else (staged/modified/deleted) does.
		if strings.HasPrefix(line, "??") {
			continue
		}
		files = append(files, strings.TrimSpace(line[3:]))
	}
	return files, nil
}

func runGit(ctx context.Context, root string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, stderr.String())
	}
	return nil
}
