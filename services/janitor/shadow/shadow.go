// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package shadow implements the Shadow Tree (spec §4.10): a symlink mirror
// of the project that lets a caller simulate deletion by unmapping a
// symlink, and roll back by remapping it, without ever touching the real
// source tree except through move_to_ghost.
package shadow

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codejanitor/janitor/services/janitor/editor"
)

// ShadowDirName is the symlink mirror directory under the project root.
const ShadowDirName = ".janitor/shadow_src"

// ErrPrivilegedSymlink is returned when the platform refuses unprivileged
// symlink creation (spec §4.10/§7), so the caller can surface an
// actionable "enable privileged mode" message instead of a raw I/O error.
var ErrPrivilegedSymlink = errors.New("shadow: symlink creation denied — enable privileged mode (run elevated, or enable Developer Mode on Windows) and retry")

// ErrNotInitialized is returned by Open when no shadow tree exists yet.
var ErrNotInitialized = errors.New("shadow: no shadow tree at this project root — call Initialize first")

// DefaultExcludeDirs mirrors the graph walker's directory exclusion set.
var DefaultExcludeDirs = map[string]bool{
	"__pycache__": true, ".git": true, ".janitor": true, "venv": true,
	".venv": true, "target": true, "node_modules": true, ".pytest_cache": true,
}

// Tree is a handle onto one project's shadow mirror.
type Tree struct {
	projectRoot string
	shadowRoot  string
	excludeDirs map[string]bool
}

// Initialize builds a fresh symlink mirror of projectRoot at
// <projectRoot>/.janitor/shadow_src/: real directories, symlinked files.
func Initialize(projectRoot string, excludeDirs map[string]bool) (*Tree, error) {
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}
	t := &Tree{
		projectRoot: projectRoot,
		shadowRoot:  filepath.Join(projectRoot, ShadowDirName),
		excludeDirs: excludeDirs,
	}

	if err := os.RemoveAll(t.shadowRoot); err != nil {
		return nil, fmt.Errorf("shadow: clearing existing mirror: %w", err)
	}
	if err := os.MkdirAll(t.shadowRoot, 0o755); err != nil {
		return nil, fmt.Errorf("shadow: creating mirror root: %w", err)
	}

	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == projectRoot {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(t.shadowRoot, rel), 0o755)
		}
		return t.linkLocked(rel, path)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Open reattaches to an existing shadow mirror without rescanning the
// project (spec §4.10's open operation).
func Open(projectRoot string, excludeDirs map[string]bool) (*Tree, error) {
	if excludeDirs == nil {
		excludeDirs = DefaultExcludeDirs
	}
	shadowRoot := filepath.Join(projectRoot, ShadowDirName)
	if _, err := os.Stat(shadowRoot); err != nil {
		return nil, ErrNotInitialized
	}
	return &Tree{projectRoot: projectRoot, shadowRoot: shadowRoot, excludeDirs: excludeDirs}, nil
}

// VerifyIntegrity walks the mirror and returns the relative paths of every
// symlink that fails to resolve to an existing file.
func (t *Tree) VerifyIntegrity() ([]string, error) {
	var broken []string
	err := filepath.WalkDir(t.shadowRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, statErr := os.Stat(path); statErr != nil {
			rel, relErr := filepath.Rel(t.shadowRoot, path)
			if relErr != nil {
				rel = path
			}
			broken = append(broken, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("shadow: verifying integrity: %w", err)
	}
	return broken, nil
}

// Unmap removes the symlink for relPath, simulating deletion of that file
// without touching the real source tree.
func (t *Tree) Unmap(relPath string) error {
	link := filepath.Join(t.shadowRoot, relPath)
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shadow: unmapping %s: %w", relPath, err)
	}
	return nil
}

// Remap recreates the symlink for relPath, pointing back at the real file
// under projectRoot. This is the rollback counterpart to Unmap.
func (t *Tree) Remap(relPath string) error {
	return t.linkLocked(relPath, filepath.Join(t.projectRoot, relPath))
}

// MoveToGhost resolves relPath's symlink target, moves the real file into
// editor.GhostDirName/<relPath>, and removes the symlink. The file
// survives on disk but disappears from the shadow view.
func (t *Tree) MoveToGhost(relPath string) error {
	link := filepath.Join(t.shadowRoot, relPath)
	target, err := os.Readlink(link)
	if err != nil {
		return fmt.Errorf("shadow: reading symlink for %s: %w", relPath, err)
	}

	ghostPath := filepath.Join(t.projectRoot, editor.GhostDirName, relPath)
	if err := os.MkdirAll(filepath.Dir(ghostPath), 0o755); err != nil {
		return fmt.Errorf("shadow: preparing ghost directory: %w", err)
	}
	if err := os.Rename(target, ghostPath); err != nil {
		return fmt.Errorf("shadow: moving %s to ghost: %w", relPath, err)
	}
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shadow: removing symlink for %s: %w", relPath, err)
	}
	return nil
}

// linkLocked creates (or recreates) the symlink at shadowRoot/rel pointing
// at realPath, creating parent directories as needed.
func (t *Tree) linkLocked(rel, realPath string) error {
	link := filepath.Join(t.shadowRoot, rel)
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("shadow: preparing mirror directory for %s: %w", rel, err)
	}
	_ = os.Remove(link)
	if err := os.Symlink(realPath, link); err != nil {
		if os.IsPermission(err) {
			slog.Warn("shadow: symlink denied", slog.String("path", rel))
			return ErrPrivilegedSymlink
		}
		return fmt.Errorf("shadow: linking %s: %w", rel, err)
	}
	return nil
}
