// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package editor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Editor performs transactional byte-splice file mutation (spec §4.9). A
// single Editor instance is one transaction: every touched file is backed
// up to the ghost directory on first touch, and either commit (discard the
// backups) or restore_all (copy every backup back over its original) ends
// it. Its methods serialize on an internal mutex; the callers in this tree
// drive each Editor from a single goroutine.
type Editor struct {
	projectRoot string
	ghostDir    string

	mu      sync.Mutex
	backups map[string]string // original path -> backup path

	// transactionID is a uuid stamped into log lines so multi-file
	// transactions can be correlated in output.
	transactionID string
}

// New creates an Editor rooted at projectRoot. The ghost directory is
// created lazily on first backup, not here.
func New(projectRoot string) *Editor {
	return &Editor{
		projectRoot:   projectRoot,
		ghostDir:      filepath.Join(projectRoot, GhostDirName),
		backups:       make(map[string]string),
		transactionID: uuid.NewString(),
	}
}

// DeleteSymbols deletes every target range from file, processed descending
// by start byte so earlier splices remain valid for ranges not yet touched.
func (e *Editor) DeleteSymbols(file string, targets []Target) error {
	for i := range targets {
		targets[i].Replacement = nil
	}
	return e.apply(file, targets, true)
}

// ReplaceSymbols replaces each target's range with its Replacement bytes,
// processed descending by start byte.
func (e *Editor) ReplaceSymbols(file string, targets []Target) error {
	return e.apply(file, targets, false)
}

func (e *Editor) apply(file string, targets []Target, deletion bool) error {
	if len(targets) == 0 {
		return ErrEmptyTargets
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.backupLocked(file); err != nil {
		return fmt.Errorf("editor: backing up %s: %w", file, err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("editor: reading %s: %w", file, err)
	}

	ordered := make([]Target, len(targets))
	copy(ordered, targets)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StartByte > ordered[j].StartByte })

	for _, t := range ordered {
		content, err = spliceOne(content, t, deletion)
		if err != nil {
			slog.Warn("editor: skipped target", slog.String("file", file), slog.Any("error", err))
			continue
		}
	}

	if err := writeAtomic(file, content); err != nil {
		return fmt.Errorf("editor: writing %s: %w", file, err)
	}
	return nil
}

// spliceOne applies one snapped splice to content and returns the result.
// An empty or out-of-bounds snapped range is a no-op error, not a fatal
// one — the caller logs and continues with the remaining targets.
func spliceOne(content []byte, t Target, deletion bool) ([]byte, error) {
	if t.EndByte > uint32(len(content)) || t.StartByte >= t.EndByte {
		return content, ErrOutOfBounds
	}

	start, end := snapBoundaries(content, t.StartByte, t.EndByte)
	if start >= end {
		return content, ErrOutOfBounds
	}

	if deletion && end < uint32(len(content)) && content[end] == '\n' {
		end++
	}

	out := make([]byte, 0, len(content)-int(end-start)+len(t.Replacement))
	out = append(out, content[:start]...)
	out = append(out, t.Replacement...)
	out = append(out, content[end:]...)
	return out, nil
}

// backupLocked copies file into the ghost directory if this is the first
// touch this transaction has made to it. Caller must hold e.mu.
func (e *Editor) backupLocked(file string) error {
	if _, ok := e.backups[file]; ok {
		return nil
	}
	if err := os.MkdirAll(e.ghostDir, 0o755); err != nil {
		return err
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	backupPath := filepath.Join(e.ghostDir, fmt.Sprintf("%d_%s.bak", time.Now().Unix(), filepath.Base(file)))
	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		return err
	}
	e.backups[file] = backupPath
	slog.Debug("editor: backed up file", slog.String("file", file), slog.String("backup", backupPath), slog.String("transaction", e.transactionID))
	return nil
}

// Commit deletes every backup made this transaction and clears the
// backup map, ending the transaction successfully.
func (e *Editor) Commit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for original, backup := range e.backups {
		if err := os.Remove(backup); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("editor: removing backup for %s: %w", original, err)
		}
	}
	e.backups = make(map[string]string)
	return firstErr
}

// RestoreAll copies every backup made this transaction back over its
// original path, reverting every touched file to its pre-transaction
// bytes, then clears the backup map.
func (e *Editor) RestoreAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var firstErr error
	for original, backup := range e.backups {
		content, err := os.ReadFile(backup)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("editor: reading backup for %s: %w", original, err)
			}
			continue
		}
		if err := writeAtomic(original, content); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("editor: restoring %s: %w", original, err)
		}
	}
	e.backups = make(map[string]string)
	return firstErr
}

// TransactionID returns the uuid identifying this editor's transaction,
// for correlating log lines and dry-run previews.
func (e *Editor) TransactionID() string {
	return e.transactionID
}

// writeAtomic writes content to a temp file beside path, then renames it
// over path, so a crash mid-write cannot leave a half-written file.
func writeAtomic(path string, content []byte) error {
	tmp := path + ".janitor-tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
