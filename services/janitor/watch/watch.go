// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package watch re-triggers a scan whenever source files change, debouncing
// bursts of edits into a single rescan.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called once per debounce window with the set of changed files.
type Handler func(paths []string)

// Options configures debounce timing and what gets ignored.
type Options struct {
	// DebounceWindow is how long to wait after the last event before
	// calling Handler. Default: 250ms.
	DebounceWindow time.Duration

	// IgnoreDirs are directory basenames skipped entirely (not watched,
	// never reported). Default mirrors the pipeline's own exclude set.
	IgnoreDirs map[string]bool
}

// DefaultOptions matches the graph walker's exclude set plus the janitor's
// own ghost/shadow directories, so a purge doesn't trigger a rescan of its
// own backups.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 250 * time.Millisecond,
		IgnoreDirs: map[string]bool{
			".git": true, ".janitor": true, "node_modules": true,
			"__pycache__": true, ".venv": true, "venv": true,
			"target": true, ".pytest_cache": true,
		},
	}
}

// Watcher watches a project root and calls Handler after each debounced
// burst of changes.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	handler Handler
	opts    Options

	changes chan string
	done    chan struct{}
	once    sync.Once
}

// New creates a Watcher rooted at root. Call Start to begin watching.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.IgnoreDirs == nil {
		opts = DefaultOptions()
	}
	return &Watcher{
		root:    root,
		fsw:     fsw,
		handler: handler,
		opts:    opts,
		changes: make(chan string, 1000),
		done:    make(chan struct{}),
	}, nil
}

// Start recursively watches root and begins debouncing changes. It returns
// once the initial directory walk completes; event processing continues in
// background goroutines until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop releases the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.opts.IgnoreDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			select {
			case w.changes <- event.Name:
			default:
			}
			if event.Has(fsnotify.Create) {
				w.fsw.Add(event.Name) // harmless if it's a file; fsnotify ignores non-dirs
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	for dir := range w.opts.IgnoreDirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	seen := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(seen) == 0 {
			return
		}
		paths := make([]string, 0, len(seen))
		for p := range seen {
			paths = append(paths, p)
		}
		if w.handler != nil {
			w.handler(paths)
		}
		seen = make(map[string]bool)
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case path := <-w.changes:
			seen[path] = true
			if timer == nil {
				timer = time.NewTimer(w.opts.DebounceWindow)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.DebounceWindow)
			}
		case <-timerC:
			flush()
		}
	}
}
