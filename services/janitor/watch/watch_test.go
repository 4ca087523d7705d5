// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codejanitor/janitor/services/janitor/watch"
)

func TestWatcher_BurstOfWritesTriggersHandler(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var calls int
	done := make(chan struct{}, 1)

	w, err := watch.New(root, func(paths []string) {
		mu.Lock()
		calls++
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}, watch.Options{DebounceWindow: 50 * time.Millisecond, IgnoreDirs: watch.DefaultOptions().IgnoreDirs})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never called")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, calls, 1)
}

func TestWatcher_StartsWithJanitorDirPresent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".janitor", "ghost"), 0o755))

	w, err := watch.New(root, func(paths []string) {}, watch.DefaultOptions())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
}
