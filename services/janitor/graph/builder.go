// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/ast"
)

// DefaultExcludeDirs is the directory-name set every walker in the system
// skips (spec §4.4, restated in §6): the graph builder, the grep shield, the
// shadow tree, and the bridge extractor.
var DefaultExcludeDirs = map[string]bool{
	"__pycache__":    true,
	".git":           true,
	".janitor":       true,
	"venv":           true,
	".venv":          true,
	"target":         true,
	"node_modules":   true,
	".pytest_cache":  true,
}

// IDFunc computes the stable symbol id for a (file path, qualified name)
// pair. The graph package never hardcodes the hash algorithm itself — the
// caller supplies it (normally registry.ID) so the graph and the registry
// agree on ids without graph importing registry.
type IDFunc func(filePath, qualifiedName string) uint64

// BuildOptions configures a Builder's directory walk.
type BuildOptions struct {
	ExcludeDirs map[string]bool
}

// DefaultBuildOptions returns the spec-mandated exclude set.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{ExcludeDirs: DefaultExcludeDirs}
}

// Builder runs the two-pass construction described in spec §4.4: index every
// file's entities (pass 1), then re-parse Python and C++ files to resolve
// imports/includes and wire caller->callee edges (pass 2).
type Builder struct {
	host   *ast.Host
	idFunc IDFunc
	opts   BuildOptions
}

// NewBuilder constructs a Builder. idFunc is normally registry.ID.
func NewBuilder(host *ast.Host, idFunc IDFunc, opts BuildOptions) *Builder {
	if opts.ExcludeDirs == nil {
		opts.ExcludeDirs = DefaultExcludeDirs
	}
	return &Builder{host: host, idFunc: idFunc, opts: opts}
}

type parsedFile struct {
	path     string
	language string
	entities []*ast.Entity
}

// Build walks root, extracts every entity, and links the Python and C++
// cross-file edges. It never fails because of a single file's parse error;
// those only increment Stats.ParseErrors.
func (b *Builder) Build(ctx context.Context, root string) (*BuildResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("graph: resolve root %s: %w", root, err)
	}

	files, err := b.walk(absRoot)
	if err != nil {
		return nil, fmt.Errorf("graph: walk %s: %w", absRoot, err)
	}

	res := &BuildResult{
		Graph:       NewGraph(),
		Entities:    make(map[uint64]*ast.Entity),
		FileSymbols: make(map[string][]uint64),
	}

	parsed := make([]parsedFile, 0, len(files))
	for _, f := range files {
		pr, err := b.host.Parse(ctx, f)
		if err != nil {
			slog.Warn("graph: skipping file", slog.String("file", f), slog.Any("error", err))
			res.Stats.ParseErrors++
			continue
		}
		if pr.ParseError {
			res.Stats.ParseErrors++
		}

		entities := append([]*ast.Entity{}, pr.Entities...)
		entities = append(entities, moduleSentinel(f, fileSize(f)))

		for _, e := range entities {
			id := b.idFunc(e.FilePath, e.QualifiedName)
			res.Graph.AddNode(id)
			res.Entities[id] = e
			res.FileSymbols[e.FilePath] = append(res.FileSymbols[e.FilePath], id)
		}
		parsed = append(parsed, parsedFile{path: f, language: pr.Language, entities: entities})
		res.Stats.FileCount++
	}
	res.Stats.SymbolCount = len(res.Entities)

	for _, pf := range parsed {
		switch pf.language {
		case "python":
			b.linkPythonFile(absRoot, pf, res)
		case "cpp":
			b.linkCppFile(absRoot, pf, res)
		}
	}
	res.Stats.EdgeCount = res.Graph.EdgeCount()

	return res, nil
}

func (b *Builder) walk(absRoot string) ([]string, error) {
	exts := make(map[string]bool)
	for _, e := range b.host.Extensions() {
		exts[e] = true
	}

	var files []string
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && b.opts.ExcludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, ast.NormalizePath(path))
		}
		return nil
	})
	return files, err
}

func moduleSentinel(filePath string, size int64) *ast.Entity {
	end := uint32(0)
	if size > 0 {
		end = uint32(size)
	}
	return &ast.Entity{
		Name:          ast.ModuleSentinelName,
		QualifiedName: ast.ModuleSentinelName,
		Kind:          ast.KindAssignment,
		FilePath:      filePath,
		StartByte:     0,
		EndByte:       end,
		StartLine:     1,
		EndLine:       1,
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
