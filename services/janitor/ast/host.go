// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

// MaxFileSize is the largest file the Host will accept; it matches the
// 32-bit byte-offset ceiling that Entity.StartByte/EndByte can express.
const MaxFileSize = 1<<32 - 1

var ErrInvalidContent = errors.New("ast: content is not valid utf-8")

// ParseResult is everything the Host extracted from one file.
type ParseResult struct {
	FilePath   string
	Language   string
	Entities   []*Entity
	ParseError bool
}

// languageDriver is the closed set of per-language extractors. Each driver
// recognizes its own extensions and knows how to turn a byte slice into
// Entities; only the Python driver populates decorators, base classes, and
// structural hashes, per the reduced query used for the other languages.
type languageDriver interface {
	Language() string
	Extensions() []string
	Extract(ctx context.Context, content []byte, filePath string) ([]*Entity, bool)
}

// Host dispatches files to the right language driver and builds ParseResults.
type Host struct {
	drivers    []languageDriver
	byExt      map[string]languageDriver
	tracer     parseTracer
	heuristics []Heuristic
}

// NewHost constructs a Host with the full closed set of language drivers:
// Python (default for unrecognized extensions), Rust, JavaScript, TypeScript,
// TSX, and C++. It registers PytestFixtureHeuristic by default — every
// entry point in the original implementation registers it the same way
// immediately after constructing its parser host, so baking it into the
// constructor here avoids a footgun where a caller forgets to opt in.
func NewHost() *Host {
	return NewHostForLanguages(nil)
}

// NewHostForLanguages constructs a Host with only the named drivers (keyed
// by their Language() name: "python", "javascript", "typescript", "cpp",
// "rust"). A nil map enables everything. A project that is pure Python can
// skip the grammars it never hits this way.
func NewHostForLanguages(enabled map[string]bool) *Host {
	h := &Host{
		byExt:  make(map[string]languageDriver),
		tracer: newParseTracer(),
	}
	for _, d := range []languageDriver{
		newPythonDriver(),
		newJavaScriptDriver(),
		newTypeScriptDriver(),
		newCppDriver(),
		newRustDriver(),
	} {
		if enabled != nil && !enabled[d.Language()] {
			continue
		}
		h.drivers = append(h.drivers, d)
		for _, ext := range d.Extensions() {
			h.byExt[ext] = d
		}
	}
	h.RegisterHeuristic(PytestFixtureHeuristic{})
	return h
}

// RegisterHeuristic adds a heuristic to the end of the Host's registration
// order. Heuristics run once per file, immediately after the language
// driver extracts its Entities and before the file's ParseResult is
// returned — this is the "registered heuristics" step of spec §4.1.7,
// distinct from and prior to the Wisdom Classifier's later pipeline stage.
func (h *Host) RegisterHeuristic(heuristic Heuristic) {
	h.heuristics = append(h.heuristics, heuristic)
}

// Extensions returns every file extension (lowercase, with leading dot)
// recognized by any registered language driver. Callers that walk a
// directory tree (the graph builder, the CLI) use this to decide which
// files are source files at all.
func (h *Host) Extensions() []string {
	out := make([]string, 0, len(h.byExt))
	for ext := range h.byExt {
		out = append(out, ext)
	}
	return out
}

func (h *Host) driverFor(filePath string) languageDriver {
	ext := strings.ToLower(filepath.Ext(filePath))
	if d, ok := h.byExt[ext]; ok {
		return d
	}
	return h.byExt[".py"]
}

// Parse memory-maps filePath read-only, dispatches to the right driver, and
// returns the Entities it finds. The mapping is released before Parse
// returns; every string an Entity carries is copied out of it. A parse
// failure on an individual file yields zero entities and ParseError=true;
// it never returns a non-nil error for that reason, matching the pipeline's
// "tolerate per-file errors" policy.
func (h *Host) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("ast: stat %s: %w", filePath, err)
	}
	if info.Size() > MaxFileSize {
		return nil, &ByteRangeOverflowError{FilePath: filePath, Size: info.Size()}
	}

	content, unmap, err := mmapfile.Map(filePath)
	if err != nil {
		return nil, fmt.Errorf("ast: map %s: %w", filePath, err)
	}
	defer unmap()

	ctx, end := h.tracer.startParse(ctx, filePath, len(content))
	defer end()

	driver := h.driverFor(filePath)
	if driver == nil {
		return &ParseResult{FilePath: filePath, ParseError: true}, nil
	}
	entities, ok := driver.Extract(ctx, content, filePath)
	if !ok {
		slog.Warn("parse failed", slog.String("file", filePath), slog.String("language", driver.Language()))
		return &ParseResult{FilePath: filePath, Language: driver.Language(), ParseError: true}, nil
	}

	applyHeuristics(entities, content, h.heuristics)

	return &ParseResult{
		FilePath: filePath,
		Language: driver.Language(),
		Entities: entities,
	}, nil
}

// NormalizePath canonicalizes a path the way every externally observable
// path in the system is rendered: forward slashes, UNC prefix stripped.
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "//?/")
	p = strings.TrimPrefix(p, "//./")
	return p
}
