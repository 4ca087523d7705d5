// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// typeScriptDriver covers both .ts and .tsx; the grammar differs only in
// whether JSX syntax is permitted, so both share extractJSLikeEntities.
type typeScriptDriver struct {
	ts  *sitter.Language
	tsx *sitter.Language
}

func newTypeScriptDriver() *typeScriptDriver {
	return &typeScriptDriver{ts: typescript.GetLanguage(), tsx: tsx.GetLanguage()}
}

func (t *typeScriptDriver) Language() string     { return "typescript" }
func (t *typeScriptDriver) Extensions() []string { return []string{".ts", ".tsx", ".mts", ".cts"} }

func (t *typeScriptDriver) Extract(ctx context.Context, content []byte, filePath string) ([]*Entity, bool) {
	lang := t.ts
	if hasTSXExtension(filePath) {
		lang = t.tsx
	}
	return extractJSLikeEntities(ctx, lang, content, filePath)
}

func hasTSXExtension(filePath string) bool {
	n := len(filePath)
	return n >= 4 && filePath[n-4:] == ".tsx"
}
