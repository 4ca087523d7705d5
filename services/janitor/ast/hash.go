// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	sitter "github.com/smacker/go-tree-sitter"
)

// alphaNormalizedKinds are node kinds skipped by the structural hasher so
// that renaming identifiers, changing string/comment content, or adding a
// docstring never changes a function's fingerprint.
var alphaNormalizedKinds = map[string]bool{
	"identifier":      true,
	"string":          true,
	"string_content":  true,
	"string_start":    true,
	"string_end":      true,
	"escape_sequence": true,
	"comment":         true,
	"type_comment":    true,
}

// StructuralHash computes the alpha-normalized 64-bit fingerprint of a
// subtree, typically a function body block. src is the full file's bytes;
// node's byte range must fall within it.
//
// The traversal is depth-first pre-order. Nodes whose kind is in the
// alpha-normalization set are skipped entirely, as is any node whose whole
// subtree contains no non-skipped leaf — this suppresses docstring
// expression_statement wrappers without special-casing them. Every other
// node feeds its 2-byte little-endian kind id into the digest before
// recursing into its children.
func StructuralHash(node *sitter.Node, src []byte) uint64 {
	h := sha256.New()
	hashNode(node, h)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

func hashNode(node *sitter.Node, h hash.Hash) {
	if node == nil || !hasSignificantContent(node) {
		return
	}
	var kindBuf [2]byte
	binary.LittleEndian.PutUint16(kindBuf[:], uint16(node.Symbol()))
	h.Write(kindBuf[:])

	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		hashNode(node.Child(i), h)
	}
}

// hasSignificantContent reports whether node's subtree holds at least one
// leaf outside the alpha-normalization set. A pure-naming subtree (an
// identifier, a string, a comment, or a container built only from these)
// returns false.
func hasSignificantContent(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	if alphaNormalizedKinds[node.Type()] {
		return false
	}
	n := int(node.ChildCount())
	if n == 0 {
		return true
	}
	for i := 0; i < n; i++ {
		if hasSignificantContent(node.Child(i)) {
			return true
		}
	}
	return false
}
