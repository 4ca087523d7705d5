// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graph builds the cross-file reference graph: a two-pass
// (index, then link) construction that turns extracted Entities into a
// directed multigraph over symbol ids, plus a synthetic __MODULE__ node per
// file for file-level and module-level call attribution.
package graph

import "github.com/codejanitor/janitor/services/janitor/ast"

// Edge is a directed caller->callee edge. Edges carry no payload; duplicates
// are legal and intentional (spec §5: "this is intentional multi-edge
// behavior").
type Edge struct {
	From int // node index
	To   int // node index
}

// Graph is a directed multigraph over symbol ids. Every node's weight is a
// 64-bit symbol id; every edge references valid node indices.
type Graph struct {
	ids     []uint64
	index   map[uint64]int
	edges   []Edge
	incoming map[int][]int // target node index -> source node indices
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[uint64]int), incoming: make(map[int][]int)}
}

// AddNode inserts id if not already present and returns its node index.
func (g *Graph) AddNode(id uint64) int {
	if idx, ok := g.index[id]; ok {
		return idx
	}
	idx := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = idx
	return idx
}

// NodeIndex returns the node index for id, or -1 if absent.
func (g *Graph) NodeIndex(id uint64) int {
	if idx, ok := g.index[id]; ok {
		return idx
	}
	return -1
}

// NodeID returns the symbol id stored at node index idx.
func (g *Graph) NodeID(idx int) uint64 { return g.ids[idx] }

// NumNodes reports the node count.
func (g *Graph) NumNodes() int { return len(g.ids) }

// AddEdge emits one caller->callee edge. Endpoints need not already be
// nodes; AddEdge inserts them if missing so builders never need to
// pre-declare nodes in a particular order.
func (g *Graph) AddEdge(fromID, toID uint64) {
	from := g.AddNode(fromID)
	to := g.AddNode(toID)
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.incoming[to] = append(g.incoming[to], from)
}

// Edges returns all edges.
func (g *Graph) Edges() []Edge { return g.edges }

// EdgeCount reports the total number of edges, including duplicates.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasIncomingEdge reports whether id has at least one incoming edge.
func (g *Graph) HasIncomingEdge(id uint64) bool {
	idx := g.NodeIndex(id)
	if idx < 0 {
		return false
	}
	return len(g.incoming[idx]) > 0
}

// IncomingSourceIDs returns the symbol ids of every node with an edge into id.
func (g *Graph) IncomingSourceIDs(id uint64) []uint64 {
	idx := g.NodeIndex(id)
	if idx < 0 {
		return nil
	}
	srcIdx := g.incoming[idx]
	out := make([]uint64, len(srcIdx))
	for i, s := range srcIdx {
		out[i] = g.ids[s]
	}
	return out
}

// Stats summarizes one graph-build run.
type Stats struct {
	SymbolCount int
	EdgeCount   int
	FileCount   int
	ParseErrors int
}

// BuildResult is everything the Reference Graph Builder produces.
type BuildResult struct {
	Graph       *Graph
	Entities    map[uint64]*ast.Entity // by symbol id, includes __MODULE__ sentinels
	FileSymbols map[string][]uint64    // file path -> symbol ids declared in that file
	Stats       Stats
}

// ModuleSentinelID computes the id of a file's synthetic __MODULE__ node.
func ModuleSentinelID(filePath string, idFunc func(filePath, qualifiedName string) uint64) uint64 {
	return idFunc(filePath, ast.ModuleSentinelName)
}
