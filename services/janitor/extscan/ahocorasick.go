// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extscan implements the External-File Scanner (spec §4.7): a
// multi-pattern grep shield over non-source assets, and a bridge extractor
// that pulls quoted URL-path literals out of JS/TS source for the bridge
// shield.
package extscan

// automaton is a byte-oriented Aho-Corasick matcher. No third-party
// multi-pattern search library exists anywhere in the retrieved dependency
// pack (see DESIGN.md); this is a from-scratch construction of the standard
// trie + failure-link algorithm, built once per grep-shield invocation from
// the still-dead symbol names.
type automaton struct {
	goTo   []map[byte]int
	fail   []int
	output []map[int]bool // state -> set of pattern indices ending there
}

func newAutomaton(patterns []string) *automaton {
	a := &automaton{
		goTo:   []map[byte]int{make(map[byte]int)},
		fail:   []int{0},
		output: []map[int]bool{nil},
	}
	for i, p := range patterns {
		a.insert(p, i)
	}
	a.buildFailureLinks()
	return a
}

func (a *automaton) insert(pattern string, idx int) {
	state := 0
	for i := 0; i < len(pattern); i++ {
		b := pattern[i]
		next, ok := a.goTo[state][b]
		if !ok {
			a.goTo = append(a.goTo, make(map[byte]int))
			a.fail = append(a.fail, 0)
			a.output = append(a.output, nil)
			next = len(a.goTo) - 1
			a.goTo[state][b] = next
		}
		state = next
	}
	if a.output[state] == nil {
		a.output[state] = make(map[int]bool)
	}
	a.output[state][idx] = true
}

func (a *automaton) buildFailureLinks() {
	var queue []int
	for b, next := range a.goTo[0] {
		a.fail[next] = 0
		queue = append(queue, next)
		_ = b
	}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for b, next := range a.goTo[state] {
			queue = append(queue, next)
			f := a.fail[state]
			for {
				if n, ok := a.goTo[f][b]; ok {
					a.fail[next] = n
					break
				}
				if f == 0 {
					a.fail[next] = 0
					break
				}
				f = a.fail[f]
			}
			for idx := range a.output[a.fail[next]] {
				if a.output[next] == nil {
					a.output[next] = make(map[int]bool)
				}
				a.output[next][idx] = true
			}
		}
	}
}

// search streams content through the automaton, calling hit(idx) the first
// time each pattern index is found. search stops early once every pattern
// listed in remaining has been found (leftmost-first, matching spec §4.7).
func (a *automaton) search(content []byte, remaining map[int]bool, hit func(idx int)) {
	state := 0
	for _, b := range content {
		for {
			if next, ok := a.goTo[state][b]; ok {
				state = next
				break
			}
			if state == 0 {
				break
			}
			state = a.fail[state]
		}
		for idx := range a.output[state] {
			if remaining[idx] {
				delete(remaining, idx)
				hit(idx)
			}
		}
		if len(remaining) == 0 {
			return
		}
	}
}
