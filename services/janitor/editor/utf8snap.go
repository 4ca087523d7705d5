// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package editor

import "unicode/utf8"

// snapBoundaries widens [start, end) outward to the nearest UTF-8 character
// boundaries against content (spec §4.9). When content is valid UTF-8 as a
// whole, utf8.RuneStart gives an exact boundary test; otherwise it falls
// back to walking past continuation bytes (the 0b10xxxxxx mask), which is
// idempotent and always lands on a boundary even over malformed input.
func snapBoundaries(content []byte, start, end uint32) (uint32, uint32) {
	valid := utf8.Valid(content)
	return snapStart(content, start, valid), snapEnd(content, end, valid)
}

func snapStart(content []byte, pos uint32, validUTF8 bool) uint32 {
	if n := uint32(len(content)); pos > n {
		pos = n
	}
	if pos == 0 {
		return 0
	}
	if validUTF8 {
		for pos > 0 && !utf8.RuneStart(content[pos]) {
			pos--
		}
		return pos
	}
	for pos > 0 && isContinuationByte(content[pos]) {
		pos--
	}
	return pos
}

func snapEnd(content []byte, pos uint32, validUTF8 bool) uint32 {
	n := uint32(len(content))
	if pos >= n {
		return n
	}
	if validUTF8 {
		for pos < n && !utf8.RuneStart(content[pos]) {
			pos++
		}
		return pos
	}
	for pos < n && isContinuationByte(content[pos]) {
		pos++
	}
	return pos
}

func isContinuationByte(b byte) bool {
	return b&0b11000000 == 0b10000000
}
