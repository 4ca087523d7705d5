// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package registry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codejanitor/janitor/services/janitor/ast"
	"github.com/codejanitor/janitor/services/janitor/mmapfile"
)

// Archive format:
//
//	[8]byte  magic   = "JANITOR1"
//	uint32   version = archiveVersion
//	uint32   count   (row count)
//	uint64   stringPoolOffset (byte offset from start of file)
//	uint64   stringPoolLength
//	[count * rowSize]byte rows, sorted ascending by id
//	[stringPoolLength]byte stringPool
//
// Every variable-length field (name, qualified name, file path, parent
// class, and the '\x1f'-joined base-class/decorator lists) is stored once in
// the string pool and referenced from its row by (offset uint32, length
// uint32). Rows are otherwise entirely fixed-width integers, so FindByID can
// binary-search directly over the mapped bytes without decoding any row it
// doesn't match.
const (
	archiveMagic   = "JANITOR1"
	archiveVersion = uint32(1)
	headerSize     = 8 + 4 + 4 + 8 + 8
	rowSize        = 8 /*id*/ + 1 /*kind*/ + 1 /*protectedBy*/ + 1 /*hasHash*/ + 1 /*pad*/ +
		8 /*structuralHash*/ + 4 + 4 /*start/end byte*/ + 4 + 4 /*start/end line*/ +
		4 + 4 /*name*/ + 4 + 4 /*qualifiedName*/ + 4 + 4 /*filePath*/ + 4 + 4 /*parentClass*/ +
		4 + 4 /*baseClasses*/ + 4 + 4 /*decorators*/

	listSeparator = "\x1f"
)

// Table is an append-only, sort-at-save collection of SymbolEntry rows.
type Table struct {
	entries []SymbolEntry
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Insert appends entry to the table. Order is irrelevant; Save sorts.
func (t *Table) Insert(entry SymbolEntry) {
	t.entries = append(t.entries, entry)
}

// Len reports the number of inserted rows.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the rows currently held, unsorted.
func (t *Table) Entries() []SymbolEntry { return t.entries }

// Save sorts the table by id and writes a self-describing binary archive to
// path, creating the parent directory if needed, and writing via a
// temp-file-then-rename so a crash mid-write never corrupts an existing
// archive.
func (t *Table) Save(path string) error {
	sorted := make([]SymbolEntry, len(t.entries))
	copy(sorted, t.entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	pool := &stringPool{}
	rows := make([]byte, 0, len(sorted)*rowSize)
	for _, e := range sorted {
		rows = append(rows, encodeRow(e, pool)...)
	}

	var buf bytes.Buffer
	buf.WriteString(archiveMagic)
	writeUint32(&buf, archiveVersion)
	writeUint32(&buf, uint32(len(sorted)))
	writeUint64(&buf, uint64(headerSize+len(rows)))
	writeUint64(&buf, uint64(pool.buf.Len()))
	buf.Write(rows)
	buf.Write(pool.buf.Bytes())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("registry: mkdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("registry: write temp archive: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("registry: rename temp archive: %w", err)
	}
	return nil
}

// Handle is an open, validated archive. Reads go directly against the
// backing byte slice (memory-mapped via mmapfile; a one-shot read on
// windows); Handle never copies rows into Go structs until FindByID (or
// All) is asked for one.
type Handle struct {
	data  []byte
	count int
	rows  []byte
	pool  []byte
	close func() error
}

// Open validates the archive header at path and returns a Handle. Any
// mismatch in magic, version, or declared offsets/lengths is ErrArchiveInvalid.
func Open(path string) (*Handle, error) {
	data, closeFn, err := mmapfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	if len(data) == 0 {
		closeFn()
		return nil, fmt.Errorf("%w: empty file", ErrArchiveInvalid)
	}
	h, err := newHandle(data, closeFn)
	if err != nil {
		closeFn()
		return nil, err
	}
	return h, nil
}

func newHandle(data []byte, closeFn func() error) (*Handle, error) {
	if len(data) < headerSize || string(data[:8]) != archiveMagic {
		return nil, ErrArchiveInvalid
	}
	version := binary.LittleEndian.Uint32(data[8:12])
	if version != archiveVersion {
		return nil, ErrArchiveInvalid
	}
	count := binary.LittleEndian.Uint32(data[12:16])
	stringPoolOffset := binary.LittleEndian.Uint64(data[16:24])
	stringPoolLength := binary.LittleEndian.Uint64(data[24:32])

	rowsEnd := headerSize + int(count)*rowSize
	if rowsEnd != int(stringPoolOffset) || len(data) != int(stringPoolOffset)+int(stringPoolLength) {
		return nil, ErrArchiveInvalid
	}

	return &Handle{
		data:  data,
		count: int(count),
		rows:  data[headerSize:rowsEnd],
		pool:  data[stringPoolOffset:],
		close: closeFn,
	}, nil
}

// Close releases the mapping (or, on the fallback path, just drops the
// reference).
func (h *Handle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// Len reports the number of archived rows.
func (h *Handle) Len() int { return h.count }

// FindByID binary-searches the sorted archive for id.
func (h *Handle) FindByID(id uint64) (SymbolEntry, error) {
	lo, hi := 0, h.count-1
	for lo <= hi {
		mid := (lo + hi) / 2
		rowID := binary.LittleEndian.Uint64(h.rows[mid*rowSize : mid*rowSize+8])
		switch {
		case rowID == id:
			return h.decodeRow(mid), nil
		case rowID < id:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return SymbolEntry{}, ErrNotFound
}

// All decodes and returns every row. Callers that need the whole archive
// use this; lookups should prefer FindByID.
func (h *Handle) All() []SymbolEntry {
	out := make([]SymbolEntry, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.decodeRow(i)
	}
	return out
}

func (h *Handle) decodeRow(i int) SymbolEntry {
	row := h.rows[i*rowSize : (i+1)*rowSize]
	off := 0
	readU64 := func() uint64 { v := binary.LittleEndian.Uint64(row[off:]); off += 8; return v }
	readU32 := func() uint32 { v := binary.LittleEndian.Uint32(row[off:]); off += 4; return v }
	readU8 := func() uint8 { v := row[off]; off++; return v }

	id := readU64()
	kind := readU8()
	protectedBy := readU8()
	hasHash := readU8() != 0
	off++ // pad
	structuralHash := readU64()
	startByte := readU32()
	endByte := readU32()
	startLine := readU32()
	endLine := readU32()
	nameOff, nameLen := readU32(), readU32()
	qnOff, qnLen := readU32(), readU32()
	fpOff, fpLen := readU32(), readU32()
	pcOff, pcLen := readU32(), readU32()
	bcOff, bcLen := readU32(), readU32()
	decOff, decLen := readU32(), readU32()

	return SymbolEntry{
		ID:             id,
		Name:           h.str(nameOff, nameLen),
		QualifiedName:  h.str(qnOff, qnLen),
		Kind:           ast.Kind(kind),
		FilePath:       h.str(fpOff, fpLen),
		StartByte:      startByte,
		EndByte:        endByte,
		StartLine:      startLine,
		EndLine:        endLine,
		ParentClass:    h.str(pcOff, pcLen),
		BaseClasses:    splitList(h.str(bcOff, bcLen)),
		Decorators:     splitList(h.str(decOff, decLen)),
		ProtectedBy:    ast.Protection(protectedBy),
		StructuralHash: structuralHash,
		HasHash:        hasHash,
	}
}

func (h *Handle) str(off, length uint32) string {
	if length == 0 {
		return ""
	}
	return string(h.pool[off : off+length])
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, listSeparator)
}

type stringPool struct{ buf bytes.Buffer }

func (p *stringPool) put(s string) (uint32, uint32) {
	off := uint32(p.buf.Len())
	p.buf.WriteString(s)
	return off, uint32(len(s))
}

func encodeRow(e SymbolEntry, pool *stringPool) []byte {
	row := make([]byte, 0, rowSize)
	writeRowU64 := func(v uint64) { var b [8]byte; binary.LittleEndian.PutUint64(b[:], v); row = append(row, b[:]...) }
	writeRowU32 := func(v uint32) { var b [4]byte; binary.LittleEndian.PutUint32(b[:], v); row = append(row, b[:]...) }

	writeRowU64(e.ID)
	row = append(row, byte(e.Kind), byte(e.ProtectedBy), boolByte(e.HasHash), 0)
	writeRowU64(e.StructuralHash)
	writeRowU32(e.StartByte)
	writeRowU32(e.EndByte)
	writeRowU32(e.StartLine)
	writeRowU32(e.EndLine)

	putStr := func(s string) { o, l := pool.put(s); writeRowU32(o); writeRowU32(l) }
	putStr(e.Name)
	putStr(e.QualifiedName)
	putStr(e.FilePath)
	putStr(e.ParentClass)
	putStr(strings.Join(e.BaseClasses, listSeparator))
	putStr(strings.Join(e.Decorators, listSeparator))

	return row
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
