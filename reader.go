// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
)

// Package provides read-only access to one opened FFP container. It is the
// sole structured consumer of the backing stream's read/seek position; all
// payload reads serialize on the package stream lock, so one open Package
// supports concurrent callers.
type Package struct {
	// rs is the backing stream used for table parse and payload reads.
	rs io.ReadSeeker
	// file is set when the package owns an *os.File opened via Open.
	file *os.File
	// records maps canonical full name to immutable file metadata.
	records map[string]*FileRecord
	// root is the folder hierarchy synthesized from the flat names.
	root *Folder
	// dataStart is the absolute offset of the first payload byte.
	dataStart int64
	// size is the total stream size in bytes.
	size int64
	// version is the numeric format version from the marker.
	version int
	// mu guards the shared stream cursor and closed state.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// Open opens a package file by path and parses its header and entry table.
// warn may be nil; it receives non-fatal diagnostics, currently only the
// newer-than-supported format version notice.
func Open(path string, warn func(string)) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	p, err := NewPackage(f, warn)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	p.file = f

	return p, nil
}

// NewPackage parses a package from rs. Opening is all-or-nothing: any parse
// failure leaves no usable Package. The package does not close streams it
// did not open.
//
// A version newer than this reader understands is reported through warn and
// then read best-effort. That tolerance assumes unknown versions keep the
// known field layout; it is a known limitation, not a guarantee.
func NewPackage(rs io.ReadSeeker, warn func(string)) (*Package, error) {
	if rs == nil {
		return nil, ErrNilReader
	}

	p := &Package{
		rs:      rs,
		records: make(map[string]*FileRecord),
		root:    newFolder(""),
	}
	if err := p.parse(warn); err != nil {
		return nil, err
	}

	return p, nil
}

// FileCount returns the number of stored files.
func (p *Package) FileCount() int {
	return len(p.records)
}

// Version returns the numeric format version from the marker.
func (p *Package) Version() int {
	return p.version
}

// Root returns the root folder of the synthesized hierarchy.
func (p *Package) Root() *Folder {
	return p.root
}

// Names returns the sorted canonical names of all stored files.
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.records))
	for name := range p.records {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Record resolves a file record by name, normalizing the lookup path.
func (p *Package) Record(name string) (*FileRecord, bool) {
	rec, ok := p.records[NormalizeName(name)]
	return rec, ok
}

// GetFileData reads and decodes the named file's content. It fails with
// ErrNotFound when no record exists at the normalized path.
func (p *Package) GetFileData(name string) ([]byte, error) {
	rec, ok := p.Record(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, NormalizeName(name))
	}

	stored, err := p.readStored(rec)
	if err != nil {
		return nil, err
	}

	return decodePayload(stored, rec.encoding, rec.logicalSize)
}

// TryGetFileData is GetFileData with a found flag instead of an error.
func (p *Package) TryGetFileData(name string) ([]byte, bool) {
	data, err := p.GetFileData(name)
	if err != nil {
		return nil, false
	}

	return data, true
}

// Close closes the underlying file if the package owns one. No read may
// follow Close.
func (p *Package) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	if p.file != nil {
		return p.file.Close()
	}

	return nil
}

// readStored reads one record's stored payload bytes. The seek+read pair
// runs under the package stream lock and nothing else does.
func (p *Package) readStored(rec *FileRecord) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	if _, err := p.rs.Seek(int64(rec.start), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek payload %s: %w", rec.fullName, err)
	}

	return readExact(p.rs, rec.storedSize)
}

// parse reads and validates the whole package structure from the stream.
func (p *Package) parse(warn func(string)) error {
	marker, err := readExact(p.rs, markerSize)
	if err != nil {
		return err
	}

	version, err := parseMarker(marker)
	if err != nil {
		return err
	}
	if version > formatVersion && warn != nil {
		warn(fmt.Sprintf("package version %03d is newer than supported %03d, reading best-effort", version, formatVersion))
	}

	p.version = version

	countBuf, err := readExact(p.rs, 4)
	if err != nil {
		return err
	}

	count := binary.BigEndian.Uint32(countBuf)
	if count > math.MaxInt32 {
		return fmt.Errorf("%w: file count %d out of range", ErrBadFormat, count)
	}

	for i := uint32(0); i < count; i++ {
		if err := p.parseEntry(i); err != nil {
			return err
		}
	}

	pos, err := p.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek after table: %w", err)
	}

	size, err := p.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek end: %w", err)
	}

	p.dataStart = pos
	p.size = size

	return p.validateRecordBounds()
}

// parseEntry reads one fixed table block plus the length-prefixed name and
// inserts the record into the flat map and the folder tree.
func (p *Package) parseEntry(index uint32) error {
	block, err := readExact(p.rs, entryBlockSize)
	if err != nil {
		return err
	}

	rec := &FileRecord{
		pkg:         p,
		start:       binary.BigEndian.Uint64(block[0:8]),
		storedSize:  binary.BigEndian.Uint64(block[8:16]),
		encoding:    Encoding(block[16]),
		logicalSize: binary.BigEndian.Uint64(block[17:25]),
	}

	lenBuf, err := readExact(p.rs, 4)
	if err != nil {
		return err
	}

	nameLen := binary.BigEndian.Uint32(lenBuf)
	if nameLen > maxNameLen {
		return fmt.Errorf("%w: entry %d name length %d exceeds %d", ErrBadFormat, index, nameLen, maxNameLen)
	}

	nameBytes, err := readExact(p.rs, uint64(nameLen))
	if err != nil {
		return err
	}

	name := NormalizeName(string(nameBytes))
	if name == "" {
		return fmt.Errorf("%w: entry %d", ErrInvalidName, index)
	}
	if _, exists := p.records[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	rec.fullName = name
	rec.simpleName = simpleName(name)

	p.records[name] = rec

	return p.root.AddFile(name, rec, false)
}

// validateRecordBounds rejects records whose payload region leaves the stream.
func (p *Package) validateRecordBounds() error {
	for _, rec := range p.records {
		if rec.start < uint64(p.dataStart) {
			return fmt.Errorf("%w: entry %s payload before data region", ErrBadFormat, rec.fullName)
		}

		end := rec.start + rec.storedSize
		if end < rec.start || end > uint64(p.size) {
			return fmt.Errorf("%w: entry %s payload out of stream bounds", ErrBadFormat, rec.fullName)
		}
	}

	return nil
}

// parseMarker validates the 6-byte magic+version marker and returns the
// numeric version. Version zero and non-digit version bytes are rejected.
func parseMarker(marker []byte) (int, error) {
	if len(marker) != markerSize || string(marker[:3]) != magicTag {
		return 0, fmt.Errorf("%w: bad magic %q", ErrBadFormat, marker[:min(len(marker), 3)])
	}

	version := 0
	for _, c := range marker[3:] {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: version byte 0x%02x is not a digit", ErrBadFormat, c)
		}

		version = version*10 + int(c-'0')
	}

	if version == 0 {
		return 0, fmt.Errorf("%w: version 0", ErrBadFormat)
	}

	return version, nil
}
