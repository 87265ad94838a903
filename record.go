// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import "sync"

// FileRecord describes one stored file inside an opened package: its
// canonical name and physical layout in the backing stream.
type FileRecord struct {
	// pkg is a non-owning back-reference to the package holding the stream.
	pkg *Package
	// mu is the record's own lock for direct reads; it is independent of the
	// package stream lock and always taken first, never the other way around.
	mu sync.Mutex

	fullName   string
	simpleName string

	start       uint64
	storedSize  uint64
	logicalSize uint64
	encoding    Encoding
}

// FullName returns the record's canonical slash-separated name.
func (r *FileRecord) FullName() string {
	return r.fullName
}

// Name returns the last segment of the record's canonical name.
func (r *FileRecord) Name() string {
	return r.simpleName
}

// Start returns the payload byte offset in the backing stream.
func (r *FileRecord) Start() uint64 {
	return r.start
}

// StoredSize returns the on-disk payload size in bytes.
func (r *FileRecord) StoredSize() uint64 {
	return r.storedSize
}

// LogicalSize returns the original decoded payload size in bytes.
func (r *FileRecord) LogicalSize() uint64 {
	return r.logicalSize
}

// Encoding returns the stored payload encoding.
func (r *FileRecord) Encoding() Encoding {
	return r.encoding
}

func (*FileRecord) node() {}

// Data reads and decodes this record's payload. It holds the record's own
// lock around the read so the guarantee also holds for callers that bypass
// the package-level lookup; the shared stream cursor is still serialized by
// the package stream lock underneath. Decoding runs outside both locks on an
// already-copied buffer.
func (r *FileRecord) Data() ([]byte, error) {
	if r == nil || r.pkg == nil {
		return nil, ErrNilReader
	}

	r.mu.Lock()
	stored, err := r.pkg.readStored(r)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return decodePayload(stored, r.encoding, r.logicalSize)
}
