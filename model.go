// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	// magicTag is the 3-letter format marker at the start of every package.
	magicTag = "FFP"
	// formatVersion is the highest format version this code reads and writes.
	formatVersion = 1
	// markerSize is the magic+version marker size: 3 ASCII letters + 3 ASCII digits.
	markerSize = 6
	// entryBlockSize is the fixed backpatched table block per entry:
	// start(8) + stored length(8) + encoding(1) + logical length(8).
	entryBlockSize = 25
	// maxNameLen bounds one stored entry name against the parse scratch buffer.
	maxNameLen = 512
)

// Default writer tuning values.
const (
	DefaultWriteBuffer      = 4 * 1024 * 1024
	DefaultMinCompressSize  = 1024
	DefaultMaxCompressSize  = 32 * 1024 * 1024
	DefaultCompressRatioPct = 70
)

// Encoding identifies how one file payload is stored on disk.
type Encoding uint8

// Known payload encodings.
const (
	// EncodingRaw stores payload bytes verbatim.
	EncodingRaw Encoding = 0
	// EncodingGzip stores payload as one gzip (deflate) stream.
	EncodingGzip Encoding = 1
	// EncodingLZSS stores payload as one LZSS block.
	EncodingLZSS Encoding = 2
)

// String returns a short encoding label for diagnostics.
func (e Encoding) String() string {
	switch e {
	case EncodingRaw:
		return "raw"
	case EncodingGzip:
		return "gzip"
	case EncodingLZSS:
		return "lzss"
	default:
		return fmt.Sprintf("encoding(0x%02x)", uint8(e))
	}
}

// FileEntry describes one source to be stored into a package.
// Open takes precedence when set; otherwise Data is the payload (nil means empty).
type FileEntry struct {
	// Open returns the raw source stream for this entry.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is the destination path inside the package, normalized before write.
	Name string `json:"name" yaml:"name"`
	// Data is the in-memory payload used when Open is nil.
	Data []byte `json:"-" yaml:"-"`
}

// FileEntryFromPath returns an entry that lazily opens src when the package is built.
func FileEntryFromPath(name, src string) FileEntry {
	return FileEntry{
		Name: name,
		Open: func() (io.ReadCloser, error) { return os.Open(src) },
	}
}

// BuildEntryProgress contains one completed entry write event from a build.
type BuildEntryProgress struct {
	// Name is the canonical entry name written to the table.
	Name string `json:"name" yaml:"name"`
	// Start is the payload byte offset in the output stream.
	Start uint64 `json:"start" yaml:"start"`
	// StoredSize is the on-disk payload size in bytes.
	StoredSize uint64 `json:"stored_size" yaml:"stored_size"`
	// LogicalSize is the original decoded payload size in bytes.
	LogicalSize uint64 `json:"logical_size" yaml:"logical_size"`
	// Encoding is the stored payload encoding.
	Encoding Encoding `json:"encoding" yaml:"encoding"`
	// CompressionCandidate reports whether the compression path was selected for this entry.
	CompressionCandidate bool `json:"compression_candidate,omitempty" yaml:"compression_candidate,omitempty"`
	// Compressed reports whether compressed payload was actually written.
	Compressed bool `json:"compressed,omitempty" yaml:"compressed,omitempty"`
}

// BuildOptions configures build behavior.
type BuildOptions struct {
	// OnEntryDone is called after one entry payload is fully written.
	OnEntryDone func(entry BuildEntryProgress) `json:"-" yaml:"-"`
	// CompressRules optionally restricts compression candidates by path.
	// An empty rule set means every file is a candidate.
	CompressRules []pathrules.Rule `json:"compress_rules,omitempty" yaml:"compress_rules,omitempty"`
	// CompressMatcherOptions control compression path rule matching.
	CompressMatcherOptions pathrules.MatcherOptions `json:"compress_matcher_options,omitzero" yaml:"compress_matcher_options,omitzero"`
	// WriterBufferSize is the buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
	// MinCompressSize disables compression for entries not larger than this size.
	// Default is 1024 bytes.
	MinCompressSize uint64 `json:"min_compress_size,omitempty" yaml:"min_compress_size,omitempty"`
	// MaxCompressSize disables compression for entries not smaller than this size.
	// Default is 32 MiB.
	MaxCompressSize uint64 `json:"max_compress_size,omitempty" yaml:"max_compress_size,omitempty"`
	// RequiredCompressRatio stores compressed payload only when
	// 100*compressed/raw is strictly below this percentage. Default is 70.
	RequiredCompressRatio uint32 `json:"required_compress_ratio,omitempty" yaml:"required_compress_ratio,omitempty"`
	// Codec is the encoding written for accepted compression candidates.
	// Default is EncodingGzip.
	Codec Encoding `json:"codec,omitempty" yaml:"codec,omitempty"`
	// AllowCompression is the master switch for the compression path.
	AllowCompression bool `json:"allow_compression,omitempty" yaml:"allow_compression,omitempty"`
}

// BuildResult contains build output statistics.
type BuildResult struct {
	// WrittenEntries is the number of entries written to the package.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// TableSize is total marker, count, and table bytes written.
	TableSize int64 `json:"table_size" yaml:"table_size"`
	// DataSize is total payload bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// RawBytes is total bytes written for uncompressed payload entries.
	RawBytes int64 `json:"raw_bytes,omitempty" yaml:"raw_bytes,omitempty"`
	// CompressedBytes is total bytes written for compressed payload entries.
	CompressedBytes int64 `json:"compressed_bytes,omitempty" yaml:"compressed_bytes,omitempty"`
	// CompressedEntries is the number of entries written with compressed payload.
	CompressedEntries int `json:"compressed_entries,omitempty" yaml:"compressed_entries,omitempty"`
	// SkippedCompressionEntries is the number of candidates stored raw after the ratio gate.
	SkippedCompressionEntries int `json:"skipped_compression_entries,omitempty" yaml:"skipped_compression_entries,omitempty"`
	// Duration is the end-to-end build duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(rec *FileRecord, written int64, outputPath string) `json:"-" yaml:"-"`
	// Names limits extraction to the listed canonical names; nil means all files.
	Names []string `json:"names,omitempty" yaml:"names,omitempty"`
	// MaxWorkers is the number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// Info describes a package header without keeping a package open.
type Info struct {
	// Version is the numeric format version from the marker.
	Version int `json:"version" yaml:"version"`
	// FileCount is the number of stored files.
	FileCount int `json:"file_count" yaml:"file_count"`
}

// applyDefaults fills zero-valued build options with defaults.
func (opts *BuildOptions) applyDefaults() {
	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}

	if opts.MinCompressSize == 0 {
		opts.MinCompressSize = DefaultMinCompressSize
	}

	if opts.MaxCompressSize == 0 || opts.MaxCompressSize <= opts.MinCompressSize {
		opts.MaxCompressSize = DefaultMaxCompressSize
	}

	if opts.RequiredCompressRatio == 0 || opts.RequiredCompressRatio > 100 {
		opts.RequiredCompressRatio = DefaultCompressRatioPct
	}

	if opts.Codec == EncodingRaw {
		opts.Codec = EncodingGzip
	}

	if opts.CompressMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.CompressMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.CompressMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.CompressMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
