// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// buildItem is one normalized entry of the build plan.
type buildItem struct {
	entry FileEntry
	name  string
}

// writtenEntry stores concrete entry values produced during the payload pass.
type writtenEntry struct {
	start                uint64
	storedSize           uint64
	logicalSize          uint64
	encoding             Encoding
	compressionCandidate bool
}

// Build writes an FFP package to out from the given files. Entries are
// sorted by canonical name for deterministic output. The whole file list is
// validated (normalization, duplicates, path conflicts) before the first
// byte is written; any later I/O failure leaves the output stream in an
// indeterminate state that the caller must discard.
//
// The algorithm is three passes over one exclusively owned output stream:
// placeholder table layout, payload writes with per-file compression
// decisions, then backpatching the recorded table positions with the final
// offsets and sizes.
func Build(ctx context.Context, out io.WriteSeeker, files []FileEntry, opts BuildOptions) (*BuildResult, error) {
	startedAt := time.Now()

	if out == nil {
		return nil, ErrNilWriter
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()

	matcher, err := newCompressMatcher(opts.CompressRules, opts.CompressMatcherOptions)
	if err != nil {
		return nil, err
	}

	plan, err := prepareBuildPlan(files)
	if err != nil {
		return nil, err
	}

	w := bufio.NewWriterSize(out, opts.WriterBufferSize)

	headerPos, err := writeTableLayout(w, plan)
	if err != nil {
		return nil, err
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush table: %w", err)
	}

	dataStart, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("seek after table: %w", err)
	}

	written := make([]writtenEntry, 0, len(plan))
	res := &BuildResult{
		WrittenEntries: len(plan),
		TableSize:      dataStart,
	}

	current := uint64(dataStart)
	for _, item := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := readEntryPayload(item)
		if err != nil {
			return nil, err
		}

		record, err := writeEntryPayload(w, item.name, raw, opts, matcher, current)
		if err != nil {
			return nil, err
		}

		written = append(written, record)
		current += record.storedSize

		if record.encoding == EncodingRaw {
			res.RawBytes += int64(record.storedSize)
			if record.compressionCandidate {
				res.SkippedCompressionEntries++
			}
		} else {
			res.CompressedBytes += int64(record.storedSize)
			res.CompressedEntries++
		}

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(BuildEntryProgress{
				Name:                 item.name,
				Start:                record.start,
				StoredSize:           record.storedSize,
				LogicalSize:          record.logicalSize,
				Encoding:             record.encoding,
				CompressionCandidate: record.compressionCandidate,
				Compressed:           record.encoding != EncodingRaw,
			})
		}
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush payloads: %w", err)
	}

	if err := backpatchTable(out, headerPos, written); err != nil {
		return nil, err
	}

	res.DataSize = int64(current) - dataStart
	res.Duration = time.Since(startedAt)

	return res, nil
}

// BuildFile writes an FFP package to outPath, syncing and closing the file.
func BuildFile(ctx context.Context, outPath string, files []FileEntry, opts BuildOptions) (*BuildResult, error) {
	f, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create package file: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	res, err := Build(ctx, f, files, opts)
	if err != nil {
		return nil, err
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sync package file: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close package file: %w", err)
	}
	f = nil

	return res, nil
}

// prepareBuildPlan normalizes names, rejects empty and over-long names and
// duplicates, verifies the names form a consistent folder hierarchy, and
// sorts entries by canonical name.
func prepareBuildPlan(files []FileEntry) ([]buildItem, error) {
	plan := make([]buildItem, 0, len(files))
	seen := make(map[string]string, len(files))
	tree := newFolder("")

	for _, entry := range files {
		name := NormalizeName(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, entry.Name)
		}
		if len(name) > maxNameLen {
			return nil, fmt.Errorf("%w: %s", ErrNameTooLong, name)
		}
		if prior, exists := seen[name]; exists {
			return nil, fmt.Errorf("%w: %q conflicts with %q", ErrDuplicateEntry, entry.Name, prior)
		}

		seen[name] = entry.Name

		// Catches file/folder collisions such as "a" next to "a/b".
		if err := tree.AddFile(name, &FileRecord{fullName: name, simpleName: simpleName(name)}, false); err != nil {
			return nil, err
		}

		plan = append(plan, buildItem{name: name, entry: entry})
	}

	sort.Slice(plan, func(i, j int) bool {
		return plan[i].name < plan[j].name
	})

	return plan, nil
}

// writeTableLayout writes the marker, file count, and per-entry placeholder
// blocks plus length-prefixed names, returning each entry's recorded block
// position for the backpatch pass.
func writeTableLayout(w *bufio.Writer, plan []buildItem) ([]int64, error) {
	if _, err := fmt.Fprintf(w, "%s%03d", magicTag, formatVersion); err != nil {
		return nil, fmt.Errorf("write marker: %w", err)
	}

	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(plan)))
	if _, err := w.Write(u32[:]); err != nil {
		return nil, fmt.Errorf("write file count: %w", err)
	}

	headerPos := make([]int64, len(plan))
	pos := int64(markerSize + 4)
	var placeholder [entryBlockSize]byte
	for i, item := range plan {
		headerPos[i] = pos

		if _, err := w.Write(placeholder[:]); err != nil {
			return nil, fmt.Errorf("write entry placeholder: %w", err)
		}

		binary.BigEndian.PutUint32(u32[:], uint32(len(item.name)))
		if _, err := w.Write(u32[:]); err != nil {
			return nil, fmt.Errorf("write entry name length: %w", err)
		}

		if _, err := w.WriteString(item.name); err != nil {
			return nil, fmt.Errorf("write entry name: %w", err)
		}

		pos += entryBlockSize + 4 + int64(len(item.name))
	}

	return headerPos, nil
}

// readEntryPayload resolves one entry's raw bytes from its stream or buffer.
func readEntryPayload(item buildItem) ([]byte, error) {
	if item.entry.Open != nil {
		rc, err := item.entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", item.name, err)
		}

		data, readErr := io.ReadAll(rc)
		closeErr := rc.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read input %s: %w", item.name, readErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close input %s: %w", item.name, closeErr)
		}

		return data, nil
	}

	return item.entry.Data, nil
}

// writeEntryPayload writes one payload, compressed when the candidate passes
// the ratio gate, and returns the concrete table values for backpatching.
func writeEntryPayload(
	w *bufio.Writer,
	name string,
	raw []byte,
	opts BuildOptions,
	matcher *compressMatcher,
	currentOffset uint64,
) (writtenEntry, error) {
	rawSize := uint64(len(raw))
	record := writtenEntry{
		start:       currentOffset,
		storedSize:  rawSize,
		logicalSize: rawSize,
		encoding:    EncodingRaw,
	}

	payload := raw
	if shouldCompress(opts, matcher, name, rawSize) {
		record.compressionCandidate = true

		compressed, err := encodePayload(raw, opts.Codec)
		if err != nil {
			return writtenEntry{}, fmt.Errorf("compress %s: %w", name, err)
		}

		ratio := 100 * uint64(len(compressed)) / rawSize
		if ratio < uint64(opts.RequiredCompressRatio) {
			payload = compressed
			record.storedSize = uint64(len(compressed))
			record.encoding = opts.Codec
		}
	}

	if _, err := w.Write(payload); err != nil {
		return writtenEntry{}, fmt.Errorf("write payload %s: %w", name, err)
	}

	return record, nil
}

// backpatchTable overwrites each placeholder block with the now-known
// start position, stored length, encoding, and logical length.
func backpatchTable(out io.WriteSeeker, headerPos []int64, written []writtenEntry) error {
	var block [entryBlockSize]byte
	for i, record := range written {
		binary.BigEndian.PutUint64(block[0:8], record.start)
		binary.BigEndian.PutUint64(block[8:16], record.storedSize)
		block[16] = byte(record.encoding)
		binary.BigEndian.PutUint64(block[17:25], record.logicalSize)

		if _, err := out.Seek(headerPos[i], io.SeekStart); err != nil {
			return fmt.Errorf("seek to entry %d: %w", i, err)
		}

		if _, err := out.Write(block[:]); err != nil {
			return fmt.Errorf("patch entry %d: %w", i, err)
		}
	}

	return nil
}
