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
)

// Inspect reads only the marker and file count from a package file, without
// parsing the entry table or keeping anything open.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open package: %w", err)
	}
	defer func() { _ = f.Close() }()

	return InspectReader(f)
}

// InspectReader reads only the marker and file count from a package stream.
func InspectReader(r io.Reader) (Info, error) {
	if r == nil {
		return Info{}, ErrNilReader
	}

	marker, err := readExact(r, markerSize)
	if err != nil {
		return Info{}, err
	}

	version, err := parseMarker(marker)
	if err != nil {
		return Info{}, err
	}

	countBuf, err := readExact(r, 4)
	if err != nil {
		return Info{}, err
	}

	count := binary.BigEndian.Uint32(countBuf)
	if count > math.MaxInt32 {
		return Info{}, fmt.Errorf("%w: file count %d out of range", ErrBadFormat, count)
	}

	return Info{Version: version, FileCount: int(count)}, nil
}
