// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
	"github.com/woozymasta/lzss"
)

// encodePayload compresses data according to enc. EncodingRaw returns the
// input unchanged.
func encodePayload(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingRaw:
		return data, nil
	case EncodingGzip:
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("create gzip writer: %w", err)
		}

		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("deflate payload: %w", err)
		}

		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("finish gzip payload: %w", err)
		}

		return buf.Bytes(), nil
	case EncodingLZSS:
		out, err := lzss.Compress(data, lzss.DefaultCompressOptions())
		if err != nil {
			return nil, fmt.Errorf("compress payload: %w", err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedEncoding, uint8(enc))
	}
}

// decodePayload expands stored payload bytes according to enc.
// logicalSize is the expected decoded size; the raw and gzip paths ignore it.
func decodePayload(data []byte, enc Encoding, logicalSize uint64) ([]byte, error) {
	switch enc {
	case EncodingRaw:
		return data, nil
	case EncodingGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip payload: %w", err)
		}

		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("inflate payload: %w", err)
		}

		if err := zr.Close(); err != nil {
			return nil, fmt.Errorf("close gzip payload: %w", err)
		}

		return out, nil
	case EncodingLZSS:
		outLen, err := checkedUint64ToInt(logicalSize)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		buf.Grow(outLen)
		if _, err := lzss.DecompressToWriter(&buf, bytes.NewReader(data), outLen, nil); err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedEncoding, uint8(enc))
	}
}

// readExact reads exactly size bytes from r. One underlying Read is permitted
// to return fewer bytes than requested, so this is the only safe way the rest
// of the package fills fixed-size fields and payload buffers.
func readExact(r io.Reader, size uint64) ([]byte, error) {
	n, err := checkedUint64ToInt(size)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: wanted %d bytes", ErrTruncated, n)
		}

		return nil, err
	}

	return buf, nil
}

// checkedUint64ToInt converts uint64 to int with platform-safe overflow check.
func checkedUint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, ErrSizeOverflow
	}

	return int(v), nil
}
