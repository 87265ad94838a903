// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestCodecRawPassthrough(t *testing.T) {
	t.Parallel()

	data := []byte("unchanged")

	enc, err := encodePayload(data, EncodingRaw)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	if !bytes.Equal(enc, data) {
		t.Fatalf("raw encode changed payload: %q", enc)
	}

	dec, err := decodePayload(enc, EncodingRaw, uint64(len(data)))
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("raw decode changed payload: %q", dec)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("compress me please "), 200)

	for _, enc := range []Encoding{EncodingGzip, EncodingLZSS} {
		t.Run(enc.String(), func(t *testing.T) {
			t.Parallel()

			stored, err := encodePayload(payload, enc)
			if err != nil {
				t.Fatalf("encodePayload: %v", err)
			}
			if len(stored) >= len(payload) {
				t.Fatalf("expected compressible payload to shrink, got %d >= %d", len(stored), len(payload))
			}

			decoded, err := decodePayload(stored, enc, uint64(len(payload)))
			if err != nil {
				t.Fatalf("decodePayload: %v", err)
			}
			if !bytes.Equal(decoded, payload) {
				t.Fatal("decoded payload differs from original")
			}
		})
	}
}

func TestCodecUnsupportedEncoding(t *testing.T) {
	t.Parallel()

	if _, err := encodePayload([]byte("x"), Encoding(9)); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("encodePayload: expected ErrUnsupportedEncoding, got %v", err)
	}

	if _, err := decodePayload([]byte("x"), Encoding(9), 1); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("decodePayload: expected ErrUnsupportedEncoding, got %v", err)
	}
}

func TestReadExact(t *testing.T) {
	t.Parallel()

	t.Run("exact", func(t *testing.T) {
		t.Parallel()

		got, err := readExact(bytes.NewReader([]byte("abcdef")), 4)
		if err != nil {
			t.Fatalf("readExact: %v", err)
		}
		if string(got) != "abcd" {
			t.Fatalf("readExact=%q, want %q", got, "abcd")
		}
	})

	t.Run("short stream", func(t *testing.T) {
		t.Parallel()

		if _, err := readExact(bytes.NewReader([]byte("ab")), 4); !errors.Is(err, ErrTruncated) {
			t.Fatalf("expected ErrTruncated, got %v", err)
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		t.Parallel()

		if _, err := readExact(bytes.NewReader(nil), 1); !errors.Is(err, ErrTruncated) {
			t.Fatalf("expected ErrTruncated, got %v", err)
		}
	})

	t.Run("zero length", func(t *testing.T) {
		t.Parallel()

		got, err := readExact(bytes.NewReader(nil), 0)
		if err != nil {
			t.Fatalf("readExact: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("readExact returned %d bytes, want 0", len(got))
		}
	})

	t.Run("chunked reader", func(t *testing.T) {
		t.Parallel()

		got, err := readExact(&oneByteReader{data: []byte("abcd")}, 4)
		if err != nil {
			t.Fatalf("readExact: %v", err)
		}
		if string(got) != "abcd" {
			t.Fatalf("readExact=%q, want %q", got, "abcd")
		}
	})
}

// oneByteReader delivers one byte per Read call to exercise short reads.
type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}

	p[0] = r.data[r.pos]
	r.pos++

	return 1, nil
}
