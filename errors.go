// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import "errors"

// Sentinel errors for package operations. Use errors.Is in callers.
var (
	// ErrBadFormat means the stream is not a valid package: bad magic,
	// malformed version digits, version zero, or a malformed table field.
	ErrBadFormat = errors.New("invalid package: missing or malformed header")
	// ErrDuplicateEntry means two entries normalize to the same canonical name,
	// or a folder tree slot is already taken.
	ErrDuplicateEntry = errors.New("duplicate entry name")
	// ErrPathConflict means a path segment names a file where a folder is
	// required, or the other way around.
	ErrPathConflict = errors.New("path conflict between file and folder")
	// ErrNotFound means no file or folder exists at the given path.
	ErrNotFound = errors.New("entry not found")
	// ErrTruncated means the stream ended before the required byte count.
	ErrTruncated = errors.New("stream truncated")
	// ErrUnsupportedEncoding means the payload encoding byte is outside the known set.
	ErrUnsupportedEncoding = errors.New("unsupported payload encoding")
	// ErrInvalidName means an entry name is empty after normalization.
	ErrInvalidName = errors.New("entry name is empty after normalization")
	// ErrNameTooLong means an entry name exceeds the maximum stored length.
	ErrNameTooLong = errors.New("entry name exceeds maximum length")
	// ErrNilReader means the backing stream or package is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the output stream is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrClosed means the package backing stream is already closed.
	ErrClosed = errors.New("package already closed")
	// ErrSizeOverflow means a stored size does not fit the platform int range.
	ErrSizeOverflow = errors.New("size exceeds platform int range")
	// ErrInvalidExtractPath means an entry name cannot map to a safe output path.
	ErrInvalidExtractPath = errors.New("invalid extract path")
)
