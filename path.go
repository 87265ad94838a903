// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import "strings"

// NormalizeName canonicalizes one candidate path into the package name form:
// ASCII letters are lower-cased, backslashes become forward slashes, every
// character outside {a-z, 0-9, '_', '.', ' ', '/'} is silently dropped, and
// leading/trailing '/' and space characters are trimmed from the result.
//
// Invalid characters are deleted, never rejected; an empty result is the
// degenerate case that both writer and reader refuse with ErrInvalidName.
func NormalizeName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == '\\' {
			c = '/'
		}
		if !isNameByte(c) {
			continue
		}

		b.WriteByte(c)
	}

	return strings.Trim(b.String(), "/ ")
}

// isNameByte reports whether byte belongs to the package name character set.
func isNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == ' ' || c == '/':
		return true
	}

	return false
}

// simpleName returns the last segment of a slash-separated canonical name.
func simpleName(full string) string {
	if idx := strings.LastIndexByte(full, '/'); idx >= 0 {
		return full[idx+1:]
	}

	return full
}

// splitName splits a canonical name into path segments.
func splitName(full string) []string {
	if full == "" {
		return nil
	}

	return strings.Split(full, "/")
}

// normalizePatternForMatching prepares one rule pattern for matcher use.
// Glob metacharacters must survive, so only slash style and spacing are touched.
func normalizePatternForMatching(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	pattern = strings.ReplaceAll(pattern, `\`, `/`)
	return strings.TrimPrefix(pattern, "./")
}
