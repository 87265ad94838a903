// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// compressMatcher holds compiled path rules restricting compression candidates.
type compressMatcher struct {
	matcher *pathrules.Matcher
}

// newCompressMatcher compiles compression path rules. A nil result means no
// path restriction: every file stays a candidate.
func newCompressMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*compressMatcher, error) {
	rules = normalizeCompressRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("compile compress rules: %w", err)
	}

	return &compressMatcher{matcher: matcher}, nil
}

// normalizeCompressRules normalizes rule patterns and drops empty patterns.
func normalizeCompressRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePatternForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether the canonical name is included by the compress rules.
func (m *compressMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizeName(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// shouldCompress reports whether one entry enters the compression candidate
// path: compression allowed, raw size strictly between the size bounds, and
// the path included by the rules when any are set. The ratio gate is applied
// later against the actual compressed size.
func shouldCompress(opts BuildOptions, matcher *compressMatcher, name string, rawSize uint64) bool {
	if !opts.AllowCompression {
		return false
	}

	if !shouldCompressBySize(opts, rawSize) {
		return false
	}

	if matcher == nil {
		return true
	}

	return matcher.Match(name)
}

// shouldCompressBySize reports whether raw size lies strictly inside the
// compression boundaries.
func shouldCompressBySize(opts BuildOptions, rawSize uint64) bool {
	return rawSize > opts.MinCompressSize && rawSize < opts.MaxCompressSize
}
