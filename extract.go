// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// extractWorkItem stores one resolved record with its prepared output path.
type extractWorkItem struct {
	rec     *FileRecord
	outPath string
}

// Extract writes selected files from the package to dstDir, recreating the
// folder hierarchy. Extraction is parallelized by MaxWorkers; on failure it
// returns the first encountered error.
func (p *Package) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if p == nil || p.rs == nil {
		return ErrNilReader
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if ctx == nil {
		ctx = context.Background()
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	names := opts.Names
	if names == nil {
		names = p.Names()
	}

	if len(names) == 0 {
		return nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	items, err := p.prepareExtractWorkItems(names, dstRootAbs)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := item.rec.Data()
			if err != nil {
				return fmt.Errorf("read %s: %w", item.rec.FullName(), err)
			}

			if err := os.WriteFile(item.outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", item.outPath, err)
			}

			if opts.OnEntryDone != nil {
				opts.OnEntryDone(item.rec, int64(len(data)), item.outPath)
			}

			return nil
		})
	}

	return g.Wait()
}

// prepareExtractWorkItems resolves records, validates output paths, and
// creates the directory skeleton before any worker starts.
func (p *Package) prepareExtractWorkItems(names []string, dstRootAbs string) ([]extractWorkItem, error) {
	items := make([]extractWorkItem, 0, len(names))
	for _, name := range names {
		rec, ok := p.Record(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		rel, err := extractRelPath(rec.fullName)
		if err != nil {
			return nil, err
		}

		outPath := filepath.Join(dstRootAbs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
			return nil, fmt.Errorf("create output dir for %s: %w", rec.fullName, err)
		}

		items = append(items, extractWorkItem{rec: rec, outPath: outPath})
	}

	return items, nil
}

// extractRelPath validates a canonical name for filesystem output. The name
// character set is already restricted, so the only remaining hazard is a
// dot-only segment escaping the destination root.
func extractRelPath(name string) (string, error) {
	for seg := range strings.SplitSeq(name, "/") {
		if strings.Trim(seg, ".") == "" {
			return "", fmt.Errorf("%w: %s", ErrInvalidExtractPath, name)
		}
	}

	return name, nil
}
