// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	want := map[string][]byte{
		"a/b/c.txt": []byte("nested"),
		"a/d.txt":   []byte("sibling"),
		"zeros.bin": make([]byte, 2000),
	}

	files := make([]FileEntry, 0, len(want))
	for name, data := range want {
		files = append(files, FileEntry{Name: name, Data: data})
	}

	path := buildPackageFile(t, files, BuildOptions{AllowCompression: true})
	p := openPackageFile(t, path)

	var mu sync.Mutex
	done := make(map[string]int64, len(want))

	dstDir := t.TempDir()
	err := p.Extract(context.Background(), dstDir, ExtractOptions{
		MaxWorkers: 4,
		OnEntryDone: func(rec *FileRecord, written int64, outputPath string) {
			mu.Lock()
			done[rec.FullName()] = written
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for name, data := range want {
		got, err := os.ReadFile(filepath.Join(dstDir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("read extracted %s: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("extracted %s differs", name)
		}
		if done[name] != int64(len(data)) {
			t.Fatalf("OnEntryDone written=%d for %s, want %d", done[name], name, len(data))
		}
	}
}

func TestExtractSelectedNames(t *testing.T) {
	t.Parallel()

	files := []FileEntry{
		{Name: "keep.txt", Data: []byte("keep")},
		{Name: "skip.txt", Data: []byte("skip")},
	}
	path := buildPackageFile(t, files, BuildOptions{})
	p := openPackageFile(t, path)

	dstDir := t.TempDir()
	if err := p.Extract(context.Background(), dstDir, ExtractOptions{Names: []string{"keep.txt"}}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dstDir, "keep.txt")); err != nil {
		t.Fatalf("keep.txt missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "skip.txt")); !os.IsNotExist(err) {
		t.Fatalf("skip.txt should not exist, stat err=%v", err)
	}
}

func TestExtractUnknownName(t *testing.T) {
	t.Parallel()

	files := []FileEntry{{Name: "a.txt", Data: []byte("x")}}
	path := buildPackageFile(t, files, BuildOptions{})
	p := openPackageFile(t, path)

	err := p.Extract(context.Background(), t.TempDir(), ExtractOptions{Names: []string{"missing.txt"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractClosedPackage(t *testing.T) {
	t.Parallel()

	files := []FileEntry{{Name: "a.txt", Data: []byte("x")}}
	path := buildPackageFile(t, files, BuildOptions{})
	p := openPackageFile(t, path)

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := p.Extract(context.Background(), t.TempDir(), ExtractOptions{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestExtractRelPathRejectsDotSegments(t *testing.T) {
	t.Parallel()

	if _, err := extractRelPath("a/../b"); !errors.Is(err, ErrInvalidExtractPath) {
		t.Fatalf("expected ErrInvalidExtractPath, got %v", err)
	}
	if _, err := extractRelPath("..."); !errors.Is(err, ErrInvalidExtractPath) {
		t.Fatalf("expected ErrInvalidExtractPath, got %v", err)
	}

	got, err := extractRelPath("a/b.txt")
	if err != nil {
		t.Fatalf("extractRelPath: %v", err)
	}
	if got != "a/b.txt" {
		t.Fatalf("extractRelPath=%q", got)
	}
}
