// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"errors"
	"slices"
	"testing"
)

func testRecord(name string) *FileRecord {
	full := NormalizeName(name)
	return &FileRecord{fullName: full, simpleName: simpleName(full)}
}

func TestFolderAddFile(t *testing.T) {
	t.Parallel()

	t.Run("creates intermediate folders", func(t *testing.T) {
		t.Parallel()

		root := newFolder("")
		if err := root.AddFile("a/b/c.txt", testRecord("a/b/c.txt"), false); err != nil {
			t.Fatalf("AddFile: %v", err)
		}

		if !root.HasFolder("a") || !root.HasFolder("a/b") {
			t.Fatal("intermediate folders missing")
		}
		if !root.HasFile("a/b/c.txt") {
			t.Fatal("file missing at leaf")
		}
	})

	t.Run("duplicate leaf", func(t *testing.T) {
		t.Parallel()

		root := newFolder("")
		if err := root.AddFile("a/b.txt", testRecord("a/b.txt"), false); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
		if err := root.AddFile("a/b.txt", testRecord("a/b.txt"), false); !errors.Is(err, ErrDuplicateEntry) {
			t.Fatalf("expected ErrDuplicateEntry, got %v", err)
		}
	})

	t.Run("file blocking intermediate segment", func(t *testing.T) {
		t.Parallel()

		root := newFolder("")
		if err := root.AddFile("a", testRecord("a"), false); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
		if err := root.AddFile("a/b.txt", testRecord("a/b.txt"), false); !errors.Is(err, ErrPathConflict) {
			t.Fatalf("expected ErrPathConflict, got %v", err)
		}
	})

	t.Run("overwrite replaces file with folder", func(t *testing.T) {
		t.Parallel()

		root := newFolder("")
		if err := root.AddFile("a", testRecord("a"), false); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
		if err := root.AddFile("a/b.txt", testRecord("a/b.txt"), true); err != nil {
			t.Fatalf("AddFile overwrite: %v", err)
		}

		if !root.HasFolder("a") {
			t.Fatal("expected folder at a after overwrite")
		}
		if root.HasFile("a") {
			t.Fatal("file at a should have been discarded")
		}
	})

	t.Run("overwrite replaces leaf", func(t *testing.T) {
		t.Parallel()

		root := newFolder("")
		first := testRecord("a/b.txt")
		second := testRecord("a/b.txt")
		if err := root.AddFile("a/b.txt", first, false); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
		if err := root.AddFile("a/b.txt", second, true); err != nil {
			t.Fatalf("AddFile overwrite: %v", err)
		}

		rec, err := root.GetFile("a/b.txt")
		if err != nil {
			t.Fatalf("GetFile: %v", err)
		}
		if rec != second {
			t.Fatal("leaf was not replaced")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		root := newFolder("")
		if err := root.AddFile("###", testRecord("x"), false); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName, got %v", err)
		}
	})
}

func TestFolderAt(t *testing.T) {
	t.Parallel()

	root := newFolder("")
	for _, name := range []string{"a/b/c.txt", "a/d.txt", "top.txt"} {
		if err := root.AddFile(name, testRecord(name), false); err != nil {
			t.Fatalf("AddFile %s: %v", name, err)
		}
	}

	t.Run("empty path resolves to self", func(t *testing.T) {
		t.Parallel()

		node, err := root.At("")
		if err != nil {
			t.Fatalf("At: %v", err)
		}
		if sub, ok := node.(*Folder); !ok || sub != root {
			t.Fatal("empty path should resolve to the folder itself")
		}
	})

	t.Run("file node", func(t *testing.T) {
		t.Parallel()

		node, err := root.At("a/b/c.txt")
		if err != nil {
			t.Fatalf("At: %v", err)
		}

		rec, ok := node.(*FileRecord)
		if !ok {
			t.Fatalf("expected *FileRecord, got %T", node)
		}
		if rec.Name() != "c.txt" {
			t.Fatalf("Name=%q, want %q", rec.Name(), "c.txt")
		}
	})

	t.Run("missing segment", func(t *testing.T) {
		t.Parallel()

		if _, err := root.At("a/missing/x"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("file as intermediate segment", func(t *testing.T) {
		t.Parallel()

		if _, err := root.At("top.txt/below"); !errors.Is(err, ErrPathConflict) {
			t.Fatalf("expected ErrPathConflict, got %v", err)
		}
	})

	t.Run("typed getters", func(t *testing.T) {
		t.Parallel()

		if _, err := root.GetFile("a"); !errors.Is(err, ErrPathConflict) {
			t.Fatalf("GetFile on folder: expected ErrPathConflict, got %v", err)
		}
		if _, err := root.GetFolder("top.txt"); !errors.Is(err, ErrPathConflict) {
			t.Fatalf("GetFolder on file: expected ErrPathConflict, got %v", err)
		}
		if _, ok := root.TryGetFile("a/d.txt"); !ok {
			t.Fatal("TryGetFile should find a/d.txt")
		}
		if _, ok := root.TryGetFolder("a/b"); !ok {
			t.Fatal("TryGetFolder should find a/b")
		}
		if _, ok := root.TryGetFile("nope"); ok {
			t.Fatal("TryGetFile found nonexistent entry")
		}
	})
}

func TestFolderEnumeration(t *testing.T) {
	t.Parallel()

	root := newFolder("")
	for _, name := range []string{"a/b/c.txt", "a/d.txt", "a/e.txt", "z.txt"} {
		if err := root.AddFile(name, testRecord(name), false); err != nil {
			t.Fatalf("AddFile %s: %v", name, err)
		}
	}

	sub, err := root.GetFolder("a")
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}

	files := slices.Collect(sub.Files())
	if !slices.Equal(files, []string{"d.txt", "e.txt"}) {
		t.Fatalf("Files=%v, want [d.txt e.txt]", files)
	}

	folders := slices.Collect(sub.Folders())
	if !slices.Equal(folders, []string{"b"}) {
		t.Fatalf("Folders=%v, want [b]", folders)
	}

	// The sequence must be restartable.
	again := slices.Collect(sub.Files())
	if !slices.Equal(files, again) {
		t.Fatalf("second iteration differs: %v vs %v", files, again)
	}

	// Early break must not panic or leak.
	for range sub.Files() {
		break
	}

	rootFiles := slices.Collect(root.Files())
	if !slices.Equal(rootFiles, []string{"z.txt"}) {
		t.Fatalf("root Files=%v, want [z.txt]", rootFiles)
	}
}
