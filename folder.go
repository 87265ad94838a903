// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

package ffp

import (
	"fmt"
	"iter"
	"sort"
)

// Node is one member of the folder tree: either a *FileRecord or a *Folder.
// A slot never holds both variants at once.
type Node interface {
	// Name returns the node's own path segment name.
	Name() string

	node()
}

// Folder is one level of the hierarchy synthesized from flat entry names.
// The root folder represents the empty path.
type Folder struct {
	children map[string]Node
	name     string
}

// newFolder returns an empty folder for one path segment.
func newFolder(name string) *Folder {
	return &Folder{
		children: make(map[string]Node),
		name:     name,
	}
}

// Name returns the folder's own path segment name; empty for the root.
func (f *Folder) Name() string {
	return f.name
}

func (*Folder) node() {}

// AddFile inserts rec below f at the slash-separated path, creating
// intermediate folders. Without overwrite it fails with ErrPathConflict when
// an intermediate segment names a file, and with ErrDuplicateEntry when the
// final slot is already taken. With overwrite, conflicting slots are replaced
// and whatever they held is discarded.
func (f *Folder) AddFile(path string, rec *FileRecord, overwrite bool) error {
	name := NormalizeName(path)
	if name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, path)
	}

	segments := splitName(name)
	cur := f
	for _, segment := range segments[:len(segments)-1] {
		child, ok := cur.children[segment]
		if !ok {
			sub := newFolder(segment)
			cur.children[segment] = sub
			cur = sub
			continue
		}

		sub, ok := child.(*Folder)
		if !ok {
			if !overwrite {
				return fmt.Errorf("%w: segment %q of %s names a file", ErrPathConflict, segment, name)
			}

			sub = newFolder(segment)
			cur.children[segment] = sub
		}

		cur = sub
	}

	last := segments[len(segments)-1]
	if _, exists := cur.children[last]; exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	cur.children[last] = rec

	return nil
}

// At resolves the slash-separated path below f to a file or folder node.
// The empty path resolves to f itself. It fails with ErrNotFound when a
// segment is absent and with ErrPathConflict when a non-final segment names
// a file.
func (f *Folder) At(path string) (Node, error) {
	name := NormalizeName(path)
	if name == "" {
		return f, nil
	}

	segments := splitName(name)
	cur := f
	for i, segment := range segments {
		child, ok := cur.children[segment]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		if i == len(segments)-1 {
			return child, nil
		}

		sub, ok := child.(*Folder)
		if !ok {
			return nil, fmt.Errorf("%w: segment %q of %s names a file", ErrPathConflict, segment, name)
		}

		cur = sub
	}

	return cur, nil
}

// GetFile resolves path to a file record.
func (f *Folder) GetFile(path string) (*FileRecord, error) {
	node, err := f.At(path)
	if err != nil {
		return nil, err
	}

	rec, ok := node.(*FileRecord)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a folder", ErrPathConflict, NormalizeName(path))
	}

	return rec, nil
}

// GetFolder resolves path to a subfolder.
func (f *Folder) GetFolder(path string) (*Folder, error) {
	node, err := f.At(path)
	if err != nil {
		return nil, err
	}

	sub, ok := node.(*Folder)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a file", ErrPathConflict, NormalizeName(path))
	}

	return sub, nil
}

// TryGetFile resolves path to a file record with a found flag instead of an error.
func (f *Folder) TryGetFile(path string) (*FileRecord, bool) {
	rec, err := f.GetFile(path)
	if err != nil {
		return nil, false
	}

	return rec, true
}

// TryGetFolder resolves path to a subfolder with a found flag instead of an error.
func (f *Folder) TryGetFolder(path string) (*Folder, bool) {
	sub, err := f.GetFolder(path)
	if err != nil {
		return nil, false
	}

	return sub, true
}

// HasFile reports whether path resolves to a file record.
func (f *Folder) HasFile(path string) bool {
	_, ok := f.TryGetFile(path)
	return ok
}

// HasFolder reports whether path resolves to a subfolder.
func (f *Folder) HasFolder(path string) bool {
	_, ok := f.TryGetFolder(path)
	return ok
}

// Files returns a restartable sequence of the immediate child names that are
// files, in sorted order. One level only, non-recursive.
func (f *Folder) Files() iter.Seq[string] {
	return f.childNames(false)
}

// Folders returns a restartable sequence of the immediate child names that
// are folders, in sorted order. One level only, non-recursive.
func (f *Folder) Folders() iter.Seq[string] {
	return f.childNames(true)
}

// childNames yields sorted immediate child names of one variant.
func (f *Folder) childNames(folders bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		names := make([]string, 0, len(f.children))
		for name, child := range f.children {
			_, isFolder := child.(*Folder)
			if isFolder == folders {
				names = append(names, name)
			}
		}

		sort.Strings(names)
		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}
}
