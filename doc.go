// SPDX-License-Identifier: MIT
// Copyright (c) 2026 PackFmt
// Source: github.com/packfmt/ffp

/*
Package ffp reads and writes FFP (Flat File Package) containers: single-file
archives that store a flat set of named files with optional per-file
compression and support random-access reads of individual files without
loading the whole archive into memory.

Names are normalized to a restricted character set (lower-case ASCII letters,
digits, '_', '.', space and '/'); characters outside the set are silently
dropped. A folder hierarchy is synthesized from the flat slash-separated
names and exposed through Package.Root.

# Reading

Open a package and read files by canonical name:

	p, err := ffp.Open("assets.ffp", nil)
	if err != nil {
	    return err
	}
	defer p.Close()

	data, err := p.GetFileData("data/config.txt")
	if err != nil {
	    return err
	}
	// use data

Navigate the synthesized folder tree:

	sub, err := p.Root().GetFolder("data")
	if err != nil {
	    return err
	}
	for name := range sub.Files() {
	    // one level of file names
	}

One open Package supports concurrent readers; every payload read serializes
seek+read on the shared stream internally.

# Writing

Build a package from in-memory or lazily opened sources. Compression is
decided per file: a candidate must be allowed, sized strictly between
MinCompressSize and MaxCompressSize, and the compressed payload must land
below RequiredCompressRatio percent of the raw size, otherwise the file is
stored raw. Path rules (github.com/woozymasta/pathrules) can restrict which
paths are candidates at all:

	files := []ffp.FileEntry{
	    {Name: "data/config.txt", Data: cfg},
	    ffp.FileEntryFromPath("textures/tree.png", "src/tree.png"),
	}
	res, err := ffp.BuildFile(ctx, "assets.ffp", files, ffp.BuildOptions{
	    AllowCompression: true,
	    CompressRules: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "data/**"},
	    },
	})
	_ = res.CompressedEntries

Build validates the whole file list (normalization, duplicates, path
conflicts) before the first byte is written. A failed build leaves the output
stream in an unusable state; discarding it is the caller's responsibility.

# Extracting

Extract an opened package to a directory with parallel workers:

	if err := p.Extract(ctx, "out/", ffp.ExtractOptions{MaxWorkers: 4}); err != nil {
	    return err
	}
*/
package ffp
