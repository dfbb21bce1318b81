// Package vaultindex builds and queries the mapping from Obsidian's
// global, extension-optional note namespace to real filesystem paths.
//
// Obsidian resolves [[Note]] against every markdown file in the vault,
// regardless of directory, using a case-insensitive, Unicode-normalized,
// whitespace-trimmed comparison of the file's stem. This package builds
// that mapping once per export and answers lookups for it; it is built
// before any worker starts and is never mutated afterward, so it is safe
// to share by reference across the parallel driver's worker goroutines.
package vaultindex

import (
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Entry is one file known to the index.
type Entry struct {
	// AbsPath is the file's absolute filesystem path.
	AbsPath string

	// RelPath is the file's path relative to the vault root, slash-separated.
	RelPath string

	// IsMarkdown is true for files counted toward the note namespace
	// (by configurable extension set); false for every other vault file,
	// which is still recorded so the link rewriter can tell "exists but
	// not a note" apart from "doesn't exist".
	IsMarkdown bool
}

// Index is the built, read-only vault-wide lookup table.
type Index struct {
	byKey      map[string]Entry
	nonMDByKey map[string]Entry
	Warnings   []string
}

var caseFold = cases.Fold()

// Key computes the lookup key for a note-lookup string: NFC-normalize,
// case-fold, then trim surrounding whitespace. Both index construction and
// queries must use exactly this function so comparisons stay consistent.
func Key(s string) string {
	s = norm.NFC.String(s)
	s = caseFold.String(s)
	return strings.TrimSpace(s)
}

// stem strips a markdown extension and returns the path with forward slashes.
func stem(relPath string, mdExts map[string]bool) string {
	p := path.Clean(toSlash(relPath))
	ext := path.Ext(p)
	if ext != "" && mdExts[strings.ToLower(ext)] {
		p = strings.TrimSuffix(p, ext)
	}
	return p
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// File describes one vault file as fed into Build.
type File struct {
	AbsPath string
	RelPath string // relative to the vault (scope) root, OS path form
}

// Build constructs an Index from every file in the vault. mdExts is the
// configurable set of extensions (including the leading dot, e.g. ".md")
// counted as notes; every other file is still recorded (IsMarkdown=false)
// so the link rewriter can distinguish a filtered-out note from a genuinely
// unresolved reference.
//
// Only the file's stem (relative to the vault root) feeds the lookup key
// by default — two "Foo.md" files in different directories collide, which
// matches Obsidian's global-name namespace.
func Build(files []File, mdExts map[string]bool) *Index {
	idx := &Index{
		byKey:      make(map[string]Entry),
		nonMDByKey: make(map[string]Entry),
	}

	// Sort for deterministic tie-breaking: shorter path first, then
	// lexicographic. The later insertion is meant to "win", so we
	// insert in the order that makes the *last* write the one we want
	// to keep: longest/lexicographically-last first, so the
	// shortest/lexicographically-first path is inserted last and wins.
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		li, lj := len(sorted[i].RelPath), len(sorted[j].RelPath)
		if li != lj {
			return li > lj // longer first
		}
		return sorted[i].RelPath > sorted[j].RelPath // lexicographically later first
	})

	for _, f := range sorted {
		relSlash := toSlash(f.RelPath)
		ext := strings.ToLower(path.Ext(relSlash))
		isMD := mdExts[ext]

		base := path.Base(stem(relSlash, mdExts))
		key := Key(base)

		entry := Entry{AbsPath: f.AbsPath, RelPath: relSlash, IsMarkdown: isMD}

		if isMD {
			if existing, ok := idx.byKey[key]; ok && existing.RelPath != entry.RelPath {
				idx.Warnings = append(idx.Warnings,
					"duplicate lookup key \""+key+"\": keeping "+entry.RelPath+" over "+existing.RelPath)
			}
			idx.byKey[key] = entry
		} else {
			idx.nonMDByKey[key] = entry
			// Also index by the full relative path (without stripping an
			// extension) so embeds that spell out "image.png" resolve.
			idx.nonMDByKey[Key(relSlash)] = entry
		}
	}

	return idx
}

// Resolve looks up a caller-supplied reference target against the note
// namespace. The target is normalized identically to index keys. If the
// target contains a path separator, both the full relative-path form and
// the stem-only form are tried, with the stem-only form winning on a tie.
func (idx *Index) Resolve(target string) (Entry, bool) {
	if target == "" {
		return Entry{}, false
	}
	normSlash := toSlash(target)

	if strings.Contains(normSlash, "/") {
		stemOnly := Key(path.Base(stripExt(normSlash)))
		if e, ok := idx.byKey[stemOnly]; ok {
			return e, true
		}
		full := Key(stripExt(normSlash))
		if e, ok := idx.byKey[full]; ok {
			return e, true
		}
		return Entry{}, false
	}

	key := Key(stripExt(normSlash))
	e, ok := idx.byKey[key]
	return e, ok
}

// ResolveAsset looks up a non-markdown vault file (an embeddable asset or
// a plain linkable file) by its reference target.
func (idx *Index) ResolveAsset(target string) (Entry, bool) {
	normSlash := toSlash(target)
	if e, ok := idx.nonMDByKey[Key(normSlash)]; ok {
		return e, true
	}
	if e, ok := idx.nonMDByKey[Key(path.Base(normSlash))]; ok {
		return e, true
	}
	return Entry{}, false
}

func stripExt(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return p
	}
	// Only strip extensions that look like markdown's; callers resolving
	// assets use ResolveAsset instead, which does not strip.
	if strings.EqualFold(ext, ".md") {
		return strings.TrimSuffix(p, ext)
	}
	return p
}

// DefaultMarkdownExtensions is the default configurable extension set
// counted as notes.
func DefaultMarkdownExtensions() map[string]bool {
	return map[string]bool{".md": true}
}
