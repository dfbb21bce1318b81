package markdown

import (
	"strings"

	"github.com/obsidian-tools/obsidian-export/internal/vaultindex"
)

// DefaultEmbeddableExtensions is the default, configurable set of asset
// extensions the embed expander treats as directly embeddable
// (image/audio/video/PDF). Targets outside this set still resolve as
// assets, but are emitted as a link rather than an embedded tag. The set
// is exposed as configuration rather than hard-coded, since the reference list is
// missing newer formats like HEIC/AVIF).
func DefaultEmbeddableExtensions() map[string]bool {
	exts := []string{
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp",
		".mp4", ".webm", ".mp3", ".wav", ".flac", ".ogg", ".m4a", ".pdf",
		".heic", ".avif",
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return set
}

// Resolver wraps the Vault Index with the export-time information the
// rewriter needs beyond plain path lookup: which resolved notes are
// actually part of this export run (so link rewriting and embed dispatch can tell a filtered-out note
// from one that never existed), and which asset extensions count as
// embeddable media.
type Resolver struct {
	Index         *vaultindex.Index
	Exported      map[string]bool // source-relative path -> included in this export
	EmbeddableExt map[string]bool
}

// resolution is the outcome of resolving a reference target.
type resolution struct {
	entry       vaultindex.Entry
	found       bool
	filteredOut bool
}

func (r *Resolver) resolveNote(target string) resolution {
	entry, ok := r.Index.Resolve(target)
	if !ok {
		return resolution{}
	}
	included := r.Exported == nil || r.Exported[entry.RelPath]
	return resolution{entry: entry, found: true, filteredOut: !included}
}

func (r *Resolver) resolveAsset(target string) resolution {
	entry, ok := r.Index.ResolveAsset(target)
	if !ok {
		return resolution{}
	}
	included := r.Exported == nil || r.Exported[entry.RelPath]
	return resolution{entry: entry, found: true, filteredOut: !included}
}

// resolveAny tries the note namespace first, then the asset namespace,
// so a plain [[file.zip]] reference to a non-markdown vault file resolves
// to a link just as readily as a [[Note]] reference.
func (r *Resolver) resolveAny(target string) resolution {
	if res := r.resolveNote(target); res.found {
		return res
	}
	return r.resolveAsset(target)
}

// isEmbeddable reports whether target's extension is in the embeddable
// media set, case-insensitively.
func (r *Resolver) isEmbeddable(target string) bool {
	ext := extOf(target)
	return r.EmbeddableExt[ext]
}

func extOf(target string) string {
	i := strings.LastIndexByte(target, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(target[i:])
}
