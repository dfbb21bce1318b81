package markdown

import (
	"github.com/obsidian-tools/obsidian-export/internal/frontmatter"
)

// ChainFrame is one link in the embed chain: the path of a note entered via
// an embed, plus the display name the embed was written with (used for
// cycle diagnostics — the chain is an ordered sequence, not a
// set, so the diagnostic can print it in traversal order).
type ChainFrame struct {
	Path    string
	Display string
}

// Context is the per-note, per-embed-frame value threaded through the
// pipeline. RootPath and Frontmatter describe the note actually being
// exported; CurrentPath changes as embeds are entered and left.
type Context struct {
	// RootPath is the source-relative path of the root note being
	// exported. Unchanged across embedded frames.
	RootPath string

	// CurrentPath is the source-relative path of the note whose content
	// is presently being rendered — the root note itself, or an embedded
	// note's target.
	CurrentPath string

	// Frontmatter is the root note's frontmatter document. It is mutable;
	// postprocessors may edit it, and later postprocessors and the final
	// serialization observe the edit.
	Frontmatter *frontmatter.Document

	// DestPath is the note's destination path, initially RootPath. Wiki
	// links are made relative to its directory when they are rewritten,
	// which happens before any postprocessor runs. Postprocessors may
	// change it, but the export driver does not read it back: output is
	// always written to the path mirrored from the source-relative path.
	DestPath string

	// Chain is the ordered sequence of embeds traversed to reach this
	// frame, root-most first.
	Chain []ChainFrame
}

// WithEmbed returns a copy of c for entering an embed at path with the
// given display name appended to the chain. RootPath and Frontmatter carry
// over unchanged; CurrentPath becomes the embed target.
func (c *Context) WithEmbed(path, display string) *Context {
	chain := make([]ChainFrame, len(c.Chain), len(c.Chain)+1)
	copy(chain, c.Chain)
	chain = append(chain, ChainFrame{Path: path, Display: display})
	return &Context{
		RootPath:    c.RootPath,
		CurrentPath: path,
		Frontmatter: c.Frontmatter,
		DestPath:    c.DestPath,
		Chain:       chain,
	}
}

// InChain reports whether path already appears in the embed chain,
// including the root note itself (the base case for a self-embedding
// cycle of length one).
func (c *Context) InChain(path string) bool {
	if path == c.RootPath {
		return true
	}
	for _, f := range c.Chain {
		if f.Path == path {
			return true
		}
	}
	return false
}

// ChainPaths returns the ordered list of paths traversed to reach this
// frame, root note first, for diagnostic messages.
func (c *Context) ChainPaths() []string {
	paths := make([]string, 0, len(c.Chain)+1)
	paths = append(paths, c.RootPath)
	for _, f := range c.Chain {
		paths = append(paths, f.Path)
	}
	return paths
}
