package markdown

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/obsidian-tools/obsidian-export/internal/wikiref"
)

// rewriteTree is the central event-rewriting loop: it walks doc's
// block structure, splicing embed expansions in place of paragraphs
// that consist of nothing but a single note embed, and otherwise rewrites
// every remaining wiki-token in place as a CommonMark link or image.
//
// Unlike a naive per-event regex, the reference parser already runs
// inside goldmark's own inline-parsing phase against the raw line buffer
// (internal/wikiref's parser.InlineParser), so by the time this pass sees
// the AST every "[[...]]"/"![[...]]" token is already a single
// *wikiref.Node leaf rather than a run of bracket/text events straddling a
// paragraph — the event-coalescing problem a text-level scanner would
// hit is avoided structurally, one layer earlier.
func (p *Pipeline) rewriteTree(doc ast.Node, ctx *Context, r *Resolver, read ContentReader, warn func(string), cv *canvas, depth int) error {
	return p.rewriteContainer(doc, ctx, r, read, warn, cv, depth)
}

func (p *Pipeline) rewriteContainer(container ast.Node, ctx *Context, r *Resolver, read ContentReader, warn func(string), cv *canvas, depth int) error {
	child := container.FirstChild()
	for child != nil {
		next := child.NextSibling()

		if para, ok := child.(*ast.Paragraph); ok {
			if ref, ok := soleNoteEmbed(para, r); ok {
				blocks, err := p.dispatchNoteEmbed(ref, ctx, r, read, warn, cv, depth)
				if err != nil {
					return err
				}
				for _, b := range blocks {
					container.InsertBefore(container, b, para)
				}
				container.RemoveChild(container, para)
				child = next
				continue
			}
		}

		if isBlockContainer(child) {
			// child's direct children are themselves blocks (list
			// items, blockquote content, table cells, ...): only
			// rewriteContainer may descend into it, so that a nested
			// paragraph gets its own soleNoteEmbed check before any
			// inline rewriting touches its wiki-token.
			if err := p.rewriteContainer(child, ctx, r, read, warn, cv, depth); err != nil {
				return err
			}
		} else if err := p.rewriteInlineChildren(child, ctx, r, warn); err != nil {
			return err
		}

		child = next
	}
	return nil
}

// rewriteInlineChildren replaces any *wikiref.Node found among node's
// direct children with its resolved link/image/text form, recursing into
// other inline containers (emphasis, standard links, etc.) that might
// nest a wiki-token further down. node itself must already be inline
// content or a leaf block (Paragraph, Heading, ...) — callers own the
// block/inline boundary and must never hand this a block container
// (List, Blockquote, ...), or a sole-embed paragraph nested inside it
// would be degraded to a link before rewriteContainer ever sees it.
func (p *Pipeline) rewriteInlineChildren(node ast.Node, ctx *Context, r *Resolver, warn func(string)) error {
	child := node.FirstChild()
	for child != nil {
		next := child.NextSibling()

		if wr, ok := child.(*wikiref.Node); ok {
			destDir := destDirOf(ctx.DestPath)
			repl := rewriteInlineRef(r, wr.Reference, destDir, warn)
			node.InsertBefore(node, repl, wr)
			node.RemoveChild(node, wr)
			child = next
			continue
		}

		if child.Type() == ast.TypeInline && child.FirstChild() != nil {
			if err := p.rewriteInlineChildren(child, ctx, r, warn); err != nil {
				return err
			}
		}
		child = next
	}
	return nil
}

// rewriteInlineRef resolves a single wiki-token that stayed inline: a
// plain link, a self-reference, an embeddable asset, or a note-embed that
// did not qualify for block splicing (it shared its paragraph with other
// content) and so degrades to a link rather than attempting a partial
// transclusion mid-paragraph.
func rewriteInlineRef(r *Resolver, ref wikiref.Reference, destDir string, warn func(string)) ast.Node {
	if !ref.IsEmbed {
		return rewriteLink(r, ref, destDir, warn)
	}
	if ref.IsSelf() {
		return selfAnchorNode(ref)
	}
	if r.isEmbeddable(ref.Target) {
		if node, _ := rewriteImageTarget(r, ref, destDir, warn); node != nil {
			return node
		}
		return ast.NewString(nil)
	}

	degraded := ref
	degraded.IsEmbed = false
	return rewriteLink(r, degraded, destDir, warn)
}

// soleNoteEmbed reports whether p's only content is a single embed
// reference resolving in the note namespace — the
// "whole file" / "heading slice" transclusion case, which requires
// block position to splice into.
func soleNoteEmbed(p *ast.Paragraph, r *Resolver) (wikiref.Reference, bool) {
	var found *wikiref.Node
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *wikiref.Node:
			if found != nil {
				return wikiref.Reference{}, false
			}
			found = v
		case *ast.Text:
			// Any text sibling at all means the embed shares its
			// paragraph with other content; only a lone embed token
			// qualifies for block-level splicing.
			_ = v
			return wikiref.Reference{}, false
		default:
			return wikiref.Reference{}, false
		}
	}
	if found == nil || !found.Reference.IsEmbed || found.Reference.IsSelf() {
		return wikiref.Reference{}, false
	}
	if !r.resolveNote(found.Reference.Target).found {
		return wikiref.Reference{}, false
	}
	return found.Reference, true
}

// isBlockContainer reports whether child is a block node whose children
// are themselves blocks (so it needs further container recursion), as
// opposed to a leaf block (Paragraph, Heading, CodeBlock, a GFM table
// cell, ...) whose children are inline content or none at all.
func isBlockContainer(child ast.Node) bool {
	if child.Type() != ast.TypeBlock {
		return false
	}
	switch child.(type) {
	case *ast.Paragraph, *ast.Heading, *ast.CodeBlock, *ast.FencedCodeBlock,
		*ast.HTMLBlock, *ast.ThematicBreak, *extast.TableCell:
		return false
	default:
		return true
	}
}

// destDirOf returns the slash-separated directory containing destPath.
func destDirOf(destPath string) string {
	i := -1
	for j := 0; j < len(destPath); j++ {
		if destPath[j] == '/' {
			i = j
		}
	}
	if i < 0 {
		return ""
	}
	return destPath[:i]
}
