package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// canvas is the single, monotonically growing source buffer backing one
// top-level note's full export, including every note spliced in through
// embeds. goldmark's Text/RawHTML/CodeBlock nodes carry byte offsets into
// whatever []byte was handed to the parser; splicing an embedded note's
// AST into the host tree and then rendering against the host's own source
// bytes would read the wrong bytes at every offset. Appending the
// embedded note's full source onto one shared buffer and rebasing the
// spliced subtree's offsets by the append point keeps every node's
// Segment valid against a single buffer, so the final serializer pass
// only ever needs one source slice.
type canvas struct {
	buf []byte
}

func newCanvas(hostSource []byte) *canvas {
	c := &canvas{}
	c.buf = append(c.buf, hostSource...)
	return c
}

// splice appends source and returns the base offset spliced nodes must be
// rebased by.
func (c *canvas) splice(source []byte) int {
	base := len(c.buf)
	c.buf = append(c.buf, source...)
	return base
}

func (c *canvas) bytes() []byte {
	return c.buf
}

type linesNode interface {
	Lines() *text.Segments
	SetLines(*text.Segments)
}

// rebase shifts every source-offset-bearing node within root's subtree by
// base, in place. Call once per spliced subtree, immediately after
// canvas.splice returns the subtree's base offset.
func rebase(root ast.Node, base int) error {
	if base == 0 {
		return nil
	}
	return ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			node.Segment = rebaseSegment(node.Segment, base)
		case *ast.RawHTML:
			node.Segments = rebaseSegments(node.Segments, base)
		case *ast.AutoLink:
			if node.Value != nil {
				node.Value.Segment = rebaseSegment(node.Value.Segment, base)
			}
		default:
			if ln, ok := n.(linesNode); ok {
				switch n.(type) {
				case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
					ln.SetLines(rebaseSegments(ln.Lines(), base))
				}
			}
		}
		return ast.WalkContinue, nil
	})
}

func rebaseSegment(s text.Segment, base int) text.Segment {
	return text.Segment{Start: s.Start + base, Stop: s.Stop + base, Padding: s.Padding}
}

func rebaseSegments(segs *text.Segments, base int) *text.Segments {
	out := text.NewSegments()
	if segs == nil {
		return out
	}
	for i := 0; i < segs.Len(); i++ {
		out.Append(rebaseSegment(segs.At(i), base))
	}
	return out
}
