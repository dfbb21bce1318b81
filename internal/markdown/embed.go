package markdown

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/obsidian-tools/obsidian-export/internal/wikiref"
)

// RecursiveEmbedsMode selects the behavior on encountering an embed whose
// target is already on the current embed chain.
type RecursiveEmbedsMode int

const (
	// CycleIsError aborts the whole export of the root note with
	// RecursionLimitExceededError. This is the default.
	CycleIsError RecursiveEmbedsMode = iota

	// CycleBreaksLink emits a plain link at the point of recursion
	// instead of descending again (the --no-recursive-embeds flag).
	CycleBreaksLink
)

// DefaultMaxEmbedDepth is the default recursion budget.
const DefaultMaxEmbedDepth = 10

// ContentReader fetches a vault file's raw bytes by its source-relative
// path, for embeds to re-enter the pipeline on.
type ContentReader func(relPath string) ([]byte, error)

// dispatchNoteEmbed implements the whole-note and heading-slice branches
// of C5 for an embed whose target resolves in the note namespace. It
// returns the block nodes to splice in place of the host paragraph.
func (p *Pipeline) dispatchNoteEmbed(ref wikiref.Reference, ctx *Context, r *Resolver, read ContentReader, warn func(string), cv *canvas, depth int) ([]ast.Node, error) {
	res := r.resolveNote(ref.Target)

	if res.filteredOut {
		warn(fmt.Sprintf("embed target %q exists but is filtered out of the export", ref.Target))
		return nil, nil
	}

	if ctx.InChain(res.entry.RelPath) {
		if p.opts.RecursiveEmbeds == CycleBreaksLink {
			return []ast.Node{wrapInParagraph(cycleBreakLink(ref, res))}, nil
		}
		chain := append(append([]string{}, ctx.ChainPaths()...), res.entry.RelPath)
		return nil, &RecursionLimitExceededError{Chain: chain, Reason: "cyclic embed"}
	}

	if depth+1 > p.opts.MaxEmbedDepth {
		chain := append(append([]string{}, ctx.ChainPaths()...), res.entry.RelPath)
		return nil, &RecursionLimitExceededError{Chain: chain, Reason: "embed depth budget exceeded"}
	}

	source, err := read(res.entry.RelPath)
	if err != nil {
		return nil, fmt.Errorf("read embed target %q: %w", res.entry.RelPath, err)
	}

	doc := p.md.Parser().Parse(text.NewReader(source))
	base := cv.splice(source)
	if err := rebase(doc, base); err != nil {
		return nil, err
	}

	childCtx := ctx.WithEmbed(res.entry.RelPath, ref.Display())
	if err := p.rewriteTree(doc, childCtx, r, read, warn, cv, depth+1); err != nil {
		return nil, err
	}

	if !Chain(p.opts.EmbedPostprocessors, childCtx, doc) {
		return nil, nil
	}

	blocks := blockChildren(doc)

	if ref.Section == "" {
		return blocks, nil
	}

	sliced, ok := sliceByHeading(blocks, ref.Section, cv.bytes())
	if !ok {
		warn(fmt.Sprintf("heading %q not found in embed target %q", ref.Section, ref.Target))
		return []ast.Node{wrapInParagraph(ast.NewString([]byte(ref.Raw)))}, nil
	}
	return sliced, nil
}

// cycleBreakLink builds the fallback link node emitted in place of a
// recursive embed under --no-recursive-embeds.
func cycleBreakLink(ref wikiref.Reference, res resolution) ast.Node {
	link := ast.NewLink()
	dest := res.entry.RelPath
	if anchor := slugify(ref.Section); ref.Section != "" && anchor != "" {
		dest += "#" + anchor
	}
	link.Destination = []byte(dest)
	text := ref.Label
	if text == "" {
		text = ref.Display()
	}
	link.AppendChild(link, ast.NewString([]byte(text)))
	return link
}

func wrapInParagraph(n ast.Node) ast.Node {
	p := ast.NewParagraph()
	p.AppendChild(p, n)
	return p
}

// blockChildren detaches and returns doc's top-level block children as a
// plain slice, in order.
func blockChildren(doc ast.Node) []ast.Node {
	var out []ast.Node
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

// sliceByHeading trims blocks to the run starting at the heading whose
// slugified text equals section's slug (inclusive) and ending before the
// next heading of equal or shallower level (exclusive).
func sliceByHeading(blocks []ast.Node, section string, source []byte) ([]ast.Node, bool) {
	target := slugify(section)
	startIdx := -1
	startLevel := 0
	for i, b := range blocks {
		h, ok := b.(*ast.Heading)
		if !ok {
			continue
		}
		if slugify(headingText(h, source)) == target {
			startIdx = i
			startLevel = h.Level
			break
		}
	}
	if startIdx < 0 {
		return nil, false
	}

	end := len(blocks)
	for i := startIdx + 1; i < len(blocks); i++ {
		if h, ok := blocks[i].(*ast.Heading); ok && h.Level <= startLevel {
			end = i
			break
		}
	}
	return blocks[startIdx:end], true
}

// headingText concatenates a heading's direct text-bearing children,
// ignoring markup nodes, to obtain the plain text to slugify.
func headingText(h *ast.Heading, source []byte) string {
	var out []byte
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				out = append(out, v.Segment.Value(source)...)
			case *ast.String:
				out = append(out, v.Value...)
			default:
				walk(c)
			}
		}
	}
	walk(h)
	return string(out)
}
