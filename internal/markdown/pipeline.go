// Package markdown hosts the central event-rewriting loop: parsing
// an Obsidian note's body into a goldmark AST, delegating wiki-token
// recognition to internal/wikiref, dispatching embeds and
// rewriting links, running the postprocessor chain, and
// serializing the result back to CommonMark with
// github.com/teekennedy/goldmark-markdown rather than goldmark's
// HTML renderer.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	mdrender "github.com/teekennedy/goldmark-markdown"

	"github.com/obsidian-tools/obsidian-export/internal/frontmatter"
	"github.com/obsidian-tools/obsidian-export/internal/wikiref"
)

// Options configures a Pipeline.
type Options struct {
	// FrontmatterMode selects the emission strategy.
	FrontmatterMode frontmatter.Mode

	// HardLineBreaks converts soft line breaks to hard line breaks in
	// the serialized output (--hard-linebreaks).
	HardLineBreaks bool

	// RecursiveEmbeds selects cycle behavior (--no-recursive-embeds
	// maps to CycleBreaksLink).
	RecursiveEmbeds RecursiveEmbedsMode

	// MaxEmbedDepth is the recursion budget; zero means
	// DefaultMaxEmbedDepth.
	MaxEmbedDepth int

	// EmbeddableExt is an embeddable-media extension set. Nil means
	// DefaultEmbeddableExtensions. The pipeline stores it but does not
	// read it: embed dispatch uses the Resolver's EmbeddableExt.
	EmbeddableExt map[string]bool

	// NotePostprocessors run once, in registration order, on the fully
	// embed-expanded outer note.
	NotePostprocessors []Postprocessor

	// EmbedPostprocessors run on each embedded note's events before
	// they are spliced into the host.
	EmbedPostprocessors []Postprocessor
}

func (o Options) maxDepth() int {
	if o.MaxEmbedDepth <= 0 {
		return DefaultMaxEmbedDepth
	}
	return o.MaxEmbedDepth
}

func (o Options) embeddableExt() map[string]bool {
	if o.EmbeddableExt != nil {
		return o.EmbeddableExt
	}
	return DefaultEmbeddableExtensions()
}

// Pipeline is a configured, reusable Markdown Event Pipeline. A single
// Pipeline is safe to share across worker goroutines: goldmark.Markdown
// itself holds no per-document state, and every call below takes its
// mutable state (Context, canvas) as parameters.
type Pipeline struct {
	md   goldmark.Markdown
	opts Options
}

// NewPipeline builds a Pipeline with footnotes, tables, strikethrough,
// task lists (extension.GFM plus extension.Footnote) and the wiki-link/
// embed extension installed.
//
// Obsidian's own hashtag/callout/mermaid/mathjax parser extensions are
// deliberately left out: they each parse their syntax into a bespoke AST
// node, and github.com/teekennedy/goldmark-markdown — the renderer this
// pipeline serializes with — has no render func registered for any of
// them, so a parsed node simply vanishes from the output. None of the
// four need a parser extension to survive a round-trip anyway: a `#tag`
// is already ordinary inline text to CommonMark, a `> [!note]` callout
// is already a blockquote whose first line happens to read "[!note]",
// and a ```mermaid fence or inline `$math$` span is already a plain
// fenced code block or literal text. Leaving the syntax unparsed is the
// passthrough, not a workaround for one.
func NewPipeline(opts Options) *Pipeline {
	opts.MaxEmbedDepth = opts.maxDepth()
	opts.EmbeddableExt = opts.embeddableExt()

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			wikiref.Extension,
		),
	)
	return &Pipeline{md: md, opts: opts}
}

// Result is the outcome of exporting one note.
type Result struct {
	// Output is the serialized CommonMark, including any frontmatter
	// block per the configured emission mode.
	Output []byte

	// Skipped is true when a note-level postprocessor returned
	// StopAndSkipNote; Output is empty in that case.
	Skipped bool

	// Warnings collected while processing this note, each already
	// formatted with the note's path.
	Warnings []string
}

// Export runs the full pipeline for one root note: split frontmatter,
// parse and rewrite the body, run note-level postprocessors, and
// serialize.
func (p *Pipeline) Export(rootPath string, content []byte, r *Resolver, read ContentReader) (*Result, error) {
	doc, body, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rootPath, err)
	}

	res := &Result{}
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, rootPath+": "+msg)
	}

	cv := newCanvas(body)
	node := p.md.Parser().Parse(text.NewReader(body))

	ctx := &Context{
		RootPath:    rootPath,
		CurrentPath: rootPath,
		Frontmatter: doc,
		DestPath:    rootPath,
	}

	if err := p.rewriteTree(node, ctx, r, read, warn, cv, 0); err != nil {
		return nil, err
	}

	if !Chain(p.opts.NotePostprocessors, ctx, node) {
		res.Skipped = true
		return res, nil
	}

	var out []byte
	fm, err := ctx.Frontmatter.Serialize(p.opts.FrontmatterMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rootPath, err)
	}
	out = append(out, fm...)

	rendered, err := p.render(node, cv.bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: render: %w", rootPath, err)
	}
	out = append(out, rendered...)

	res.Output = out
	return res, nil
}

// render serializes doc back to CommonMark using
// github.com/teekennedy/goldmark-markdown, which renders to Markdown
// rather than HTML — the piece goldmark's stock renderer cannot provide
// and the reason this dependency is in the stack at all.
func (p *Pipeline) render(doc ast.Node, source []byte) ([]byte, error) {
	if p.opts.HardLineBreaks {
		convertSoftBreaksToHard(doc)
	}
	renderer := mdrender.NewRenderer()
	var buf bytes.Buffer
	if err := renderer.Render(&buf, source, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// convertSoftBreaksToHard implements --hard-linebreaks: goldmark marks a
// line break as soft or hard on the ast.Text node that precedes it, so
// there is no separate break node to swap — just flip the flag.
func convertSoftBreaksToHard(doc ast.Node) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok && t.SoftLineBreak() {
			t.SetSoftLineBreak(false)
			t.SetHardLineBreak(true)
		}
		return ast.WalkContinue, nil
	})
}
