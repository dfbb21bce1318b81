package markdown

import "github.com/yuin/goldmark/ast"

// Directive is a postprocessor's instruction to the chain runner.
type Directive int

const (
	// Continue proceeds to the next postprocessor in the chain.
	Continue Directive = iota

	// StopHere stops the chain but keeps the note; it is written out as
	// whatever state the chain left it in.
	StopHere

	// StopAndSkipNote stops the chain and discards the note entirely;
	// nothing is written for it.
	StopAndSkipNote
)

// Postprocessor is a user-registered callback with mutable access to a
// note's Context and its rewritten AST. Implementations must be safe to
// invoke concurrently from multiple worker goroutines: the
// driver dispatches one Context per work item, but the same Postprocessor
// value is shared and called from every worker.
type Postprocessor interface {
	Process(ctx *Context, doc ast.Node) Directive
}

// PostprocessorFunc adapts a plain function to the Postprocessor
// interface.
type PostprocessorFunc func(ctx *Context, doc ast.Node) Directive

func (f PostprocessorFunc) Process(ctx *Context, doc ast.Node) Directive {
	return f(ctx, doc)
}

// Chain runs an ordered list of postprocessors over a note, honouring
// their directives. It reports whether the note should be written
// (false means StopAndSkipNote was returned).
func Chain(postprocessors []Postprocessor, ctx *Context, doc ast.Node) bool {
	for _, p := range postprocessors {
		switch p.Process(ctx, doc) {
		case StopHere:
			return true
		case StopAndSkipNote:
			return false
		case Continue:
			continue
		}
	}
	return true
}
