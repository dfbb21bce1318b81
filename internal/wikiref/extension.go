package wikiref

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// inlineParser recognizes "[[...]]" and "![[...]]" tokens while goldmark
// builds its inline AST. It is triggered on '[' and '!' and, on a match,
// hands the bracket body to ParseBody. Code spans and raw HTML are never
// handed to inline parsers by goldmark itself, so they are opaque to this
// parser for free — exactly the "opaque to wiki-tokens" requirement C4
// describes for code spans/blocks.
type inlineParser struct{}

// NewInlineParser returns a goldmark parser.InlineParser recognizing
// Obsidian wiki-links and embeds.
func NewInlineParser() parser.InlineParser {
	return &inlineParser{}
}

func (p *inlineParser) Trigger() []byte {
	return []byte{'[', '!'}
}

// Parse implements parser.InlineParser. It looks at the raw remaining line
// buffer (not AST events) for a "[[" or "![[" prefix and a following "]]"
// on the same line: nested "[[" never nests, the first "]]" always
// closes the outer pair.
func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()

	embed := false
	pos := 0
	if len(line) > 0 && line[0] == '!' {
		if len(line) < 3 || line[1] != '[' || line[2] != '[' {
			return nil
		}
		embed = true
		pos = 3
	} else {
		if len(line) < 2 || line[0] != '[' || line[1] != '[' {
			return nil
		}
		pos = 2
	}

	closeRel := bytes.Index(line[pos:], []byte("]]"))
	if closeRel < 0 {
		return nil
	}

	inner := string(line[pos : pos+closeRel])
	ref := ParseBody(inner)
	ref.IsEmbed = embed
	ref.Raw = string(line[:pos+closeRel+2])

	node := NewNode(ref)
	block.Advance(pos + closeRel + 2)
	_ = segment
	return node
}

// obsidianWikilink is the extension wiring: registers the inline parser
// with priority ahead of goldmark's standard link parser, so "[[" is
// claimed by us before the stock "[" parser gets a chance to open a
// regular CommonMark link.
type obsidianWikilink struct{}

// Extension recognizes Obsidian wiki-links/embeds as a goldmark extension.
var Extension = &obsidianWikilink{}

func (e *obsidianWikilink) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewInlineParser(), 199),
		),
	)
}
