package wikiref

import (
	"github.com/yuin/goldmark/ast"
)

// KindWikiLink is the goldmark node kind for an unresolved wiki-link/embed.
var KindWikiLink = ast.NewNodeKind("WikiLink")

// Node is the goldmark AST node produced for every [[...]] or ![[...]]
// token found during inline parsing. It carries the parsed Reference and
// is always a leaf: Obsidian does not evaluate Markdown inside the bracket
// body, so unlike ast.Link it never has inline children of its own — any
// Label text is carried on the Reference, not as child nodes.
type Node struct {
	ast.BaseInline
	Reference Reference
}

// NewNode creates a WikiLink AST node wrapping a parsed Reference.
func NewNode(ref Reference) *Node {
	return &Node{Reference: ref}
}

// Kind implements ast.Node.
func (n *Node) Kind() ast.NodeKind {
	return KindWikiLink
}

// Dump implements ast.Node.
func (n *Node) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Target":  n.Reference.Target,
		"Section": n.Reference.Section,
		"Label":   n.Reference.Label,
		"Embed":   boolString(n.Reference.IsEmbed),
	}, nil)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
