package markdown

import (
	"testing"

	"github.com/yuin/goldmark/ast"

	"github.com/obsidian-tools/obsidian-export/internal/vaultindex"
	"github.com/obsidian-tools/obsidian-export/internal/wikiref"
)

func nodeText(n ast.Node) string {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s, ok := c.(*ast.String); ok {
			out = append(out, s.Value...)
		}
	}
	return string(out)
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		fromDir string
		to      string
		want    string
	}{
		{"", "Note.md", "Note.md"},
		{"", "folder/Note.md", "folder/Note.md"},
		{"folder", "folder/Other.md", "Other.md"},
		{"a/b", "a/x/Note.md", "../x/Note.md"},
		{"a/b/c", "Note.md", "../../../Note.md"},
	}
	for _, tc := range tests {
		if got := relativeURL(tc.fromDir, tc.to); got != tc.want {
			t.Errorf("relativeURL(%q, %q) = %q, want %q", tc.fromDir, tc.to, got, tc.want)
		}
	}
}

func TestEncodePath(t *testing.T) {
	got := encodePath("a folder/My Note #1.md")
	want := "a%20folder/My%20Note%20%231.md"
	if got != want {
		t.Errorf("encodePath = %q, want %q", got, want)
	}
}

func TestRewriteLink_Resolved(t *testing.T) {
	r := newTestResolver([]vaultindex.File{
		{AbsPath: "/vault/Other.md", RelPath: "Other.md"},
	}, nil)

	var warnings []string
	warn := func(s string) { warnings = append(warnings, s) }

	node := rewriteLink(r, wikiref.Reference{Target: "Other"}, "", warn)
	link, ok := node.(*ast.Link)
	if !ok {
		t.Fatalf("expected *ast.Link, got %T", node)
	}
	if string(link.Destination) != "Other.md" {
		t.Errorf("Destination = %q", link.Destination)
	}
	if nodeText(link) != "Other" {
		t.Errorf("link text = %q", nodeText(link))
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestRewriteLink_WithSectionAnchor(t *testing.T) {
	r := newTestResolver([]vaultindex.File{
		{AbsPath: "/vault/note.md", RelPath: "note.md"},
	}, nil)

	node := rewriteLink(r, wikiref.Reference{Target: "note", Section: "My Heading"}, "", func(string) {})
	link := node.(*ast.Link)
	if string(link.Destination) != "note.md#my-heading" {
		t.Errorf("Destination = %q", link.Destination)
	}
}

func TestRewriteLink_Unresolved(t *testing.T) {
	r := newTestResolver(nil, nil)
	var warnings []string
	node := rewriteLink(r, wikiref.Reference{Target: "Missing"}, "", func(s string) { warnings = append(warnings, s) })
	if _, ok := node.(*ast.String); !ok {
		t.Fatalf("expected plain text fallback, got %T", node)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestRewriteLink_FilteredOut_NoWarning(t *testing.T) {
	r := newTestResolver([]vaultindex.File{
		{AbsPath: "/vault/Note.md", RelPath: "Note.md"},
	}, []string{})

	var warnings []string
	node := rewriteLink(r, wikiref.Reference{Target: "Note"}, "", func(s string) { warnings = append(warnings, s) })
	if _, ok := node.(*ast.String); !ok {
		t.Fatalf("expected plain text fallback, got %T", node)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warning for filtered-out target, got %v", warnings)
	}
}

func TestRewriteLink_RelativeAcrossDirectories(t *testing.T) {
	r := newTestResolver([]vaultindex.File{
		{AbsPath: "/vault/a/b/Target.md", RelPath: "a/b/Target.md"},
	}, nil)

	node := rewriteLink(r, wikiref.Reference{Target: "Target"}, "x/y", func(string) {})
	link := node.(*ast.Link)
	if string(link.Destination) != "../../a/b/Target.md" {
		t.Errorf("Destination = %q", link.Destination)
	}
}

func TestSelfAnchorNode(t *testing.T) {
	node := selfAnchorNode(wikiref.Reference{Section: "Overview"})
	link, ok := node.(*ast.Link)
	if !ok {
		t.Fatalf("expected *ast.Link, got %T", node)
	}
	if string(link.Destination) != "#overview" {
		t.Errorf("Destination = %q", link.Destination)
	}
}

func TestRewriteImageTarget(t *testing.T) {
	r := newTestResolver([]vaultindex.File{
		{AbsPath: "/vault/assets/img.png", RelPath: "assets/img.png"},
	}, nil)

	node, ok := rewriteImageTarget(r, wikiref.Reference{Target: "img.png"}, "", func(string) {})
	if !ok {
		t.Fatal("expected rewriteImageTarget to succeed")
	}
	img, ok := node.(*ast.Image)
	if !ok {
		t.Fatalf("expected *ast.Image, got %T", node)
	}
	if string(img.Destination) != "assets/img.png" {
		t.Errorf("Destination = %q", img.Destination)
	}
}
