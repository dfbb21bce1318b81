package markdown

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/obsidian-tools/obsidian-export/internal/wikiref"
)

// rewriteLink implements C6 for a non-embed Note Reference: it resolves
// the target against the Resolver and returns the inline node(s) to
// substitute for the wiki-link, plus any warning to record. destDir is the
// directory (destination-relative, slash-separated) containing the root
// note's destination file, against which the link's destination is made
// relative.
func rewriteLink(r *Resolver, ref wikiref.Reference, destDir string, warn func(string)) ast.Node {
	if ref.IsSelf() {
		return selfAnchorNode(ref)
	}

	res := r.resolveAny(ref.Target)
	if !res.found {
		warn("unresolved reference to \"" + ref.Target + "\"")
		return plainTextNode(ref.Display(), ref.Label)
	}
	if res.filteredOut {
		// Filtered-out targets fall back silently: this is the user's
		// explicit choice via ignore rules, not a warning condition.
		return plainTextNode(ref.Display(), ref.Label)
	}

	dest := relativeURL(destDir, res.entry.RelPath)
	dest = encodePath(dest)
	if anchor := slugify(ref.Section); ref.Section != "" && anchor != "" {
		dest += "#" + anchor
	}

	text := ref.Label
	if text == "" {
		text = ref.Display()
	}

	link := ast.NewLink()
	link.Destination = []byte(dest)
	link.AppendChild(link, ast.NewString([]byte(text)))
	return link
}

// selfAnchorNode builds a link to the current heading anchor for a
// self-reference ([[#Heading]]): self-references never recurse, even when
// marked as an embed.
func selfAnchorNode(ref wikiref.Reference) ast.Node {
	anchor := slugify(ref.Section)
	text := ref.Label
	if text == "" {
		text = ref.Display()
	}
	if anchor == "" {
		return plainTextNode(text, "")
	}
	link := ast.NewLink()
	link.Destination = []byte("#" + anchor)
	link.AppendChild(link, ast.NewString([]byte(text)))
	return link
}

// plainTextNode builds the fallback node for unresolved or filtered-out
// references: the label if one was given, else the reference's display
// form, emitted as plain text with no link.
func plainTextNode(display, label string) ast.Node {
	text := label
	if text == "" {
		text = display
	}
	return ast.NewString([]byte(text))
}

// rewriteImageTarget implements the image half of C6/C5's dispatch for an
// embeddable asset: builds an ast.Image pointing at the asset's
// destination, relative to destDir.
func rewriteImageTarget(r *Resolver, ref wikiref.Reference, destDir string, warn func(string)) (ast.Node, bool) {
	res := r.resolveAsset(ref.Target)
	if !res.found {
		warn("unresolved embed target \"" + ref.Target + "\"")
		return ast.NewString([]byte(ref.Raw)), false
	}
	if res.filteredOut {
		warn("embed target \"" + ref.Target + "\" exists but is filtered out of the export")
		return nil, false
	}

	dest := encodePath(relativeURL(destDir, res.entry.RelPath))
	alt := ref.Label
	if alt == "" {
		alt = ref.Target
	}

	link := ast.NewLink()
	img := ast.NewImage(link)
	img.Destination = []byte(dest)
	img.AppendChild(img, ast.NewString([]byte(alt)))
	return img, true
}

// relativeURL computes the slash-separated relative path from directory
// fromDir to file path to, both relative to the same root.
func relativeURL(fromDir, to string) string {
	fromParts := splitSlash(fromDir)
	toParts := splitSlash(to)
	if len(toParts) == 0 {
		return to
	}

	maxCommon := len(toParts) - 1
	common := 0
	for common < len(fromParts) && common < maxCommon && fromParts[common] == toParts[common] {
		common++
	}

	ups := len(fromParts) - common
	segments := make([]string, 0, ups+len(toParts)-common)
	for i := 0; i < ups; i++ {
		segments = append(segments, "..")
	}
	segments = append(segments, toParts[common:]...)
	if len(segments) == 0 {
		return toParts[len(toParts)-1]
	}
	return strings.Join(segments, "/")
}

func splitSlash(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// encodePath percent-encodes each path segment independently, preserving
// "/" as an unencoded segment separator. url.PathEscape's path-segment
// escaping already covers the required always-encoded set (space, ?, #,
// %) plus the rest of the URL-unsafe characters.
func encodePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
