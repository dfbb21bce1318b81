// Package wikiref recognizes Obsidian wiki-links and embeds inside plain
// text spans and splits them into targets, sections, and labels.
//
// Obsidian extends CommonMark with [[Note]], [[Note|label]], [[Note#Heading]]
// and their embed form ![[...]]. None of this has a CommonMark equivalent,
// so it must be recognized by a small state machine rather than a single
// regular expression: an upstream parser may hand us the bracket pair split
// across several text segments (escaped delimiters, entity references), and
// nested "[[" never nests — the first "]]" always closes the outermost pair.
package wikiref

import "strings"

// Reference is a parsed wiki-link or embed token.
type Reference struct {
	// Target is the link destination, or "" for a self-reference.
	Target string

	// Section is the text after '#', or "" if absent.
	Section string

	// Label is the text after '|', or "" if absent. Unlike Target and
	// Section, Label is not trimmed beyond Obsidian's single leading-space
	// strip, since authors sometimes pad display text deliberately.
	Label string

	// IsEmbed is true for "![[...]]" tokens.
	IsEmbed bool

	// Raw is the original matched text, brackets included.
	Raw string
}

// IsSelf reports whether the reference has no target and resolves to the
// current note.
func (r Reference) IsSelf() bool {
	return r.Target == ""
}

// Display returns the link text to use when no explicit Label was given.
func (r Reference) Display() string {
	switch {
	case r.Target != "" && r.Section != "":
		return r.Target + "#" + r.Section
	case r.Section != "":
		return "#" + r.Section
	default:
		return r.Target
	}
}

// Segment is one piece of a scanned span: either literal text or a parsed
// Reference. Exactly one of Text/Ref is meaningful, selected by IsRef.
type Segment struct {
	Text  string
	Ref   Reference
	IsRef bool
}

// scan states for the bracket state machine.
type state int

const (
	stateOutside state = iota
	stateSawBang
	stateSawFirstBracket
	stateInside
	stateSawCloseFirst
)

// Scan walks text and returns the sequence of literal-text and Reference
// segments found in it. A "[[" with no matching "]]" before the span ends
// is emitted as literal text, unchanged.
func Scan(text string) []Segment {
	var segs []Segment
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Text: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(text)
	n := len(runes)
	i := 0
	for i < n {
		c := runes[i]

		// Try to recognize "[[" or "![[" starting at i.
		start := i
		embed := false
		j := i
		if c == '!' && j+1 < n && runes[j+1] == '[' {
			embed = true
			j++
		}
		if j < n && runes[j] == '[' && j+1 < n && runes[j+1] == '[' {
			// Find the closing "]]" — the first one, no nesting.
			k := j + 2
			closeAt := -1
			for k+1 < n {
				if runes[k] == ']' && runes[k+1] == ']' {
					closeAt = k
					break
				}
				k++
			}
			if closeAt != -1 {
				inner := string(runes[j+2 : closeAt])
				ref := parseInner(inner)
				ref.IsEmbed = embed
				ref.Raw = string(runes[start : closeAt+2])
				flushLit()
				segs = append(segs, Segment{Ref: ref, IsRef: true})
				i = closeAt + 2
				continue
			}
		}

		// Not a recognized token; consume one rune as literal text.
		lit.WriteRune(c)
		i++
	}
	flushLit()

	return segs
}

// ParseBody splits the body of a [[...]] pair (without the surrounding
// brackets or a leading "!") into target, section, and label, per the same
// rule used by Scan. Exported for the goldmark inline-parser extension,
// which recognizes the bracket pair itself using the raw line buffer and
// only needs the body split.
func ParseBody(inner string) Reference {
	return parseInner(inner)
}

// parseInner splits the body of a [[...]] pair into target, section, and
// label, per spec: split on the first '|' for label, then split the
// remainder on the first '#' for section. Target and section are trimmed;
// label keeps its interior whitespace, only a single leading space (if any)
// is stripped in Obsidian's own style.
func parseInner(inner string) Reference {
	var r Reference

	targetWithSection := inner
	if idx := strings.IndexByte(inner, '|'); idx != -1 {
		targetWithSection = inner[:idx]
		label := inner[idx+1:]
		label = strings.TrimPrefix(label, " ")
		r.Label = label
	}

	target := targetWithSection
	if idx := strings.IndexByte(targetWithSection, '#'); idx != -1 {
		target = targetWithSection[:idx]
		r.Section = strings.TrimSpace(targetWithSection[idx+1:])
	}
	r.Target = strings.TrimSpace(target)

	return r
}

// String renders a Reference back to Obsidian wiki-syntax.
func (r Reference) String() string {
	var sb strings.Builder
	if r.IsEmbed {
		sb.WriteByte('!')
	}
	sb.WriteString("[[")
	sb.WriteString(r.Target)
	if r.Section != "" {
		sb.WriteByte('#')
		sb.WriteString(r.Section)
	}
	if r.Label != "" {
		sb.WriteByte('|')
		sb.WriteString(r.Label)
	}
	sb.WriteString("]]")
	return sb.String()
}
