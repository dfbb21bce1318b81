// Package frontmatter splits a note's raw bytes into a YAML frontmatter
// block and the remaining Markdown body, and re-serializes the frontmatter
// on request under one of three emission modes.
//
// Document wraps a *yaml.Node, rather than a plain map, so that
// re-serialization preserves the original key order: a parse/serialize
// round-trip needs to preserve key order where the parser supports it,
// and yaml.Node is what makes that possible with gopkg.in/yaml.v3.
package frontmatter

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Delimiter is the YAML frontmatter fence.
const Delimiter = "---"

// Mode selects how frontmatter is emitted on serialization.
type Mode int

const (
	// IfPresent emits exactly what was parsed, re-serialized from the
	// mutated structure so postprocessor edits take effect. A note with
	// no frontmatter stays without a frontmatter block. This is the
	// default mode.
	IfPresent Mode = iota

	// Always emits a frontmatter block even for notes that had none,
	// as an empty "---\n---\n" fence pair.
	Always

	// Never drops frontmatter entirely, regardless of input.
	Never
)

// Document is the parsed, mutable form of a note's frontmatter.
type Document struct {
	// node is the root mapping node of the parsed YAML document, or nil
	// if the note had no frontmatter block.
	node *yaml.Node
}

// Split separates content into its frontmatter Document and remaining
// body. Frontmatter is a YAML document fenced by "---" on its own line at
// the very start of the file and a closing "---" on its own line; if no
// opening fence is found at the start, the Document is empty and body is
// the whole input unchanged.
func Split(content []byte) (*Document, []byte, error) {
	if !bytes.HasPrefix(content, []byte(Delimiter+"\n")) {
		return &Document{}, content, nil
	}

	rest := content[len(Delimiter)+1:]
	idx := bytes.Index(rest, []byte("\n"+Delimiter+"\n"))
	var yamlContent, body []byte
	if idx >= 0 {
		yamlContent = rest[:idx]
		body = rest[idx+len(Delimiter)+2:]
	} else if bytes.HasSuffix(rest, []byte("\n"+Delimiter)) {
		end := len(rest) - len(Delimiter) - 1
		yamlContent = rest[:end]
		body = nil
	} else {
		// Opening fence with no closing fence: treat the whole file as
		// body rather than erroring.
		return &Document{}, content, nil
	}

	var root yaml.Node
	if len(bytes.TrimSpace(yamlContent)) > 0 {
		if err := yaml.Unmarshal(yamlContent, &root); err != nil {
			return nil, nil, fmt.Errorf("frontmatter: parse: %w", err)
		}
	}

	doc := &Document{}
	if root.Kind != 0 {
		doc.node = mappingNode(&root)
	}
	return doc, body, nil
}

// mappingNode unwraps a parsed yaml.Node down to its top-level mapping,
// since yaml.Unmarshal into a bare Node produces a DocumentNode wrapping
// the real content.
func mappingNode(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

// Empty reports whether the document had no frontmatter at all.
func (d *Document) Empty() bool {
	return d == nil || d.node == nil
}

// Serialize renders the document under the given mode, returning nil if
// the mode produces no frontmatter block at all.
func (d *Document) Serialize(mode Mode) ([]byte, error) {
	switch mode {
	case Never:
		return nil, nil
	case Always:
		if d.Empty() {
			return []byte(Delimiter + "\n" + Delimiter + "\n"), nil
		}
	case IfPresent:
		if d.Empty() {
			return nil, nil
		}
	}

	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.node); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	enc.Close()
	buf.WriteString(Delimiter + "\n")
	return buf.Bytes(), nil
}

// ensureMapping lazily creates an empty mapping node so Set works even on
// a Document that started out with no frontmatter at all (Always mode,
// or a postprocessor adding frontmatter to a previously bare note).
func (d *Document) ensureMapping() *yaml.Node {
	if d.node == nil {
		d.node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	return d.node
}

// findKey returns the index of key's scalar node within the mapping's
// Content slice, or -1. Mapping Content alternates key, value, key, value.
func (d *Document) findKey(key string) int {
	if d.node == nil {
		return -1
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is present in the frontmatter.
func (d *Document) Has(key string) bool {
	return d.findKey(key) >= 0
}

// Get returns the decoded value for key, or nil if absent.
func (d *Document) Get(key string) any {
	i := d.findKey(key)
	if i < 0 {
		return nil
	}
	var v any
	if err := d.node.Content[i+1].Decode(&v); err != nil {
		return nil
	}
	return v
}

// GetString returns key's value as a string, or "" if absent or not a
// scalar string.
func (d *Document) GetString(key string) string {
	i := d.findKey(key)
	if i < 0 {
		return ""
	}
	val := d.node.Content[i+1]
	if val.Kind != yaml.ScalarNode {
		return ""
	}
	return val.Value
}

// GetStringSlice returns key's value as a string slice. A sequence node
// yields each scalar entry; a bare scalar yields a single-element slice,
// tolerating the shape Obsidian users actually write for fields like
// "tags", which can be a list or a single bare value.
func (d *Document) GetStringSlice(key string) []string {
	i := d.findKey(key)
	if i < 0 {
		return nil
	}
	val := d.node.Content[i+1]
	switch val.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(val.Content))
		for _, item := range val.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, item.Value)
			}
		}
		return out
	case yaml.ScalarNode:
		return []string{val.Value}
	default:
		return nil
	}
}

// GetTime parses key's value against a handful of common date layouts,
// returning the zero time if absent or unparseable.
func (d *Document) GetTime(key string) time.Time {
	s := d.GetString(key)
	if s == "" {
		return time.Time{}
	}
	formats := []string{
		"2006-01-02",
		"2006/01/02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Set assigns key to value, appending it in document order if new and
// overwriting its existing node in place (preserving its position) if
// already present.
func (d *Document) Set(key string, value any) error {
	node := d.ensureMapping()
	valueNode := &yaml.Node{}
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("frontmatter: encode %q: %w", key, err)
	}

	if i := d.findKey(key); i >= 0 {
		node.Content[i+1] = valueNode
		return nil
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	node.Content = append(node.Content, keyNode, valueNode)
	return nil
}

// Delete removes key from the frontmatter, if present.
func (d *Document) Delete(key string) {
	i := d.findKey(key)
	if i < 0 {
		return
	}
	d.node.Content = append(d.node.Content[:i], d.node.Content[i+2:]...)
}

// Tags returns the "tags" field, tolerating both sequence and
// single-string shapes.
func (d *Document) Tags() []string {
	return d.GetStringSlice("tags")
}

// Title returns the "title" field, or "" if absent.
func (d *Document) Title() string {
	return d.GetString("title")
}
