package frontmatter

import (
	"strings"
	"testing"
)

func TestSplit_Valid(t *testing.T) {
	content := []byte(`---
title: My Note
tags:
  - tag1
  - tag2
date: 2024-01-15
---
# My Note

This is the body content.
`)

	doc, body, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if title := doc.GetString("title"); title != "My Note" {
		t.Errorf("expected title 'My Note', got %q", title)
	}

	tags := doc.GetStringSlice("tags")
	if len(tags) != 2 || tags[0] != "tag1" || tags[1] != "tag2" {
		t.Errorf("unexpected tags: %v", tags)
	}

	expectedBody := "# My Note\n\nThis is the body content.\n"
	if string(body) != expectedBody {
		t.Errorf("expected body %q, got %q", expectedBody, string(body))
	}
}

func TestSplit_NoFrontmatter(t *testing.T) {
	content := []byte("# Just a regular markdown file\n\nNo frontmatter here.")

	doc, body, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !doc.Empty() {
		t.Error("expected empty frontmatter")
	}
	if string(body) != string(content) {
		t.Error("body should equal original content")
	}
}

func TestSplit_UnterminatedFence(t *testing.T) {
	content := []byte("---\ntitle: No closer\n# rest of file\n")

	doc, body, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Empty() {
		t.Error("expected empty frontmatter for an unterminated fence")
	}
	if string(body) != string(content) {
		t.Error("body should equal original content when fence never closes")
	}
}

func TestSerialize_IfPresent_RoundTrip(t *testing.T) {
	content := []byte("---\ntitle: Note\ntags:\n  - a\n  - b\n---\nbody\n")
	doc, _, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := doc.Serialize(IfPresent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "title: Note") {
		t.Errorf("expected serialized frontmatter to contain title, got %q", out)
	}
	if !strings.HasPrefix(string(out), "---\n") || !strings.HasSuffix(string(out), "---\n") {
		t.Errorf("expected fenced output, got %q", out)
	}
}

func TestSerialize_PreservesKeyOrder(t *testing.T) {
	content := []byte("---\nzebra: 1\napple: 2\nmango: 3\n---\nbody\n")
	doc, _, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := doc.Serialize(IfPresent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zi := strings.Index(string(out), "zebra")
	ai := strings.Index(string(out), "apple")
	mi := strings.Index(string(out), "mango")
	if !(zi < ai && ai < mi) {
		t.Errorf("expected key order zebra, apple, mango to survive round-trip; got %q", out)
	}
}

func TestSerialize_Never(t *testing.T) {
	content := []byte("---\ntitle: Note\n---\nbody\n")
	doc, _, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := doc.Serialize(Never)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected no output in Never mode, got %q", out)
	}
}

func TestSerialize_Always_EmptyWhenAbsent(t *testing.T) {
	doc, _, err := Split([]byte("# no frontmatter\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := doc.Serialize(Always)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "---\n---\n" {
		t.Errorf("expected empty fence block, got %q", out)
	}
}

func TestSerialize_IfPresent_EmptyWhenAbsent(t *testing.T) {
	doc, _, err := Split([]byte("# no frontmatter\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := doc.Serialize(IfPresent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected no output in IfPresent mode for an absent frontmatter, got %q", out)
	}
}

func TestSet_MutatesExistingKeyInPlace(t *testing.T) {
	content := []byte("---\ntitle: Old\ntags:\n  - a\n---\nbody\n")
	doc, _, err := Split(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := doc.Set("title", "New"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.GetString("title"); got != "New" {
		t.Errorf("expected title New, got %q", got)
	}

	out, err := doc.Serialize(IfPresent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ti := strings.Index(string(out), "title")
	ta := strings.Index(string(out), "tags")
	if ti > ta {
		t.Errorf("expected title to keep its original position ahead of tags, got %q", out)
	}
}

func TestSet_AppendsNewKey(t *testing.T) {
	doc, _, err := Split([]byte("---\ntitle: Note\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := doc.Set("slug", "my-note"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.GetString("slug"); got != "my-note" {
		t.Errorf("expected slug my-note, got %q", got)
	}
}

func TestSet_OnEmptyDocument(t *testing.T) {
	doc, _, err := Split([]byte("no frontmatter here\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := doc.Set("title", "Added"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Empty() {
		t.Error("expected document to no longer be empty after Set")
	}
	out, err := doc.Serialize(IfPresent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "title: Added") {
		t.Errorf("expected title in serialized output, got %q", out)
	}
}

func TestDelete(t *testing.T) {
	doc, _, err := Split([]byte("---\ntitle: Note\ndraft: true\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.Delete("draft")
	if doc.Has("draft") {
		t.Error("expected draft to be deleted")
	}
	if !doc.Has("title") {
		t.Error("expected title to remain")
	}
}

func TestTagsAcceptsScalarOrSequence(t *testing.T) {
	seq, _, err := Split([]byte("---\ntags:\n  - one\n  - two\n---\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := seq.Tags(); len(got) != 2 {
		t.Errorf("expected 2 tags, got %v", got)
	}

	scalar, _, err := Split([]byte("---\ntags: solo\n---\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := scalar.Tags(); len(got) != 1 || got[0] != "solo" {
		t.Errorf("expected single-element tags slice, got %v", got)
	}
}
