package markdown

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Heading", "my-heading"},
		{"  Trim Me  ", "trim-me"},
		{"Multiple   Spaces", "multiple-spaces"},
		{"Café", "cafe"},
		{"São Paulo", "sao-paulo"},
		{"Already-Slugged", "already-slugged"},
		{"Sub-heading: notes!", "sub-heading-notes"},
		{"123 Numbers", "123-numbers"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range tests {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
