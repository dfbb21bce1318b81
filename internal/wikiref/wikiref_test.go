package wikiref

import (
	"reflect"
	"testing"
)

func TestScan_Basic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "plain text only",
			input: "no links here",
			want:  []Segment{{Text: "no links here"}},
		},
		{
			name:  "simple link",
			input: "See [[Other]].",
			want: []Segment{
				{Text: "See "},
				{IsRef: true, Ref: Reference{Target: "Other", Raw: "[[Other]]"}},
				{Text: "."},
			},
		},
		{
			name:  "link with label",
			input: "[[Other|click here]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Target: "Other", Label: "click here", Raw: "[[Other|click here]]"}},
			},
		},
		{
			name:  "link with section",
			input: "[[note#My Heading]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Target: "note", Section: "My Heading", Raw: "[[note#My Heading]]"}},
			},
		},
		{
			name:  "link with section and label",
			input: "[[note#Heading|Label]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Target: "note", Section: "Heading", Label: "Label", Raw: "[[note#Heading|Label]]"}},
			},
		},
		{
			name:  "embed",
			input: "![[image.png]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Target: "image.png", IsEmbed: true, Raw: "![[image.png]]"}},
			},
		},
		{
			name:  "self reference with section",
			input: "[[#Heading]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Section: "Heading", Raw: "[[#Heading]]"}},
			},
		},
		{
			name:  "unterminated bracket is literal",
			input: "[[Missing closer",
			want:  []Segment{{Text: "[[Missing closer"}},
		},
		{
			name:  "padded target and section are trimmed",
			input: "[[ Other # Section ]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Target: "Other", Section: "Section", Raw: "[[ Other # Section ]]"}},
			},
		},
		{
			name:  "nested brackets do not nest",
			input: "[[A [[B]] more]]",
			want: []Segment{
				{IsRef: true, Ref: Reference{Target: "A [[B", Raw: "[[A [[B]]"}},
				{Text: " more]]"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Scan(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Scan(%q) = %#v; want %#v", tc.input, got, tc.want)
			}
		})
	}
}

func TestReference_Display(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{"target only", Reference{Target: "Note"}, "Note"},
		{"target and section", Reference{Target: "Note", Section: "Head"}, "Note#Head"},
		{"section only (self-ref)", Reference{Section: "Head"}, "#Head"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ref.Display(); got != tc.want {
				t.Errorf("Display() = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestReference_IsSelf(t *testing.T) {
	if !(Reference{Section: "x"}).IsSelf() {
		t.Error("expected empty target to be a self-reference")
	}
	if (Reference{Target: "x"}).IsSelf() {
		t.Error("expected non-empty target to not be a self-reference")
	}
}

func TestReference_String_RoundTrip(t *testing.T) {
	tests := []string{
		"[[Other]]",
		"[[Other|click here]]",
		"[[note#Heading]]",
		"[[note#Heading|Label]]",
		"![[image.png]]",
	}
	for _, in := range tests {
		segs := Scan(in)
		if len(segs) != 1 || !segs[0].IsRef {
			t.Fatalf("Scan(%q) did not yield a single reference: %#v", in, segs)
		}
		if got := segs[0].Ref.String(); got != in {
			t.Errorf("String() round-trip = %q; want %q", got, in)
		}
	}
}
