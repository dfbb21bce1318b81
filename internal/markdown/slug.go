package markdown

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// slugify turns heading or section text into a CommonMark-anchor-style
// slug: NFKD-normalize, lowercase, replace runs of non-alphanumeric
// characters with a single hyphen, trim leading/trailing hyphens. An empty
// result means no anchor should be appended.
func slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.ToLower(s)

	var b strings.Builder
	inHyphen := false
	for _, r := range s {
		if unicode.IsMark(r) {
			// NFKD splits accented letters into base rune + combining
			// mark; drop the mark without treating it as a separator,
			// so "café" slugifies to "cafe", not "caf-e".
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			inHyphen = false
			continue
		}
		if !inHyphen && b.Len() > 0 {
			b.WriteByte('-')
			inHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
