package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key normalizes an identifier for lookup: NFC, case-folded, trimmed, with
// runs of whitespace and path separators collapsed to a single underscore.
// "Escherichia  coli" and "escherichia coli" share the key "escherichia_coli".
func Key(id string) string {
	s := norm.NFC.String(strings.TrimSpace(id))
	s = cases.Fold().String(s)

	var b strings.Builder
	sep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}
