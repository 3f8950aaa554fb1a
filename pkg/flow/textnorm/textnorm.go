// FILE: pkg/flow/textnorm/textnorm.go
// PURPOSE: Canonical text form shared by every interpreter cascade

package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics and collapses whitespace.
// All keyword matching in pkg/flow happens on this canonical form, so
// "Está bom", "esta bom" and "ESTÁ  BOM" are the same token sequence.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// NFD decomposition, then drop combining marks (accents)
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
