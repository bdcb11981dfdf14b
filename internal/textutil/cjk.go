package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeTerm canonicalizes a glossary term: NFC composition plus
// surrounding whitespace removal. Extraction output mixes composed and
// decomposed kana depending on the model, so terms must be normalized before
// they are used as map keys.
func NormalizeTerm(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// FoldSearch prepares a string for directory filtering: full-width forms are
// folded to their half-width equivalents and ASCII is lowercased, so a query
// like "10" matches "１０" and "act" matches "ACT".
func FoldSearch(s string) string {
	return strings.ToLower(width.Fold.String(s))
}

// ContainsFold reports whether haystack contains needle under FoldSearch
// normalization.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(FoldSearch(haystack), FoldSearch(needle))
}

// Preview returns s truncated to at most max runes, with an ellipsis when
// anything was cut. Used for notification bodies and log excerpts.
func Preview(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}
