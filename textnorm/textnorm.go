// Package textnorm provides the canonical text form used everywhere symptom
// or rubric text is compared: lowercase, diacritics stripped, whitespace
// collapsed. The repertory parser applies it once at load time; the engine
// applies it per request. Both sides must agree, so it lives in one place.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes, drops combining marks and recomposes, so that
// "Céphalée" and "cephalee" fold to the same string.
var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stopwords are tokens ignored when computing token-overlap ratios.
// Rubric texts are short clinical phrases, so the list stays small.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {},
	"from": {}, "in": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "with": {}, "while": {}, "when": {}, "after": {}, "before": {},
}

// Fold returns the canonical form of s: diacritics folded, lowercased,
// inner whitespace collapsed to single spaces, outer whitespace trimmed.
func Fold(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		// Transform only fails on malformed input; fall back to the raw text
		// rather than dropping the symptom.
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Tokens splits s into canonical tokens, punctuation stripped.
func Tokens(s string) []string {
	folded := Fold(s)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// SignificantTokens returns the canonical tokens of s minus stopwords,
// deduplicated, as a set.
func SignificantTokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(s) {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// OverlapRatio computes shared/union over two significant-token sets.
// Returns 0 when either set is empty.
func OverlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// ContainsWholeWord reports whether needle appears in haystack on word
// boundaries. Both arguments must already be in canonical form.
func ContainsWholeWord(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
