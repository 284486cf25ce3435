// Package tokenize implements component C1: lowercasing, combining-mark
// stripping, letter-run splitting, and English stemming via a Snowball-style
// stemmer. Both the file ingestion path and the URL ingestion path share
// these functions so the empty-stem rule (see Tokens) is applied uniformly.
package tokenize

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s and strips Unicode combining marks (e.g. café ->
// cafe), matching the parse step the spec describes ahead of token
// splitting.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	cleaned, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return lowered
	}
	return cleaned
}

// Split breaks normalized text into runs of letters; anything that is not a
// letter is a delimiter.
func Split(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// Stem reduces a single lowercased word to its English stem. A token the
// stemmer rejects (non-alphabetic input, empty string) is returned
// unchanged rather than propagating an error, since stemming is a best-
// effort normalisation step, not a validity check.
func Stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", false)
	if err != nil {
		return word
	}
	return stemmed
}

// Tokens splits raw text into stemmed tokens. A token that stems to the
// empty string is still present in the returned slice (as "") so callers
// can apply the single, uniform rule the spec settles on for both
// ingestion paths: an empty stem does not consume a position (see
// SPEC_FULL.md §4.4).
func Tokens(s string) []string {
	words := Split(s)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Stem(w)
	}
	return out
}
