package similarity

import (
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Levenshtein returns the rune edit distance between a and b
func Levenshtein(a, b string) int {
	return fuzzy.LevenshteinDistance(a, b)
}

// LevenshteinSimilarity returns 1 - distance/max(len) over runes
func LevenshteinSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	d := Levenshtein(a, b)
	return clamp01(1 - float64(d)/float64(max(la, lb)))
}
