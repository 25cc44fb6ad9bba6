// Package normalize turns raw company identity fields into canonical comparable forms
// Name pipeline
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD decomposition
// 3 Case folding
// 4 Remove combining marks and format chars
// 5 Width fold fullwidth to ASCII
// 6 Non alphanumerics become spaces
// 7 Drop standalone "and" so "&" and "and" spellings agree
// 8 Strip trailing legal-entity suffixes, longest first, until none remain
// 9 Drop leading "the" tokens
//
// Domain, city and state have their own families and are never conflated with names.
// Every function is total: bad or empty input yields "" which callers treat as absent.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is stateless and safe for concurrent use
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
			norm.NFC,
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// fold runs the shared rune pipeline (steps 1-5)
func fold(s string) string {
	s = strings.ToValidUTF8(s, "")
	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// transform only fails on malformed input we already repaired; fall back to plain lowering
		return strings.ToLower(s)
	}
	return out
}

// tokens splits a folded string on anything that is not a letter or digit
func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CompanyName returns the canonical comparable form of a company name
func (n *Normalizer) CompanyName(s string) string {
	if s == "" {
		return ""
	}
	toks := dropAnd(tokens(fold(s)))
	toks = stripSuffixes(toks)
	for len(toks) > 0 && toks[0] == "the" {
		toks = toks[1:]
	}
	return strings.Join(toks, " ")
}

// dropAnd removes "and" tokens in place
func dropAnd(toks []string) []string {
	out := toks[:0]
	for _, t := range toks {
		if t != "and" {
			out = append(out, t)
		}
	}
	return out
}

// collapse lowercases, folds, and squeezes punctuation and whitespace to single spaces
func collapse(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(tokens(fold(s)), " ")
}

// Default is a package level Normalizer for callers that do not inject one
var Default = New()

// CompanyName normalizes with the default normalizer
func CompanyName(s string) string { return Default.CompanyName(s) }

// Domain normalizes with the default normalizer
func Domain(s string) string { return Default.Domain(s) }

// City normalizes with the default normalizer
func City(s string) string { return Default.City(s) }

// State normalizes with the default normalizer
func State(s string) string { return Default.State(s) }
