package similarity

import (
	"sort"
	"strings"
)

// TokenSort compares the alphabetically sorted token sequences with Jaro-Winkler
func TokenSort(a, b string) float64 {
	return TokenSortWith(JaroWinkler, a, b)
}

// TokenSortWith is TokenSort over an arbitrary base scorer
func TokenSortWith(f Func, a, b string) float64 {
	ta, tb := sortedTokens(a), sortedTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	return f(strings.Join(ta, " "), strings.Join(tb, " "))
}

// TokenSet scores partial and superset matches: the shared tokens are compared against
// each side's full token set and the two full sets against each other; the best wins.
func TokenSet(a, b string) float64 {
	return TokenSetWith(JaroWinkler, a, b)
}

// TokenSetWith is TokenSet over an arbitrary base scorer
func TokenSetWith(f Func, a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	var inter, diffA, diffB []string
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter = append(inter, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for t := range sb {
		if _, ok := sa[t]; !ok {
			diffB = append(diffB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(inter, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	best := f(withA, withB)
	if base != "" {
		best = max(best, f(base, withA), f(base, withB))
	}
	return clamp01(best)
}

func sortedTokens(s string) []string {
	toks := strings.Fields(strings.ToLower(s))
	sort.Strings(toks)
	return toks
}

func tokenSet(s string) map[string]struct{} {
	toks := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
