package normalize

// legalSuffixes lists legal-entity designators as token sequences.
// Dotted forms like "L.L.C." tokenize to single letters, so they appear here spelled out.
var legalSuffixes = [][]string{
	{"limited", "liability", "company"},
	{"limited", "liability", "partnership"},
	{"limited", "partnership"},
	{"professional", "corporation"},
	{"public", "limited", "company"},
	{"l", "l", "c"},
	{"l", "l", "p"},
	{"p", "l", "l", "c"},
	{"p", "c"},
	{"l", "p"},
	{"s", "a"},
	{"n", "v"},
	{"b", "v"},
	{"co", "ltd"},
	{"co", "inc"},
	{"pty", "ltd"},
	{"pvt", "ltd"},
	{"incorporated"},
	{"corporation"},
	{"company"},
	{"limited"},
	{"inc"},
	{"llc"},
	{"llp"},
	{"pllc"},
	{"lllp"},
	{"corp"},
	{"ltd"},
	{"co"},
	{"plc"},
	{"gmbh"},
	{"ag"},
	{"sa"},
	{"bv"},
	{"nv"},
	{"pty"},
	{"srl"},
}

func init() {
	// longest sequence first so "limited liability company" wins over "company"
	sortSuffixes(legalSuffixes)
}

func sortSuffixes(sfx [][]string) {
	// insertion sort keeps declaration order among equal lengths
	for i := 1; i < len(sfx); i++ {
		for j := i; j > 0 && len(sfx[j]) > len(sfx[j-1]); j-- {
			sfx[j], sfx[j-1] = sfx[j-1], sfx[j]
		}
	}
}

// stripSuffixes removes trailing legal suffix sequences until none remain.
// Matching is whole token, so "co" never bites into "company" or "costco".
func stripSuffixes(toks []string) []string {
	for len(toks) > 0 {
		n := matchSuffix(toks)
		if n == 0 {
			return toks
		}
		toks = toks[:len(toks)-n]
	}
	return toks
}

// matchSuffix returns the token length of the longest suffix that ends toks, or 0
func matchSuffix(toks []string) int {
	for _, sfx := range legalSuffixes {
		if len(sfx) > len(toks) {
			continue
		}
		tail := toks[len(toks)-len(sfx):]
		ok := true
		for i := range sfx {
			if tail[i] != sfx[i] {
				ok = false
				break
			}
		}
		if ok {
			return len(sfx)
		}
	}
	return 0
}
