// Package similarity holds the string-distance primitives used for company name matching.
// Every score is in [0,1], is 0 when either side is empty, 1 for identical non-empty input,
// and is symmetric. Comparisons run over runes, not bytes.
package similarity

const (
	// DefaultPrefixWeight is the Winkler prefix scale
	DefaultPrefixWeight = 0.1
	// MaxPrefixWeight keeps the boosted score within [0,1] for a 4 rune prefix
	MaxPrefixWeight = 0.25
	// MaxPrefixLen caps the common prefix that earns a boost
	MaxPrefixLen = 4
)

// Func scores two strings
type Func func(a, b string) float64

// Jaro returns the Jaro similarity of a and b
func Jaro(a, b string) float64 {
	return jaroRunes([]rune(a), []rune(b))
}

// JaroWinkler returns the Jaro-Winkler similarity with the default prefix weight
func JaroWinkler(a, b string) float64 {
	return jaroWinkler([]rune(a), []rune(b), DefaultPrefixWeight)
}

// NewJaroWinkler returns a Jaro-Winkler scorer with prefix weight p clamped to [0, MaxPrefixWeight]
func NewJaroWinkler(p float64) Func {
	p = ClampPrefixWeight(p)
	return func(a, b string) float64 {
		return jaroWinkler([]rune(a), []rune(b), p)
	}
}

// ClampPrefixWeight bounds p to the valid Winkler range
func ClampPrefixWeight(p float64) float64 {
	switch {
	case p != p, p < 0: // NaN or negative
		return 0
	case p > MaxPrefixWeight:
		return MaxPrefixWeight
	}
	return p
}

func jaroWinkler(a, b []rune, p float64) float64 {
	j := jaroRunes(a, b)
	if j == 0 || j == 1 {
		return j
	}
	l := 0
	for l < len(a) && l < len(b) && l < MaxPrefixLen && a[l] == b[l] {
		l++
	}
	return clamp01(j + float64(l)*p*(1-j))
}

func jaroRunes(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if equalRunes(a, b) {
		return 1
	}
	// greedy matching depends on argument order; a fixed order makes the score symmetric
	if less(b, a) {
		a, b = b, a
	}

	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	ma := make([]bool, len(a))
	mb := make([]bool, len(b))
	m := 0
	for i, c := range a {
		lo := max(0, i-window)
		hi := min(len(b), i+window+1)
		for j := lo; j < hi; j++ {
			if mb[j] || b[j] != c {
				continue
			}
			ma[i], mb[j] = true, true
			m++
			break
		}
	}
	if m == 0 {
		return 0
	}

	t, k := 0, 0
	for i := range a {
		if !ma[i] {
			continue
		}
		for !mb[k] {
			k++
		}
		if a[i] != b[k] {
			t++
		}
		k++
	}
	t /= 2

	fm := float64(m)
	return (fm/float64(len(a)) + fm/float64(len(b)) + (fm-float64(t))/fm) / 3
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// less orders rune slices lexicographically
func less(a, b []rune) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
