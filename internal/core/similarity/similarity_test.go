package similarity

import (
	"math"
	"testing"
)

const eps = 1e-4

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestJaro_Known(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "marhta", 0.944444},
		{"ab", "ba", 0}, // window is zero for two runes
		{"", "abc", 0},
		{"abc", "", 0},
		{"acme", "acme", 1},
	}
	for _, tc := range tests {
		if got := Jaro(tc.a, tc.b); !near(got, tc.want) {
			t.Fatalf("Jaro(%q,%q) = %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestJaroWinkler_Known(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "marhta", 0.961111},
		{"dwayne", "duane", 0.84},
		{"dixon", "dicksonx", 0.813333},
		{"northstar", "northgate", 0.882540},
		{"crate", "trace", 0.733333},
		{"acme", "", 0},
		{"", "", 0},
	}
	for _, tc := range tests {
		if got := JaroWinkler(tc.a, tc.b); !near(got, tc.want) {
			t.Fatalf("JaroWinkler(%q,%q) = %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestJaroWinkler_PrefixWeight(t *testing.T) {
	if got := NewJaroWinkler(1.0)("martha", "marhta"); !near(got, 0.986111) {
		t.Fatalf("weight clamps to 0.25: got %f", got)
	}
	if got, want := NewJaroWinkler(0)("martha", "marhta"), Jaro("martha", "marhta"); got != want {
		t.Fatalf("zero weight should equal Jaro: %f vs %f", got, want)
	}
	if got := NewJaroWinkler(-3)("martha", "marhta"); got != Jaro("martha", "marhta") {
		t.Fatalf("negative weight should clamp to zero, got %f", got)
	}
	if ClampPrefixWeight(math.NaN()) != 0 {
		t.Fatalf("NaN weight should clamp to zero")
	}
	if got := NewJaroWinkler(MaxPrefixWeight)("abcdx", "abcdy"); got > 1 {
		t.Fatalf("max weight must stay within bounds, got %f", got)
	}
}

func TestLevenshtein(t *testing.T) {
	if d := Levenshtein("kitten", "sitting"); d != 3 {
		t.Fatalf("Levenshtein = %d, want 3", d)
	}
	if got := LevenshteinSimilarity("kitten", "sitting"); !near(got, 1-3.0/7.0) {
		t.Fatalf("LevenshteinSimilarity = %f", got)
	}
	if got := LevenshteinSimilarity("café", "cafe"); !near(got, 0.75) {
		t.Fatalf("rune based similarity = %f, want 0.75", got)
	}
	if LevenshteinSimilarity("", "x") != 0 || LevenshteinSimilarity("x", "x") != 1 {
		t.Fatalf("empty/identical contract broken")
	}
}

func TestTokenRatios(t *testing.T) {
	if got := TokenSort("Smith John Inc", "John Smith Inc"); got != 1 {
		t.Fatalf("TokenSort reorder = %f, want 1", got)
	}
	if got := TokenSet("Acme Inc", "Acme Global Inc"); got != 1 {
		t.Fatalf("TokenSet superset = %f, want 1", got)
	}
	if got := TokenSet("a b", "c d"); !near(got, 0.555556) {
		t.Fatalf("TokenSet disjoint = %f", got)
	}
	if TokenSort("", "a") != 0 || TokenSet("a", "  ") != 0 {
		t.Fatalf("empty token input should score 0")
	}
}

var corpus = []string{
	"", "a", "ab", "ba", "acme", "acem", "acme global", "global acme",
	"northstar", "northgate", "brightwood", "brightwell", "harbor logistics",
	"harbour logistics", "smith sons", "societe generale", "zürich", "東京", "x y z",
}

func TestProperties_BoundsSymmetryIdentity(t *testing.T) {
	funcs := map[string]Func{
		"jaro":        Jaro,
		"jw":          JaroWinkler,
		"jw_max":      NewJaroWinkler(MaxPrefixWeight),
		"levenshtein": LevenshteinSimilarity,
		"token_sort":  TokenSort,
		"token_set":   TokenSet,
	}
	for name, f := range funcs {
		for _, a := range corpus {
			if a != "" {
				if got := f(a, a); got != 1 {
					t.Fatalf("%s(%q,%q) = %f, want 1", name, a, a, got)
				}
			}
			for _, b := range corpus {
				ab, ba := f(a, b), f(b, a)
				if ab < 0 || ab > 1 {
					t.Fatalf("%s(%q,%q) = %f out of bounds", name, a, b, ab)
				}
				if ab != ba {
					t.Fatalf("%s not symmetric for %q,%q: %f vs %f", name, a, b, ab, ba)
				}
				if (a == "" || b == "") && ab != 0 {
					t.Fatalf("%s(%q,%q) = %f, want 0 for empty input", name, a, b, ab)
				}
			}
		}
	}
}
