package testkit

import (
	"strings"
	"testing"
)

var seamFn = func(s string) string { return strings.ToUpper(s) }

func TestPanicHelpers(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()
	MustContain(t, "gold silver bronze", "silver")
}

func TestMustNear(t *testing.T) {
	t.Parallel()
	MustNear(t, "score", 0.9611, 0.961111, 1e-3)
}

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	Serial(t)
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &seamFn, func(s string) string { return "x" })
		if got := seamFn("acme"); got != "x" {
			t.Fatalf("seam not swapped, got %q", got)
		}
	})
	if got := seamFn("acme"); got != "ACME" {
		t.Fatalf("seam not restored, got %q", got)
	}
}
