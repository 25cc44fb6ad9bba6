package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	t.Parallel()
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e1.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e2 := Wrap(src, ErrorCodeDB, "db failed")
	if u := stderrs.Unwrap(e2); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if got := e2.Error(); got != "db failed: root" {
		t.Fatalf("Wrap().Error = %q", got)
	}
	if Root(fmt.Errorf("outer: %w", e2)) != src {
		t.Fatalf("Root should reach the innermost cause")
	}

	e3 := WithOp(WithField(e2, "records"), "match.batch")
	pe, ok := As(e3)
	if !ok || pe.Field() != "records" || pe.Op() != "match.batch" {
		t.Fatalf("WithField/WithOp lost metadata: %+v", pe)
	}
	if got := e3.Error(); got != "match.batch: db failed: root" {
		t.Fatalf("op prefix missing: %q", got)
	}
	if pe0, _ := As(e2); pe0.Field() != "" {
		t.Fatalf("WithField must copy, not mutate")
	}

	foreign := stderrs.New("plain")
	if WithField(foreign, "x") != foreign || WithOp(foreign, "y") != foreign {
		t.Fatalf("foreign errors should pass through")
	}
	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
}

func TestWire(t *testing.T) {
	t.Parallel()
	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("WireFrom(nil) = %+v", w)
	}
	w := WireFrom(WithField(TooLargef("batch of %d", 600), "records"))
	if w.Code != ErrorCodeTooLarge || w.Kind != "too_large" || w.Field != "records" || w.Message != "batch of 600" {
		t.Fatalf("wire = %+v", w)
	}
	w = WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}
	status, _ := HTTP(Unavailablef("pool not loaded"))
	if status != http.StatusServiceUnavailable {
		t.Fatalf("HTTP status = %d", status)
	}
	if s, _ := HTTP(nil); s != http.StatusOK {
		t.Fatalf("HTTP(nil) = %d", s)
	}
}

func TestCodeNames(t *testing.T) {
	t.Parallel()
	if ErrorCodeDuplicateKey.String() != "duplicate_key" {
		t.Fatalf("String() = %q", ErrorCodeDuplicateKey.String())
	}
	if got := ErrorCode(4242).String(); got != "code_4242" {
		t.Fatalf("unknown code String() = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want bool
	}{
		{Unavailablef("x"), true},
		{Newf(ErrorCodeTimeout, "x"), true},
		{InvalidArgf("x"), false},
		{stderrs.New("x"), false},
		{nil, false},
	}
	for i, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("case %d: Retryable = %v, want %v", i, got, c.want)
		}
	}
}
