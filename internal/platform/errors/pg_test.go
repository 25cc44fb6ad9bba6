package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ColumnName: col, ConstraintName: constraint}
}

func TestFromPG_Mappings(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeConflict},
		{"23514", ErrorCodeConflict},
		{"23502", ErrorCodeInvalidArgument},
		{"22001", ErrorCodeInvalidArgument},
		{"22P02", ErrorCodeInvalidArgument},
		{"40001", ErrorCodeUnavailable},
		{"40P01", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"57014", ErrorCodeTimeout},
		{"42P01", ErrorCodeDB},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		err := FromPG(pg(c.code, "", ""), "match.write")
		if got := CodeOf(err); got != c.want {
			t.Fatalf("FromPG(%s) = %v, want %v", c.code, got, c.want)
		}
		pe, _ := As(err)
		if pe.Op() != "match.write" {
			t.Fatalf("op not set for %s", c.code)
		}
	}
}

func TestFromPG_FieldAndPassthrough(t *testing.T) {
	t.Parallel()
	if FromPG(nil, "x") != nil {
		t.Fatalf("FromPG(nil) should be nil")
	}

	err := FromPG(fmt.Errorf("exec: %w", pg("23505", "", "company_match_outcomes_pkey")), "op")
	pe, _ := As(err)
	if pe.Field() != "company_match_outcomes_pkey" {
		t.Fatalf("constraint should fill field, got %q", pe.Field())
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("cause should stay reachable")
	}

	ours := InvalidArgf("bad")
	if CodeOf(FromPG(ours, "op2")) != ErrorCodeInvalidArgument {
		t.Fatalf("own errors keep their code")
	}

	if CodeOf(FromPG(context.DeadlineExceeded, "op")) != ErrorCodeTimeout {
		t.Fatalf("deadline should map to timeout")
	}
	if CodeOf(FromPG(stderrs.New("conn reset"), "op")) != ErrorCodeDB {
		t.Fatalf("foreign errors map to db")
	}
}

func TestIsRetryablePG(t *testing.T) {
	t.Parallel()
	if !IsRetryablePG(pg("40001", "", "")) || !IsRetryablePG(context.DeadlineExceeded) {
		t.Fatalf("serialization failure and deadline are retryable")
	}
	if IsRetryablePG(pg("23505", "", "")) || IsRetryablePG(nil) || IsRetryablePG(stderrs.New("x")) {
		t.Fatalf("unexpected retryable")
	}
	if !Retryable(pg("40P01", "", "")) {
		t.Fatalf("Retryable should fall through to pg classification")
	}
}
