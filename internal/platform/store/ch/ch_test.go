package ch

import (
	"context"
	"strings"
	"testing"

	perr "outreach/internal/platform/errors"
)

func TestInsertSQL(t *testing.T) {
	if got := InsertSQL("match_decisions", []string{"record_id", "status"}); got != "INSERT INTO match_decisions (record_id, status)" {
		t.Fatalf("InsertSQL = %q", got)
	}
	if got := InsertSQL("t", nil); got != "INSERT INTO t" {
		t.Fatalf("InsertSQL no cols = %q", got)
	}
}

func TestClientInfo(t *testing.T) {
	ci := ClientInfo("", "match")
	if len(ci.Products) != 4 {
		t.Fatalf("products = %d", len(ci.Products))
	}
	if ci.Products[0].Name != "outreach" || ci.Products[1].Version != "match" {
		t.Fatalf("unexpected products %+v", ci.Products)
	}
}

func TestOpen_BadDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{URL: "://bad"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if !strings.Contains(err.Error(), "clickhouse dsn") {
		t.Fatalf("err = %v", err)
	}
}

func TestAppendBatch_EmptyIsNoop(t *testing.T) {
	var c CH
	if err := c.AppendBatch(context.Background(), "t", []string{"a"}, nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}
