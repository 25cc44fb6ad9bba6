package pg

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"outreach/internal/platform/logger"
	kit "outreach/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	in := "SELECT id,\n\t name\n  FROM companies   WHERE id = $1"
	if got := compact(in); got != "SELECT id, name FROM companies WHERE id = $1" {
		t.Fatalf("compact = %q", got)
	}
}

func TestTracer_Levels(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Tracer(root)

	ctx := logger.WithRequest(context.Background(), "req-7")
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 2", ElapsedUS: 900000, Slow: true})
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 3", Err: errors.New("boom")})

	out := buf.String()
	kit.MustContain(t, out, `"level":"debug"`)
	kit.MustContain(t, out, `"level":"warn"`)
	kit.MustContain(t, out, `"level":"error"`)
	kit.MustContain(t, out, `"elapsed_ms":1.5`)
	kit.MustContain(t, out, `"request_id":"req-7"`)
	kit.MustContain(t, out, `"component":"pg"`)
}

func TestOpen_BadURL(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
