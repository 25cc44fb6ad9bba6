package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	kit "outreach/internal/platform/testkit"
)

type fakeTx struct {
	execs      []string
	rolledBack bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.execs = append(f.execs, sql)
	return nil, nil
}
func (f *fakeTx) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) Row       { return nil }
func (f *fakeTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	if err := fn(f); err != nil {
		f.rolledBack = true
		return err
	}
	return nil
}

type repo struct{ q Queryer }

func TestWithTx_BindsInsideTransaction(t *testing.T) {
	tx := &fakeTx{}
	b := BindFunc[repo](func(q Queryer) repo { return repo{q: q} })
	var bound Queryer
	err := WithTx(context.Background(), tx, b, func(r repo) error { bound = r.q; return nil })
	if err != nil || bound != tx {
		t.Fatalf("WithTx bound %v, err %v", bound, err)
	}
}

func TestBeginHooks_RunFirst(t *testing.T) {
	tx := &fakeTx{}
	hooked := WithBeginHooks(tx, StatementTimeout(1500*time.Millisecond))
	err := hooked.Tx(context.Background(), func(q Queryer) error {
		_, _ = q.Exec(context.Background(), "INSERT")
		return nil
	})
	if err != nil {
		t.Fatalf("Tx = %v", err)
	}
	if len(tx.execs) != 2 || tx.execs[0] != "SET LOCAL statement_timeout = 1500" || tx.execs[1] != "INSERT" {
		t.Fatalf("execs = %v", tx.execs)
	}

	failing := WithBeginHooks(tx, func(context.Context, Queryer) error { return errors.New("hook") })
	if err := failing.Tx(context.Background(), func(Queryer) error { return nil }); err == nil || !tx.rolledBack {
		t.Fatalf("hook failure should roll back, err %v", err)
	}
	if WithBeginHooks(tx) != TxRunner(tx) {
		t.Fatalf("no hooks should return the runner unchanged")
	}
}

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

func TestMustGuardAndBind(t *testing.T) {
	kit.MustNotPanic(t, func() { MustGuard(context.Background(), guard{}) })
	kit.MustPanic(t, func() { MustGuard(context.Background(), guard{err: errors.New("pg down")}) })
	kit.MustPanic(t, func() { _ = MustBind[repo](BindFunc[repo](func(q Queryer) repo { return repo{q} }), nil) })
	defer func() {
		if r := recover(); r == nil || !strings.Contains(r.(error).Error(), "pg down") {
			t.Fatalf("panic = %v", r)
		}
	}()
	MustGuard(context.Background(), guard{err: errors.New("pg down")})
}
