// Package repokit holds the shared types and helpers repository implementations build on
package repokit

import (
	"context"
	"fmt"
	"time"

	"outreach/internal/platform/store"
)

type (
	// Queryer is the sql surface a bound repo uses
	Queryer = store.RowQuerier
	// TxRunner runs work in a transaction
	TxRunner = store.TxRunner
	// Rows is a result set
	Rows = store.Rows
	// Row is a single row
	Row = store.Row
	// CommandTag reports a write result
	CommandTag = store.CommandTag
)

// Binder binds a repo to a Queryer, usually the one handed out inside a Tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a function to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind panics on a nil Queryer, then binds
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// WithTx runs fn with a repo bound to the transaction
func WithTx[T any](ctx context.Context, tx TxRunner, b Binder[T], fn func(repo T) error) error {
	return tx.Tx(ctx, func(q Queryer) error { return fn(b.Bind(q)) })
}

// BeginHook runs first inside every transaction, e.g. to SET LOCAL a timeout
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps tx so hooks run before fn in the same transaction
func WithBeginHooks(tx TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return tx
	}
	return hookedTx{TxRunner: tx, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// StatementTimeout returns a hook that caps every statement in the transaction
func StatementTimeout(d time.Duration) BeginHook {
	ms := d.Milliseconds()
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms))
		return err
	}
}

// MustGuard panics when any configured backend fails its ping
func MustGuard(ctx context.Context, st interface{ Guard(context.Context) error }) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
