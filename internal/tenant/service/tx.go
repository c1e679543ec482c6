package service

import (
	"context"
	"sync"

	dErrors "gymdesk/pkg/domain-errors"
)

// StoreTx provides a transactional boundary for store mutations. The Postgres backing uses
// tx.SQLRunner, which carries a *sql.Tx in ctx; stores called with that ctx join it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// inMemoryStoreTx serializes units of work in-process. It gives no rollback: a failing fn
// leaves whatever writes it already made.
type inMemoryStoreTx struct {
	mu sync.Mutex
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
