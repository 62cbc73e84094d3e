package memory

import "context"

// Transactor is a pass-through ports.DBTransactor. The map repos are each
// internally synchronized; there is nothing to roll back.
type Transactor struct{}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
