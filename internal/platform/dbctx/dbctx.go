package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the ambient unit of work for a single storage operation.
// Tx is nil outside a transaction; repos fall back to their root handle.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}
