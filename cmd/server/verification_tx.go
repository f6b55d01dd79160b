package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "verigate/pkg/domain-errors"
	txcontext "verigate/pkg/platform/tx"
)

const defaultVerificationTxTimeout = 5 * time.Second

// verificationPostgresTx runs service units of work in one SQL transaction.
// Stores pick the transaction up from the context.
type verificationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newVerificationPostgresTx(db *sql.DB) *verificationPostgresTx {
	return &verificationPostgresTx{db: db, timeout: defaultVerificationTxTimeout}
}

func (t *verificationPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}
