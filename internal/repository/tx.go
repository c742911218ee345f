package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TxFunc is the body of a transaction. Every read and write it performs goes through exec.
type TxFunc func(exec sqlx.ExtContext) error

// TxRunner runs a TxFunc inside one database transaction, retrying serialization
// conflicts with exponential backoff. Any other error aborts without retry.
type TxRunner struct {
	db      *sqlx.DB
	retries int
	logger  *zap.Logger
}

// NewTxRunner constructs a transaction runner. retries is the number of extra attempts after the first.
func NewTxRunner(db *sqlx.DB, retries int, logger *zap.Logger) *TxRunner {
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxRunner{db: db, retries: retries, logger: logger}
}

// WithTx commits when fn returns nil and rolls back otherwise.
func (r *TxRunner) WithTx(ctx context.Context, fn TxFunc) error {
	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		err := r.once(ctx, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if IsRetryable(err) {
			r.logger.Warn("transaction conflict, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(r.retries+1)),
	)
	return err
}

// Ping checks store connectivity.
func (r *TxRunner) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *TxRunner) once(ctx context.Context, fn TxFunc) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
