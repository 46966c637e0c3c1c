package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"roomstay/internal/infra/db"
	"roomstay/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTransactionBegin   = errs.New("failed to begin transaction")
	ErrTransactionCommit  = errs.New("failed to commit transaction")
	ErrMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// TxRunner runs a function inside one database transaction. Commands depend
// on this seam instead of a concrete pool so tests can substitute an
// in-memory runner that serializes callers the way the row lock does.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error
}

type PgxTxRunner struct {
	pool *pgxpool.Pool
}

func NewPgxTxRunner(pool *pgxpool.Pool) *PgxTxRunner {
	return &PgxTxRunner{pool: pool}
}

func (r *PgxTxRunner) RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error {
	return RunInTxWithRetry(ctx, r.pool, 3, fn)
}

func RunInTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx db.DBTX) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return errs.Mark(err, ErrTransactionBegin)
	}

	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			// Only log rollback errors for uncommitted transactions
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Mark(err, ErrTransactionCommit)
	}

	return nil
}

func RunInTxWithRetry(ctx context.Context, pool *pgxpool.Pool, maxRetries int, fn func(tx db.DBTX) error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := RunInTx(ctx, pool, fn)
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return err
		}

		if attempt == maxRetries {
			slog.Error("transaction failed after max retries",
				"attempts", attempt+1,
				"error", err)
			return errs.Mark(err, ErrMaxRetriesExceeded)
		}

		waitTime := time.Duration(attempt+1) * 100 * time.Millisecond
		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_time", waitTime,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return ErrMaxRetriesExceeded
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	// PostgreSQL error codes for retryable conditions:
	// 40001: serialization_failure
	// 40P01: deadlock_detected
	switch pgErr.Code {
	case "40001", "40P01":
		return true
	default:
		return false
	}
}

// IsTimeout reports whether the store aborted the transaction on a
// statement or lock timeout. Callers surface this distinctly from a
// conflict so clients know to retry the same dates.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57014", "55P03":
			return true
		}
	}
	return false
}
