package db

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"accounting/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const maxAttempts = 5

type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

type SQLXTxRunner struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewTxRunner(db *sqlx.DB, log *zap.Logger) SQLXTxRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return SQLXTxRunner{db: db, log: log}
}

func (r SQLXTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return WithTx(ctx, r.db, r.log, fn)
}

func Connect(databaseURL string, pool config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return db, nil
}

// WithTx runs fn in a serializable transaction, retrying the whole closure on
// serialization failures and deadlocks.
func WithTx(ctx context.Context, db *sqlx.DB, log *zap.Logger, fn func(*sqlx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			lastErr = err
		} else if err := tx.Commit(); err != nil {
			lastErr = err
		} else {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == maxAttempts {
			return lastErr
		}
		log.Warn("retrying transaction", zap.Int("attempt", attempt), zap.Error(lastErr))
		if err := sleepWithBackoff(ctx, attempt); err != nil {
			return err
		}
	}
	return lastErr
}

func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func sleepWithBackoff(ctx context.Context, attempt int) error {
	base := 20 * time.Millisecond
	backoff := time.Duration(attempt*attempt) * base
	jitter := time.Duration(rand.Int63n(int64(10 * time.Millisecond)))
	timer := time.NewTimer(backoff + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
