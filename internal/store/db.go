package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("record not found")

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is what writes receive: a *sqlx.Tx satisfies it, and so does *sqlx.DB
// for callers that do not need a transaction.
type Tx interface {
	Execer
	Getter
	Selecter
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nextNumber formats the next sequence value after the highest existing number
// sharing the prefix, e.g. INV-2025-0007 -> INV-2025-0008.
func nextNumber(ctx context.Context, q Getter, table, column, prefix string) (string, error) {
	var last sql.NullString
	query := fmt.Sprintf(`SELECT MAX(%s) FROM %s WHERE %s LIKE $1`, column, table, column)
	if err := q.GetContext(ctx, &last, query, prefix+"%"); err != nil {
		return "", err
	}
	seq := 0
	if last.Valid && len(last.String) > len(prefix) {
		_, _ = fmt.Sscanf(last.String[len(prefix):], "%d", &seq)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}
