// Package dbx is the database plumbing shared by the server repositories.
package dbx

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is what a repository needs to run queries. *sql.DB and *sql.Tx both
// satisfy it, so one repository serves plain calls and transactions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx runs fn inside a transaction and returns its result. The
// transaction commits when fn succeeds; an error or a panic from fn rolls
// it back, and the panic is re-raised.
//
//	sess, err := dbx.InTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*Session, error) {
//	    token, err := refreshtokens.NewPostgresRepository(tx).Take(ctx, raw)
//	    ...
//	})
func InTx[T any](ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) (T, error)) (res T, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err = fn(ctx, tx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		var zero T
		return zero, err
	}
	committed = true
	return res, nil
}

// WithTx is InTx for work that produces no value.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) error {
	_, err := InTx(ctx, db, func(ctx context.Context, tx DBTX) (struct{}, error) {
		return struct{}{}, fn(ctx, tx)
	})
	return err
}

// IsUniqueViolation reports whether err comes from postgres rejecting a
// duplicate key, e.g. a second account with the same email.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
