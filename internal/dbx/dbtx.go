// Package dbx provides the database plumbing shared by repositories: a
// minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx, and the
// unit-of-work helper every mutating use case runs inside.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	// ReadOnly is the scope for multi-statement queries that must observe a
	// single snapshot.
	ReadOnly = &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}

	// ReadWrite is the scope for every mutating use case.
	ReadWrite = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
)

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// The error returned by fn is returned unchanged so callers can still match
// typed failures with errors.Is:
//
//	err := dbx.WithTx(ctx, db, dbx.ReadWrite, func(ctx context.Context, tx dbx.DBTX) error {
//	    if exists {
//	        return common.ErrDuplicatedMembers // rolled back
//	    }
//	    _, err := tx.ExecContext(ctx, "INSERT ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
