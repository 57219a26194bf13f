package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// txKey is the context key under which an open transaction travels.
type txKey struct{}

// executor is the subset of *sql.DB and *sql.Tx the repositories use.
// Resolving it through the context lets the same repository methods
// run inside or outside a transaction without separate Tx variants.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exec returns the transaction from ctx when present, the pool
// otherwise.
func exec(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// duplicateKey reports whether err is the MySQL duplicate-entry error
// (1062) raised when an insert hits a unique index.
func duplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// SQLTxRunner implements TxRunner over a *sql.DB.
type SQLTxRunner struct {
	DB *sql.DB
}

// NewSQLTxRunner returns a TxRunner bound to the given pool.
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner { return &SQLTxRunner{DB: db} }

// RunInTx opens a transaction, stores it in the callback's context
// and commits when the callback returns nil. Any error or panic rolls
// the transaction back; the connection is released on all exit paths.
func (r *SQLTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
