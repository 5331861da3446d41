// Package sqlite carries the transaction of a unit of work on the context,
// so repositories join it without taking a *sql.Tx parameter.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/garyjia/erp-forms/internal/application/port"
	"github.com/garyjia/erp-forms/pkg/database"
)

type txKey struct{}

// TxManager implements port.TransactionManager on top of database.DB.
type TxManager struct {
	db *database.DB
}

// NewTxManager creates a transaction manager for db
func NewTxManager(db *database.DB) *TxManager {
	return &TxManager{db: db}
}

// WithTransaction runs fn with a transaction on its context. A call made
// while ctx already carries a transaction joins it.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFrom(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// Executor is the query surface shared by *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ExecutorFor returns the transaction on ctx, or db outside one.
func ExecutorFor(ctx context.Context, db *sql.DB) Executor {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return db
}

var _ port.TransactionManager = (*TxManager)(nil)
