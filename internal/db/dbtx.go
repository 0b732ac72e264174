package db

import (
	"context"
	"database/sql"
)

// DBTX is what the batch and order repositories query through. Both *sql.DB
// (reads outside a unit of work) and *sql.Tx (inside WithinTx) satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
