package types

import (
	"context"
	"database/sql"
)

// Querier exposes only methods for running SQL queries. It's satisfied by both
// *sql.DB and *sql.Tx, so the same code can run inside or outside of a
// transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner is a Querier that can also start transactions.
type TxBeginner interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
