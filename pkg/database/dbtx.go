package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal query interface shared by *pgxpool.Pool, pgx.Tx, and
// pgxmock pools. Repositories depend on it so the same code path runs against
// a live pool, inside an open transaction, or under a mock in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner extends DBTX with transaction control for callers that own
// transaction boundaries (transaction managers, the migration runner).
// Satisfied by *pgxpool.Pool and pgxmock pools.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}
