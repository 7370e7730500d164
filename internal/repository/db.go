package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DB is the slice of pgxpool.Pool the services need: starting transactions.
// Narrowing it keeps services testable without a live database.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}
