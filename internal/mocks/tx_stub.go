package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxStub satisfies pgx.Tx for service and job tests. Repositories are
// mocked separately, so the stub only has to track commit/rollback.
type TxStub struct {
	Committed  bool
	RolledBack bool
	CommitErr  error
}

func NewTxStub() *TxStub {
	return &TxStub{}
}

func (t *TxStub) Begin(ctx context.Context) (pgx.Tx, error) {
	return t, nil
}

func (t *TxStub) Commit(ctx context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *TxStub) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

func (t *TxStub) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *TxStub) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (t *TxStub) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (t *TxStub) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *TxStub) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *TxStub) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *TxStub) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *TxStub) Conn() *pgx.Conn {
	return nil
}

// DBStub hands out transaction stubs.
type DBStub struct {
	Txs      []*TxStub
	BeginErr error
}

func NewDBStub() *DBStub {
	return &DBStub{}
}

func (d *DBStub) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}
	tx := NewTxStub()
	d.Txs = append(d.Txs, tx)
	return tx, nil
}
