package postgres

import (
	"context"

	"github.com/canteenhq/canteen/internal/canteen/store"

	"github.com/jackc/pgx/v5"
)

type txStore struct {
	tx pgx.Tx
}

func newTx(tx pgx.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit(context.Background()) }
func (t *txStore) Rollback() error { return t.tx.Rollback(context.Background()) }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer pool stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return pgx.ErrTxClosed
}

func (t *txStore) Users() store.Users         { return &usersRepo{q: t.tx} }
func (t *txStore) MenuItems() store.MenuItems { return &menuItemsRepo{q: t.tx} }
func (t *txStore) Orders() store.Orders       { return &ordersRepo{q: t.tx} }
func (t *txStore) Transfers() store.Transfers { return &transfersRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
