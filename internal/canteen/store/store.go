package store

import (
	"context"
	"errors"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by compare-and-swap writes when the record's
	// balance_version moved underneath the caller, or when the guarded
	// condition (e.g. coins >= amount) no longer holds. Callers re-read and
	// retry or fail.
	ErrConflict = errors.New("store: version conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	MenuItems() MenuItems
	Orders() Orders
	Transfers() Transfers

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during sign-in.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByEmpCode resolves a transfer address (unique emp_code lookup).
	GetUserByEmpCode(ctx context.Context, empCode string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// DeleteUser removes the account record. Orders survive; they are
	// denormalized at submission time.
	DeleteUser(ctx context.Context, userID string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// ResetAllowance sets coins and last_reset unconditionally (last-writer-wins
	// on the pair) and bumps balance_version.
	ResetAllowance(ctx context.Context, userID string, coins int, at time.Time) error

	// DebitCoins subtracts amount from the user's balance iff the stored
	// balance_version equals expectedVersion and the balance covers the
	// amount. Returns ErrConflict otherwise; no partial write occurs.
	DebitCoins(ctx context.Context, userID string, amount int, expectedVersion int64) error

	// CreditCoins adds amount to the user's balance and bumps balance_version.
	CreditCoins(ctx context.Context, userID string, amount int) error
}

type MenuItems interface {
	// GetMenuItemByID returns a menu item by id.
	GetMenuItemByID(ctx context.Context, id string) (domain.MenuItem, error)

	// ListMenuItems returns all items ordered by creation date (oldest first).
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)

	// CreateMenuItem inserts a new item (id is ULID).
	CreateMenuItem(ctx context.Context, m domain.MenuItem) error

	// UpdateMenuItem replaces the display fields and price.
	UpdateMenuItem(ctx context.Context, m domain.MenuItem) error

	// DeleteMenuItem removes an item. Historical orders are untouched.
	DeleteMenuItem(ctx context.Context, id string) error
}

type Orders interface {
	// CreateOrder inserts an order and its denormalized line items.
	CreateOrder(ctx context.Context, o domain.Order) error

	// GetOrderByID returns an order including its line items.
	GetOrderByID(ctx context.Context, id string) (domain.Order, error)

	// ListOrders returns all orders, newest first, including line items.
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type Transfers interface {
	// CreateTransfer appends a ledger entry (normally in state "debited",
	// within the same transaction as the sender's debit).
	CreateTransfer(ctx context.Context, t domain.Transfer) error

	// MarkTransferCompleted flips a ledger entry to "completed" once the
	// receiver's credit has committed.
	MarkTransferCompleted(ctx context.Context, id string) error

	// ListTransfersByState returns ledger entries in the given state, oldest
	// first. Used by reconciliation to find orphaned debits.
	ListTransfersByState(ctx context.Context, state domain.TransferState) ([]domain.Transfer, error)
}
