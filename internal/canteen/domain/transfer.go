package domain

import "time"

// TransferState tracks the two-phase coin movement.
type TransferState string

const (
	// TransferDebited means the sender's debit committed but the receiver's
	// credit has not. A row left in this state is an orphaned debit that
	// support tooling must reconcile.
	TransferDebited TransferState = "debited"

	// TransferCompleted means both halves of the movement committed.
	TransferCompleted TransferState = "completed"
)

// Transfer is an append-only ledger entry for a peer-to-peer coin movement.
type Transfer struct {
	ID         string
	SenderID   string
	ReceiverID string
	Amount     int
	State      TransferState
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
