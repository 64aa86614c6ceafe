package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/idx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

var (
	ErrInvalidAmount     = errors.New("transfer amount must be a positive integer")
	ErrReceiverNotFound  = errors.New("receiver not found")
	ErrTransferToSelf    = errors.New("cannot transfer coins to yourself")
	ErrInsufficientFunds = errors.New("insufficient coins")

	// ErrPartialTransfer means the sender's debit committed but the
	// receiver's credit did not. The debited ledger row is left behind for
	// reconciliation; this error must never be reported as a plain failure.
	ErrPartialTransfer = errors.New("transfer debited but credit failed")

	// ErrTransferContended means every debit attempt lost its version race.
	// Nothing was written; the transfer is safe to retry.
	ErrTransferContended = errors.New("transfer contended")
)

// debitRetries bounds the compare-and-swap loop. Each retry re-reads the
// sender, so a loser of a version race converges in one round unless the
// balance itself keeps moving.
const debitRetries = 3

// TransferService moves coins between accounts. The movement is two-phase:
// debit + ledger row in one transaction, credit + ledger completion in a
// second. Coins are conserved in every reachable state; the only anomaly is a
// ledger row stuck in "debited", which reconciliation tooling surfaces.
type TransferService struct {
	Store store.Store
	Hub   *notify.Hub

	// senderGates serializes same-process transfers per sender so a
	// double-tap doesn't burn CAS retries. Cross-process races are handled
	// by the version check itself.
	senderGates sync.Map // sender id -> *sync.Mutex
}

// Transfer sends amount coins from senderID to the account addressed by
// receiverEmpCode. All preconditions are checked before any write; on any
// precondition failure nothing is persisted.
func (s *TransferService) Transfer(ctx context.Context, senderID, receiverEmpCode string, amount int) (domain.Transfer, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the amount.
	if amount <= 0 {
		return domain.Transfer{}, ErrInvalidAmount
	}

	// 2. Resolve the receiver by employee code.
	receiver, err := s.Store.Users().GetUserByEmpCode(ctx, receiverEmpCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Transfer{}, ErrReceiverNotFound
		}
		log.Error("failed to resolve transfer receiver", slog.Any("error", err))
		return domain.Transfer{}, err
	}

	// 3. Reject self-sends. Debit and credit against the same row would net
	// to zero at best and mint coins at worst.
	if receiver.ID == senderID {
		return domain.Transfer{}, ErrTransferToSelf
	}

	// 4. Serialize with other in-process transfers from the same sender.
	gate := s.gate(senderID)
	gate.Lock()
	defer gate.Unlock()

	// 5. Debit phase: CAS on the sender's balance_version, retried a bounded
	// number of times. The ledger row commits in the same transaction as the
	// debit so the movement is recorded the instant coins leave the sender.
	transfer := domain.Transfer{
		ID:         idx.New().String(),
		ReceiverID: receiver.ID,
		SenderID:   senderID,
		Amount:     amount,
		State:      domain.TransferDebited,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.debit(ctx, transfer); err != nil {
		return domain.Transfer{}, err
	}

	// 6. Credit phase: credit the receiver and complete the ledger row in one
	// transaction. If this fails the debit stands and the caller gets a
	// distinguishable partial-transfer error.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreditCoins(ctx, receiver.ID, amount); err != nil {
			return err
		}
		return tx.Transfers().MarkTransferCompleted(ctx, transfer.ID)
	})
	if err != nil {
		log.Error("transfer credit failed after debit",
			slog.String("transfer_id", transfer.ID),
			slog.String("sender_id", senderID),
			slog.String("receiver_id", receiver.ID),
			slog.Int("amount", amount),
			slog.Any("error", err),
		)
		return transfer, ErrPartialTransfer
	}
	transfer.State = domain.TransferCompleted

	log.Info("transfer completed",
		slog.String("transfer_id", transfer.ID),
		slog.String("sender_id", senderID),
		slog.String("receiver_id", receiver.ID),
		slog.Int("amount", amount),
	)

	if s.Hub != nil {
		s.Hub.Publish(notify.Event{Topic: notify.TopicBalances, Kind: "updated", Payload: transfer})
	}
	return transfer, nil
}

// debit runs the CAS loop for the sender's half of the movement.
func (s *TransferService) debit(ctx context.Context, t domain.Transfer) error {
	log := slogx.FromContext(ctx)

	for attempt := 0; attempt < debitRetries; attempt++ {
		sender, err := s.Store.Users().GetUserByID(ctx, t.SenderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if sender.Coins < t.Amount {
			return ErrInsufficientFunds
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().DebitCoins(ctx, t.SenderID, t.Amount, sender.BalanceVersion); err != nil {
				return err
			}
			return tx.Transfers().CreateTransfer(ctx, t)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrConflict) {
			// Version moved underneath us; re-read and retry. If the balance
			// no longer covers the amount the re-read fails fast above.
			log.Debug("debit version conflict, retrying",
				slog.String("sender_id", t.SenderID),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		return err
	}
	// Every attempt lost the version race with a balance that still covered
	// the amount. No write happened.
	return ErrTransferContended
}

// ListOrphaned returns ledger rows stuck in "debited": transfers whose credit
// never committed. Admin reconciliation tooling consumes this.
func (s *TransferService) ListOrphaned(ctx context.Context) ([]domain.Transfer, error) {
	return s.Store.Transfers().ListTransfersByState(ctx, domain.TransferDebited)
}

func (s *TransferService) gate(senderID string) *sync.Mutex {
	v, _ := s.senderGates.LoadOrStore(senderID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
