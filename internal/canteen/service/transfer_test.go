package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"

	"github.com/stretchr/testify/require"
)

// faultStore wraps a real store and injects failures into the user writes
// that run inside transactions, so the window between the two transfer phases
// can be driven deterministically.
type faultStore struct {
	store.Store
	failCredit bool
	failDebit  bool
}

func (f *faultStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return f.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&faultTx{storeTx: tx, fs: f})
	})
}

// storeTx aliases store.Tx so embedding it below does not create a field
// named Tx, which would shadow the Tx method the interface requires.
type storeTx = store.Tx

type faultTx struct {
	storeTx
	fs *faultStore
}

func (t *faultTx) Users() store.Users {
	return &faultUsers{Users: t.storeTx.Users(), fs: t.fs}
}

type faultUsers struct {
	store.Users
	fs *faultStore
}

func (u *faultUsers) CreditCoins(ctx context.Context, userID string, amount int) error {
	if u.fs.failCredit {
		return errors.New("disk I/O error")
	}
	return u.Users.CreditCoins(ctx, userID, amount)
}

func (u *faultUsers) DebitCoins(ctx context.Context, userID string, amount int, expectedVersion int64) error {
	if u.fs.failDebit {
		return store.ErrConflict
	}
	return u.Users.DebitCoins(ctx, userID, amount, expectedVersion)
}

func TestTransferMovesCoins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	sender := seedUser(t, st, "EMP100", 75)
	receiver := seedUser(t, st, "EMP101", 75)

	svc := &TransferService{Store: st}
	tr, err := svc.Transfer(ctx, sender.ID, receiver.EmpCode, 30)
	require.NoError(t, err)
	require.Equal(t, domain.TransferCompleted, tr.State)

	gotSender, err := st.Users().GetUserByID(ctx, sender.ID)
	require.NoError(t, err)
	gotReceiver, err := st.Users().GetUserByID(ctx, receiver.ID)
	require.NoError(t, err)
	require.Equal(t, 45, gotSender.Coins)
	require.Equal(t, 105, gotReceiver.Coins)

	// Ledger records exactly one completed movement.
	completed, err := st.Transfers().ListTransfersByState(ctx, domain.TransferCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, tr.ID, completed[0].ID)
}

func TestTransferPreconditionsShortCircuit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	sender := seedUser(t, st, "EMP110", 20)
	receiver := seedUser(t, st, "EMP111", 0)

	svc := &TransferService{Store: st}

	_, err := svc.Transfer(ctx, sender.ID, receiver.EmpCode, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Transfer(ctx, sender.ID, receiver.EmpCode, -5)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Transfer(ctx, sender.ID, "NOPE", 10)
	require.ErrorIs(t, err, ErrReceiverNotFound)

	_, err = svc.Transfer(ctx, sender.ID, sender.EmpCode, 10)
	require.ErrorIs(t, err, ErrTransferToSelf)

	_, err = svc.Transfer(ctx, sender.ID, receiver.EmpCode, 21)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// No failure above wrote anything.
	gotSender, err := st.Users().GetUserByID(ctx, sender.ID)
	require.NoError(t, err)
	gotReceiver, err := st.Users().GetUserByID(ctx, receiver.ID)
	require.NoError(t, err)
	require.Equal(t, 20, gotSender.Coins)
	require.Equal(t, 0, gotReceiver.Coins)

	debited, err := st.Transfers().ListTransfersByState(ctx, domain.TransferDebited)
	require.NoError(t, err)
	require.Empty(t, debited)
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	sender := seedUser(t, st, "EMP120", 50)
	receiver := seedUser(t, st, "EMP121", 0)

	// Two concurrent 40-coin sends against a 50-coin balance: exactly one
	// must win, and total coins in the system must be conserved.
	svc := &TransferService{Store: st}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transfer(ctx, sender.ID, receiver.EmpCode, 40)
		}(i)
	}
	wg.Wait()

	var succeeded, overdrawn int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrInsufficientFunds)
			overdrawn++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, overdrawn)

	gotSender, err := st.Users().GetUserByID(ctx, sender.ID)
	require.NoError(t, err)
	gotReceiver, err := st.Users().GetUserByID(ctx, receiver.ID)
	require.NoError(t, err)
	require.Equal(t, 10, gotSender.Coins)
	require.Equal(t, 40, gotReceiver.Coins)
	require.Equal(t, 50, gotSender.Coins+gotReceiver.Coins)
}

func TestTransferCreditFailureLeavesDebitRecorded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	sender := seedUser(t, st, "EMP140", 75)
	receiver := seedUser(t, st, "EMP141", 0)

	svc := &TransferService{Store: &faultStore{Store: st, failCredit: true}}
	tr, err := svc.Transfer(ctx, sender.ID, receiver.EmpCode, 25)
	require.ErrorIs(t, err, ErrPartialTransfer)
	require.Equal(t, domain.TransferDebited, tr.State)

	// The debit stands; the receiver saw nothing.
	gotSender, err := st.Users().GetUserByID(ctx, sender.ID)
	require.NoError(t, err)
	gotReceiver, err := st.Users().GetUserByID(ctx, receiver.ID)
	require.NoError(t, err)
	require.Equal(t, 50, gotSender.Coins)
	require.Equal(t, 0, gotReceiver.Coins)

	// The ledger row is stuck in debited, visible to reconciliation.
	orphans, err := svc.ListOrphaned(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	require.Equal(t, tr.ID, orphans[0].ID)
}

func TestTransferExhaustedRetriesWriteNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	sender := seedUser(t, st, "EMP150", 75)
	receiver := seedUser(t, st, "EMP151", 0)

	// Every debit attempt loses its version race.
	svc := &TransferService{Store: &faultStore{Store: st, failDebit: true}}
	_, err := svc.Transfer(ctx, sender.ID, receiver.EmpCode, 10)
	require.ErrorIs(t, err, ErrTransferContended)

	// The rolled-back attempts left no trace.
	gotSender, err := st.Users().GetUserByID(ctx, sender.ID)
	require.NoError(t, err)
	require.Equal(t, 75, gotSender.Coins)

	debited, err := st.Transfers().ListTransfersByState(ctx, domain.TransferDebited)
	require.NoError(t, err)
	require.Empty(t, debited)
}

func TestListOrphanedSurfacesStuckDebits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	sender := seedUser(t, st, "EMP130", 75)
	receiver := seedUser(t, st, "EMP131", 0)

	// Simulate a crash between the two phases: a debited ledger row whose
	// credit never ran.
	orphan := domain.Transfer{
		ID:         "stuck-transfer",
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Amount:     25,
		State:      domain.TransferDebited,
	}
	require.NoError(t, st.Transfers().CreateTransfer(ctx, orphan))

	svc := &TransferService{Store: st}
	orphans, err := svc.ListOrphaned(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	require.Equal(t, "stuck-transfer", orphans[0].ID)
	require.Equal(t, domain.TransferDebited, orphans[0].State)
}
