package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReconcileResetsOnNewDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP001", 0)

	// Never reset: first reconcile grants the full allowance.
	svc := &AllowanceService{Store: st, Location: time.UTC}
	balance, err := svc.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, DailyAllowance, balance)

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, DailyAllowance, got.Coins)
	require.NotNil(t, got.LastReset)
}

func TestReconcileIsIdempotentWithinADay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP002", 0)

	svc := &AllowanceService{Store: st, Location: time.UTC}
	_, err := svc.Reconcile(ctx, u.ID)
	require.NoError(t, err)

	// Spend some coins, then reconcile again the same day: the spent balance
	// must survive.
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, st.Users().DebitCoins(ctx, u.ID, 30, got.BalanceVersion))

	balance, err := svc.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, DailyAllowance-30, balance)
}

func TestReconcileCrossesCalendarDayBoundary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	u := seedUser(t, st, "EMP003", 0)

	// Fix "now" to 23:59 and reconcile, then advance two minutes past
	// midnight. Less than a day elapsed but the calendar date changed, so a
	// fresh allowance is due.
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	svc := &AllowanceService{Store: st, Location: time.UTC, Now: func() time.Time { return now }}

	_, err := svc.Reconcile(ctx, u.ID)
	require.NoError(t, err)

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, st.Users().DebitCoins(ctx, u.ID, 75, got.BalanceVersion))

	now = now.Add(2 * time.Minute) // 00:01 next day
	balance, err := svc.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, DailyAllowance, balance)
}

func TestReconcileUnknownUser(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &AllowanceService{Store: st, Location: time.UTC}

	_, err := svc.Reconcile(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrUserNotFound)
}
