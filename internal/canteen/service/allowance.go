package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/slogx"
)

// DailyAllowance is the coin balance every account is topped up to on the
// first reconcile of a calendar day.
const DailyAllowance = 75

var ErrUserNotFound = errors.New("user not found")

// AllowanceService owns the daily coin top-up lifecycle. Reconcile is the only
// write path for the allowance; nothing resets balances on a schedule, clients
// trigger it on session start and foreground focus.
type AllowanceService struct {
	Store store.Store

	// Location is the time zone used for calendar-day comparison. Two
	// instants belong to the same allowance day iff they share a calendar
	// date in this zone.
	Location *time.Location

	// Now is overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *AllowanceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AllowanceService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Reconcile tops the user's balance up to DailyAllowance if their last reset
// happened on an earlier calendar day (or never). Within a day it is a
// read-only no-op, so calling it on every session start is safe. Returns the
// post-reconcile balance.
func (s *AllowanceService) Reconcile(ctx context.Context, userID string) (int, error) {
	log := slogx.FromContext(ctx)

	// 1. Load the account. A missing record is the caller's problem; the
	// allowance never fabricates accounts.
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		log.Error("failed to load user for reconcile", slog.Any("error", err))
		return 0, err
	}

	// 2. Same calendar day: nothing to do.
	now := s.now()
	if u.LastReset != nil && sameDay(*u.LastReset, now, s.location()) {
		return u.Coins, nil
	}

	// 3. New day: write the full allowance and stamp last_reset. The write is
	// unconditional (last-writer-wins on coins+last_reset as a pair) inside a
	// single-record transaction, so two racing reconciles both land on the
	// same end state.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().ResetAllowance(ctx, userID, DailyAllowance, now)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		log.Error("failed to reset allowance",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return 0, err
	}

	log.Debug("allowance reset",
		slog.String("user_id", userID),
		slog.Int("coins", DailyAllowance),
	)
	return DailyAllowance, nil
}

// sameDay reports whether a and b fall on the same calendar date in loc.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
