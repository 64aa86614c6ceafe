package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"
)

// HousekeepingService periodically scans the transfers ledger for rows stuck
// in "debited" — transfers whose credit never committed. It cannot repair
// them automatically (the right fix needs a human decision), so it logs each
// one loudly for manual reconciliation.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// OrphanAge is how old a debited row must be before it is flagged.
	// Younger rows are usually transfers still in flight.
	OrphanAge time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 5 minutes; OrphanAge
// defaults to 1 minute.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		OrphanAge: time.Minute,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker that periodically scans the ledger.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress scan.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Scan immediately on startup
	s.scan()

	for {
		select {
		case <-ticker.C:
			s.scan()
		case <-s.stopCh:
			return
		}
	}
}

// scan flags orphaned debits. Each flagged row is an account that paid coins
// the receiver never got; the log line carries everything support needs.
func (s *HousekeepingService) scan() {
	ctx := context.Background()

	orphans, err := s.Store.Transfers().ListTransfersByState(ctx, domain.TransferDebited)
	if err != nil {
		s.Logger.Error("failed to scan transfers ledger", "error", err)
		return
	}

	cutoff := time.Now().UTC().Add(-s.OrphanAge)
	flagged := 0
	for _, t := range orphans {
		if t.CreatedAt.After(cutoff) {
			continue // likely still in flight
		}
		flagged++
		s.Logger.Error("orphaned transfer debit needs manual reconciliation",
			"transfer_id", t.ID,
			"sender_id", t.SenderID,
			"receiver_id", t.ReceiverID,
			"amount", t.Amount,
			"created_at", t.CreatedAt,
		)
	}
	if flagged == 0 {
		s.Logger.Debug("transfers ledger clean")
	}
}
