package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/openmotive/authd/internal/auth/store"
)

// HousekeepingService periodically removes rows no issuance path can reach
// anymore: expired grants, spent refresh tokens and soft-deleted access
// tokens past the audit retention window.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration // how long revoked/spent rows are kept for audit

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Interval defaults
// to 1 hour, retention to 90 days.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut the
// worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop shuts down the background worker, blocking until any in-progress
// cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletions. Each is independent; a failure in
// one does not stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-s.Retention)

	s.Logger.Info("starting housekeeping cleanup")

	if err := s.Store.Grants().DeleteExpiredGrants(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired grants", "error", err)
	}

	if err := s.Store.RefreshTokens().PurgeExpiredRefreshTokens(ctx, cutoff); err != nil {
		s.Logger.Error("failed to purge expired refresh tokens", "error", err)
	}

	if err := s.Store.AccessTokens().PurgeDeletedAccessTokens(ctx, cutoff); err != nil {
		s.Logger.Error("failed to purge deleted access tokens", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed")
}
