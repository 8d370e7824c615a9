package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/questboard/internal/questboard/store"
)

const defaultHousekeepingInterval = time.Hour

// Housekeeper prunes refresh tokens that can no longer be redeemed.
type Housekeeper struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run prunes once straight away and then every Interval until ctx is done.
func (h *Housekeeper) Run(ctx context.Context) {
	interval := h.Interval
	if interval <= 0 {
		interval = defaultHousekeepingInterval
	}
	h.Logger.Info("housekeeping started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := h.PruneTokens(ctx); err != nil && ctx.Err() == nil {
			h.Logger.Error("pruning refresh tokens failed", "error", err)
		}

		select {
		case <-ctx.Done():
			h.Logger.Info("housekeeping stopped")
			return
		case <-ticker.C:
		}
	}
}

// PruneTokens deletes refresh tokens that are expired or revoked and
// reports how many went.
func (h *Housekeeper) PruneTokens(ctx context.Context) (int64, error) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	n, err := h.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		h.Logger.Info("refresh tokens pruned", "count", n)
	}
	return n, nil
}
