package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/repository"
	"log/slog"
	"time"
)

// Run frees expired snapshots every SweepInterval until ctx is done. It does
// nothing when the interval is zero or the repository expires snapshots on
// its own, as Redis does.
func (h *Hub) Run(ctx context.Context) {
	sweeper, ok := h.repo.(repository.Sweeper)
	if !ok || h.opts.SweepInterval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(h.opts.SweepInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Session sweeper started", "interval", h.opts.SweepInterval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Session sweeper stopping.")
			return
		case now := <-ticker.C:
			h.sweep(ctx, sweeper, now)
		}
	}
}

func (h *Hub) sweep(ctx context.Context, sweeper repository.Sweeper, now time.Time) int {
	n := sweeper.DeleteExpired(ctx, now)
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
	return n
}
