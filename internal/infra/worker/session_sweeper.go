package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes expired entries from a store that does not expire them
// on its own.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type SessionSweeper struct {
	store        Sweeper
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewSessionSweeper(store Sweeper, tickInterval time.Duration, logger *zap.Logger) *SessionSweeper {
	if tickInterval <= 0 {
		tickInterval = 5 * time.Minute
	}
	return &SessionSweeper{
		store:        store,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

// Start blocks until ctx is cancelled.
func (w *SessionSweeper) Start(ctx context.Context) {
	w.logger.Info("session sweeper started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SessionSweeper) sweep(ctx context.Context) {
	removed, err := w.store.Sweep(ctx)
	if err != nil {
		w.logger.Warn("session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		w.logger.Debug("expired sessions removed", zap.Int("count", removed))
	}
}
