package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/five82/tinsel/internal/scene"
)

const defaultCheckEvery = time.Minute

// Checker runs one due-check.
type Checker interface {
	Check(ctx context.Context) (int, error)
}

// StartPoller launches a background goroutine that runs a due-check right away
// and then at a fixed cadence. The returned channel is closed once the
// goroutine exits after ctx is cancelled.
func StartPoller(ctx context.Context, checker Checker, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultCheckEvery
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			check(ctx, checker, logger)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}

func check(ctx context.Context, checker Checker, logger *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	added, err := checker.Check(ctx)
	switch {
	case errors.Is(err, scene.ErrBusy):
		logger.Debug("due-check skipped, update in progress")
	case err != nil:
		logger.Warn("due-check failed", zap.Error(err))
	case added > 0:
		logger.Info("due-check added elements", zap.Int("added", added))
	}
}
