package rememberme

import (
	"context"
	"time"

	"github.com/dmitrymomot/rememberme/core/logger"
)

// RunSweeper deletes expired records every interval until ctx is cancelled.
// Sweep failures are logged and retried on the next tick. Always returns nil
// so it can run inside an errgroup without tearing the group down.
func (l *Lifecycle) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := l.Sweep(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				l.logger.WarnContext(ctx, "remember-me sweep failed",
					logger.Component("sweeper"),
					logger.Error(err),
				)
				continue
			}
			if n > 0 {
				l.logger.InfoContext(ctx, "expired remember-me tokens removed",
					logger.Component("sweeper"),
					logger.Count("deleted", int(n)),
				)
			}
		}
	}
}

// StartSweeper runs RunSweeper in a goroutine and returns a function that
// stops it and waits for it to exit.
func (l *Lifecycle) StartSweeper(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = l.RunSweeper(ctx, interval)
	}()

	return func() {
		cancel()
		<-done
	}
}
