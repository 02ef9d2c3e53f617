package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server is a long-running listener with graceful shutdown.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Worker runs until its context is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}

// RunServe runs the operational server and the outbox worker until ctx is
// cancelled or one of them fails, then shuts the server down within
// shutdownTimeout.
func RunServe(
	ctx context.Context,
	logger *slog.Logger,
	server Server,
	worker Worker,
	shutdownTimeout time.Duration,
) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Start(groupCtx); err != nil {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		err := worker.Start(groupCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("outbox worker error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	})

	return group.Wait()
}
