package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
)

// shutdownContext arms graceful termination: the returned context cancels on
// the first SIGINT or SIGTERM, letting the supervisor finish an in-progress
// rotation and flush the live log. The first signal also restores the default
// signal disposition, so a repeat signal terminates the process outright if
// shutdown hangs.
func shutdownContext(parent context.Context, logger *slog.Logger) context.Context {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-ctx.Done()
		stop()

		if parent.Err() == nil {
			logger.Info("shutting down, repeat the signal to force exit")
		}
	}()

	return ctx
}
