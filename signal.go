package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// exitInterrupted is the conventional status for a process killed by SIGINT.
const exitInterrupted = 130

// interruptContext returns a context canceled by the first SIGINT or SIGTERM.
// Cancellation aborts in-flight API requests only; detached session work
// (validation passes, store writes) still completes before App.Close returns.
// A second signal exits immediately. The returned stop releases the handlers.
func interruptContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, unregister := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}

		select {
		case <-done:
			return
		default:
		}

		if parent.Err() != nil {
			return
		}

		logger.Info("interrupted, cancelling requests")

		again := make(chan os.Signal, 1)
		signal.Notify(again, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(again)

		select {
		case sig := <-again:
			logger.Warn("second interrupt, exiting without waiting for the session",
				slog.String("signal", sig.String()),
			)
			os.Exit(exitInterrupted)
		case <-done:
		}
	}()

	stop := func() {
		close(done)
		unregister()
	}

	return ctx, stop
}
