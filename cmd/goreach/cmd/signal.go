package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandler creates a context that is canceled on SIGTERM or SIGINT,
// and calls the provided callback function when a signal is received.
// The returned stop function releases the signal subscription.
func setupSignalHandler(parent context.Context, callback func(os.Signal)) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigChan:
			// Received shutdown signal, call callback then cancel
			if callback != nil {
				callback(sig)
			}
			cancel()
		case <-ctx.Done():
			// Context was cancelled elsewhere
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
