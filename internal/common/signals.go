package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InitShutdownSignals returns a context cancelled by the first SIGINT or
// SIGTERM. Later signals get their default behaviour.
func InitShutdownSignals(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			cancel()
			signal.Reset()
		case <-ctx.Done():
		}
	}()
	return ctx
}
