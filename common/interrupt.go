package common

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Interrupted relays interrupt and termination signals until passed to signal.Stop.
// SIGKILL is not included: it cannot be caught.
func Interrupted() chan os.Signal {
	interrupt := make(chan os.Signal, 2)
	signal.Notify(interrupt,
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGQUIT,
	)
	return interrupt
}

// InterruptContext returns a child of parent canceled on the first signal,
// so daemons can close their sessions and flush exporters.
// A second signal calls exit.
func InterruptContext(parent context.Context, exit func(code int)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	interrupt := Interrupted()
	go func() {
		defer signal.Stop(interrupt)
		for i := 0; i < 2; i++ {
			select {
			case sig := <-interrupt:
				slog.Warn("Received signal", "signal", sig, "i", i)
				if i == 0 {
					cancel()
					continue
				}
				slog.Error("Force exit")
				exit(1)
			case <-parent.Done():
				return
			}
		}
	}()
	return ctx, cancel
}
