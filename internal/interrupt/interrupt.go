// Package interrupt bridges OS signals and per-cube deadlines into a
// context.Context the solver already checks on every decision, replacing
// the reference implementation's single global raw pointer used by its
// C-style SIGINT handler (§9 design note).
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Notify returns a context canceled when the process receives any of
// sigs (SIGINT, SIGTERM by default if sigs is empty), and a stop function
// the caller must call to release the underlying signal.Notify
// registration once done.
func Notify(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return signal.NotifyContext(parent, sigs...)
}

// Deadline wraps ctx with a per-run timeout, mirroring cadicalSMS.hpp's
// TimeoutTerminator. A non-positive d disables the deadline and returns
// ctx unchanged (with a no-op cancel).
func Deadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
