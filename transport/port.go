// Package transport provides the byte-stream ports the shell runs over.
package transport

import (
	"context"
	"time"
)

// Port is a bidirectional byte stream with a host-side readiness signal
// (DTR on USB CDC). RecvSomeContext blocks until at least one byte is
// available, the context ends, or the link drops.
//
// Errors are errcode codes: TransportDisconnected when the peer went away,
// BufferOverflow when output could not be delivered.
type Port interface {
	Ready() bool
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
	Write(p []byte) (int, error)
}

// WaitReady polls p.Ready every poll interval until it reports true. There
// is no timeout; only ctx ends the wait.
func WaitReady(ctx context.Context, p Port, poll time.Duration) error {
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	if p.Ready() {
		return nil
	}
	t := time.NewTicker(poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if p.Ready() {
				return nil
			}
		}
	}
}
