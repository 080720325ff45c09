package transport

import (
	"context"
	"sync/atomic"
	"time"

	"picoos/errcode"
	"picoos/x/shmring"
)

// DefaultWriteTimeout bounds how long a pipe Write waits for the peer to
// drain before reporting BufferOverflow.
const DefaultWriteTimeout = time.Second

// PipeEnd is one side of an in-memory duplex link built from two SPSC
// rings. It implements Port, io.Reader and io.Writer.
type PipeEnd struct {
	rx, tx   *shmring.Ring
	asserted atomic.Bool // this side's readiness signal, seen by the peer
	peer     *PipeEnd

	WriteTimeout time.Duration
}

// NewPipe returns two connected ends. Each direction buffers size bytes
// (power of two).
func NewPipe(size int) (*PipeEnd, *PipeEnd) {
	ab, ba := shmring.New(size), shmring.New(size)
	a := &PipeEnd{rx: ba, tx: ab, WriteTimeout: DefaultWriteTimeout}
	b := &PipeEnd{rx: ab, tx: ba, WriteTimeout: DefaultWriteTimeout}
	a.peer, b.peer = b, a
	return a, b
}

// Assert sets this end's readiness signal (the host raising DTR).
func (e *PipeEnd) Assert(on bool) { e.asserted.Store(on) }

// Ready reports the peer's readiness signal.
func (e *PipeEnd) Ready() bool { return e.peer.asserted.Load() }

// Close drops the link in both directions.
func (e *PipeEnd) Close() error {
	e.rx.Close()
	e.tx.Close()
	return nil
}

func (e *PipeEnd) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		closed := e.rx.Closed()
		if n := e.rx.ReadInto(p); n > 0 {
			return n, nil
		}
		if closed {
			return 0, errcode.TransportDisconnected
		}
		select {
		case <-e.rx.Readable():
		case <-e.rx.Done():
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (e *PipeEnd) Read(p []byte) (int, error) {
	return e.RecvSomeContext(context.Background(), p)
}

func (e *PipeEnd) Write(p []byte) (int, error) {
	written := 0
	var deadline <-chan time.Time
	for written < len(p) {
		if e.tx.Closed() {
			return written, errcode.TransportDisconnected
		}
		n := e.tx.WriteFrom(p[written:])
		written += n
		if written == len(p) {
			break
		}
		if n > 0 {
			deadline = nil
		}
		if deadline == nil {
			deadline = time.After(e.WriteTimeout)
		}
		select {
		case <-e.tx.Writable():
		case <-e.tx.Done():
		case <-deadline:
			return written, errcode.BufferOverflow
		}
	}
	return written, nil
}
