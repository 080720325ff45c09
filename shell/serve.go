package shell

import (
	"context"
	"errors"

	"picoos/errcode"
	"picoos/transport"
	"picoos/x/fmtx"
)

// Serve runs sessions back to back. After a dropped link it resets the line
// state, waits ReconnectDelay and waits for the next connection. It returns
// on ErrHalted, ctx cancellation, a stream that reached EOF, or any error
// that is not a link drop (such as the port being busy).
func (s *Shell) Serve(ctx context.Context) error {
	for {
		err := s.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrHalted) || errors.Is(err, transport.ErrEOF) || !retryable(err) {
			return err
		}
		fmtx.Println("[shell] session ended:", err)
		s.Reset()
		if err := sleep(ctx, s.cfg.ReconnectDelay); err != nil {
			return err
		}
	}
}

func retryable(err error) bool {
	switch errcode.Of(err) {
	case errcode.TransportDisconnected, errcode.BufferOverflow:
		return true
	}
	return false
}
