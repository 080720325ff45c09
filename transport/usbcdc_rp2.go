//go:build rp2040 || rp2350

package transport

import (
	"context"
	"machine"
	"time"

	"picoos/errcode"
)

type cdc interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	DTR() bool
}

// USB is the CDC-ACM serial port exposed by the TinyGo USB stack. Readiness
// follows the host's DTR line.
type USB struct {
	s    cdc
	poll time.Duration
}

// NewUSB wraps machine.Serial. It fails with Unsupported when the build's
// default serial is not the USB CDC device.
func NewUSB(poll time.Duration) (*USB, error) {
	s, ok := machine.Serial.(cdc)
	if !ok {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "usb", Msg: "serial is not usb cdc"}
	}
	if poll <= 0 {
		poll = time.Millisecond
	}
	return &USB{s: s, poll: poll}, nil
}

func (u *USB) Ready() bool { return u.s.DTR() }

func (u *USB) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		if !u.s.DTR() {
			return 0, errcode.TransportDisconnected
		}
		if n := u.s.Buffered(); n > 0 {
			if n > len(p) {
				n = len(p)
			}
			for i := 0; i < n; i++ {
				b, err := u.s.ReadByte()
				if err != nil {
					return i, nil
				}
				p[i] = b
			}
			return n, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(u.poll):
		}
	}
}

func (u *USB) Write(p []byte) (int, error) {
	if !u.s.DTR() {
		return 0, errcode.TransportDisconnected
	}
	n, err := u.s.Write(p)
	return n, errcode.Wrap(errcode.BufferOverflow, "usb write", err)
}
