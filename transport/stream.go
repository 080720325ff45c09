package transport

import (
	"context"
	"io"

	"picoos/errcode"
	"picoos/x/shmring"
)

// ErrEOF is returned by a Stream once its reader is exhausted. Unlike a
// dropped USB link it never comes back. Its code is TransportDisconnected.
var ErrEOF error = &errcode.E{C: errcode.TransportDisconnected, Op: "stream", Msg: "input closed"}

// Stream adapts a blocking reader/writer pair (stdin/stdout, a host serial
// device) to Port. A background goroutine moves input into a ring; EOF or a
// read error on the reader drops the link.
type Stream struct {
	w  io.Writer
	rx *shmring.Ring
}

// NewStream starts pumping r.
func NewStream(r io.Reader, w io.Writer) *Stream {
	s := &Stream{w: w, rx: shmring.New(1024)}
	go s.pump(r)
	return s
}

func (s *Stream) pump(r io.Reader) {
	defer s.rx.Close()
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for p := buf[:n]; len(p) > 0; {
			m := s.rx.WriteFrom(p)
			p = p[m:]
			if len(p) > 0 {
				select {
				case <-s.rx.Writable():
				case <-s.rx.Done():
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// Ready stays true while input is buffered, so a short script piped in is
// served in full before the stream reports itself gone.
func (s *Stream) Ready() bool { return !s.rx.Closed() || s.rx.Available() > 0 }

func (s *Stream) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	for {
		closed := s.rx.Closed()
		if n := s.rx.ReadInto(p); n > 0 {
			return n, nil
		}
		if closed {
			return 0, ErrEOF
		}
		select {
		case <-s.rx.Readable():
		case <-s.rx.Done():
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (s *Stream) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	return n, errcode.Wrap(errcode.TransportDisconnected, "stream write", err)
}
