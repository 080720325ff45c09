// Package shell runs the interactive line editor on top of a transport
// port and renders command results back to it.
package shell

import (
	"context"
	"errors"
	"time"

	"picoos/command"
	"picoos/device"
	"picoos/errcode"
	"picoos/transport"
	"picoos/x/fmtx"
)

// MaxLine is the line buffer size. Printable input past it is dropped.
const MaxLine = 64

const newline = "\r\n"

// ErrHalted is returned by Run after a reboot or bootloader halt was applied.
var ErrHalted = errors.New("shell: halted")

// Executor dispatches one line. *command.Registry implements it.
type Executor interface {
	Execute(line string) command.Result
}

type Config struct {
	Banner         string
	Prompt         string
	Echo           bool
	ChunkSize      int
	ChunkDelay     time.Duration
	ReadyPoll      time.Duration
	ReconnectDelay time.Duration
	HaltGrace      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Banner:         "Welcome to Pico OS" + newline + "Type 'help' for a list of commands",
		Prompt:         "> ",
		Echo:           true,
		ChunkSize:      64,
		ChunkDelay:     10 * time.Millisecond,
		ReadyPoll:      10 * time.Millisecond,
		ReconnectDelay: time.Second,
		HaltGrace:      time.Second,
	}
}

// Shell owns the line buffer for one connection at a time.
type Shell struct {
	dev  *device.Context
	exec Executor
	cfg  Config

	buf [MaxLine]byte
	pos int
	out []byte
}

func New(dev *device.Context, exec Executor, cfg Config) *Shell {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 64
	}
	return &Shell{dev: dev, exec: exec, cfg: cfg, out: make([]byte, 0, 256)}
}

// Reset drops any partial line and pending output.
func (s *Shell) Reset() {
	s.pos = 0
	s.out = s.out[:0]
}

// Run serves one connection: it waits for the host to become ready, sends
// the banner, then processes input until the transport fails, ctx ends, or
// a halt is applied (ErrHalted). The serial port stays borrowed for the
// whole session.
func (s *Shell) Run(ctx context.Context) error {
	port, release, err := s.dev.Serial.Borrow()
	if err != nil {
		return err
	}
	defer release()

	if err := transport.WaitReady(ctx, port, s.cfg.ReadyPoll); err != nil {
		return err
	}
	s.Reset()
	s.out = append(s.out, s.cfg.Banner...)
	s.out = append(s.out, newline...)
	s.out = append(s.out, s.cfg.Prompt...)
	if err := s.flush(ctx, port); err != nil {
		return err
	}

	rx := make([]byte, 64)
	for {
		n, err := port.RecvSomeContext(ctx, rx)
		if err != nil {
			return err
		}
		for _, b := range rx[:n] {
			line, ok := s.feed(b)
			if !ok {
				continue
			}
			res := s.exec.Execute(line)
			s.render(res)
			if res.Kind == command.KindHalt {
				if err := s.flush(ctx, port); err != nil {
					return err
				}
				if err := s.halt(ctx, res.Halt); err != nil {
					s.out = append(s.out, newline+"Error: "...)
					s.out = append(s.out, errcode.Message(err)...)
					s.prompt()
					continue
				}
				return ErrHalted
			}
		}
		if err := s.flush(ctx, port); err != nil {
			return err
		}
	}
}

// feed applies one input byte to the line buffer. It reports a completed
// line on CR or LF when the buffer holds anything.
func (s *Shell) feed(b byte) (string, bool) {
	switch {
	case b == '\r' || b == '\n':
		if s.pos == 0 {
			return "", false
		}
		line := string(s.buf[:s.pos])
		s.pos = 0
		return line, true
	case b == 0x08 || b == 0x7f:
		if s.pos > 0 {
			s.pos--
			if s.cfg.Echo {
				s.out = append(s.out, "\b \b"...)
			}
		}
	case b >= 0x20 && b <= 0x7e:
		if s.pos < len(s.buf) {
			s.buf[s.pos] = b
			s.pos++
			if s.cfg.Echo {
				s.out = append(s.out, b)
			}
		}
	}
	return "", false
}

func (s *Shell) render(r command.Result) {
	switch r.Kind {
	case command.KindPayload, command.KindHalt:
		s.out = append(s.out, newline...)
		s.out = append(s.out, r.Text...)
	case command.KindOK:
		s.out = append(s.out, newline+"OK"...)
	case command.KindError:
		s.out = append(s.out, newline+"Error: "...)
		s.out = append(s.out, r.Text...)
	}
	if r.Kind != command.KindHalt {
		s.prompt()
	}
}

func (s *Shell) prompt() {
	s.out = append(s.out, newline...)
	s.out = append(s.out, s.cfg.Prompt...)
}

func (s *Shell) halt(ctx context.Context, h command.Halt) error {
	fmtx.Println("[shell] halt:", h.String())
	if err := sleep(ctx, s.cfg.HaltGrace); err != nil {
		return err
	}
	return h.Apply(s.dev)
}

// flush writes pending output in ChunkSize pieces, pausing ChunkDelay
// between them so a full-speed USB endpoint is not overrun.
func (s *Shell) flush(ctx context.Context, port transport.Port) error {
	p := s.out
	s.out = s.out[:0]
	for len(p) > 0 {
		n := min(len(p), s.cfg.ChunkSize)
		if _, err := port.Write(p[:n]); err != nil {
			return err
		}
		p = p[n:]
		if len(p) > 0 && s.cfg.ChunkDelay > 0 {
			if err := sleep(ctx, s.cfg.ChunkDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
