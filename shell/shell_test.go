package shell

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"picoos/board"
	"picoos/command"
	"picoos/device"
	"picoos/errcode"
	"picoos/flash"
	"picoos/transport"
)

type rig struct {
	host *transport.PipeEnd
	sh   *Shell
	led  *board.Pin
	wd   *board.Watchdog
	dev  *device.Context
}

func newRig(t *testing.T, mut func(*Config)) *rig {
	t.Helper()
	host, port := transport.NewPipe(1024)
	r := &rig{host: host, led: &board.Pin{Name: "led"}, wd: &board.Watchdog{}}
	dev, err := device.New(device.Peripherals{
		Watchdog: r.wd,
		LED:      r.led,
		Delay:    board.Instant{},
		ADC:      &board.ADC{Raw: 876},
		ROM:      &board.ROM{},
		Serial:   port,
	})
	if err != nil {
		t.Fatalf("device.New: %v", err)
	}
	r.dev = dev
	reg := command.NewRegistry(command.Env{
		Dev:     dev,
		Store:   flash.NewStore(flash.NewMem(2<<20), flash.Slots[:]),
		Device:  "Pico OS",
		Version: "0.1.0",
	})
	cfg := DefaultConfig()
	cfg.Banner = "hi"
	cfg.ChunkDelay = 0
	cfg.HaltGrace = 0
	cfg.ReadyPoll = time.Millisecond
	cfg.ReconnectDelay = time.Millisecond
	if mut != nil {
		mut(&cfg)
	}
	r.sh = New(dev, reg, cfg)
	return r
}

func (r *rig) start(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.sh.Run(ctx) }()
	r.host.Assert(true)
	r.expect(t, "hi\r\n> ")
	return cancel, done
}

func (r *rig) send(t *testing.T, s string) {
	t.Helper()
	if _, err := r.host.Write([]byte(s)); err != nil {
		t.Fatalf("send %q: %v", s, err)
	}
}

// expect reads until the accumulated output equals want.
func (r *rig) expect(t *testing.T, want string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var got []byte
	buf := make([]byte, 256)
	for len(got) < len(want) {
		n, err := r.host.RecvSomeContext(ctx, buf)
		if err != nil {
			t.Fatalf("waiting for %q, have %q: %v", want, got, err)
		}
		got = append(got, buf[:n]...)
	}
	if string(got) != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestBannerWaitsForReady(t *testing.T) {
	r := newRig(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.sh.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	short, c2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer c2()
	if n, _ := r.host.RecvSomeContext(short, make([]byte, 8)); n != 0 {
		t.Fatal("output before the host was ready")
	}
	r.host.Assert(true)
	r.expect(t, "hi\r\n> ")
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
}

func TestEchoRoundTrip(t *testing.T) {
	r := newRig(t, nil)
	cancel, _ := r.start(t)
	defer cancel()
	r.send(t, "echo a b c\r")
	r.expect(t, "echo a b c\r\na b c\r\n> ")
}

func TestRendering(t *testing.T) {
	r := newRig(t, func(c *Config) { c.Echo = false })
	cancel, _ := r.start(t)
	defer cancel()

	r.send(t, "write 1 hello\n")
	r.expect(t, "\r\nOK\r\n> ")
	r.send(t, "read 1\r\n")
	r.expect(t, "\r\nhello\r\n> ")
	r.send(t, "nope\r")
	r.expect(t, "\r\nError: Unknown command\r\n> ")
	r.send(t, "read 9\r")
	r.expect(t, "\r\nError: Invalid slot number\r\n> ")
}

func TestBackspace(t *testing.T) {
	r := newRig(t, nil)
	cancel, _ := r.start(t)
	defer cancel()
	// Leading erase is a no-op; the second one removes 'x'.
	r.send(t, "\x7fechx\x08o ok\r")
	r.expect(t, "echx\b \bo ok\r\nok\r\n> ")
}

func TestControlBytesIgnored(t *testing.T) {
	r := newRig(t, nil)
	cancel, _ := r.start(t)
	defer cancel()
	r.send(t, "ec\x1bho\x00 x\r")
	r.expect(t, "echo x\r\nx\r\n> ")
}

func TestLongLineTruncated(t *testing.T) {
	r := newRig(t, func(c *Config) { c.Echo = false })
	cancel, _ := r.start(t)
	defer cancel()
	r.send(t, "echo "+strings.Repeat("x", 100)+"\r")
	r.expect(t, "\r\n"+strings.Repeat("x", MaxLine-len("echo "))+"\r\n> ")
	// The buffer is usable again afterwards.
	r.send(t, "echo y\r")
	r.expect(t, "\r\ny\r\n> ")
}

func TestFeedEmptyLine(t *testing.T) {
	r := newRig(t, nil)
	for _, b := range []byte("\r\n\r\x08\x7f") {
		if _, ok := r.sh.feed(b); ok {
			t.Fatalf("byte %#x dispatched an empty buffer", b)
		}
	}
	if r.sh.pos != 0 || len(r.sh.out) != 0 {
		t.Fatalf("state changed: pos=%d out=%q", r.sh.pos, r.sh.out)
	}
}

func TestDisconnectEndsRun(t *testing.T) {
	r := newRig(t, nil)
	cancel, done := r.start(t)
	defer cancel()
	r.host.Close()
	select {
	case err := <-done:
		if !errors.Is(err, errcode.TransportDisconnected) {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after disconnect")
	}
	if r.dev.Serial.Held() {
		t.Fatal("serial port still borrowed")
	}
}

func TestRebootHalts(t *testing.T) {
	r := newRig(t, func(c *Config) { c.Echo = false })
	_, done := r.start(t)
	r.send(t, "reboot\r")
	r.expect(t, "\r\nRebooting...")
	select {
	case err := <-done:
		if !errors.Is(err, ErrHalted) {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not halt")
	}
	if r.wd.Armed() != command.ResetTimeout {
		t.Fatalf("watchdog armed with %v", r.wd.Armed())
	}
}

func TestBlinkThroughShell(t *testing.T) {
	r := newRig(t, func(c *Config) { c.Echo = false })
	cancel, _ := r.start(t)
	defer cancel()
	r.send(t, "led on\r")
	r.expect(t, "\r\nOK\r\n> ")
	r.send(t, "led blink\r")
	r.expect(t, "\r\nOK\r\n> ")
	if r.led.Get() {
		t.Fatal("blink left the led on")
	}
}

type recorder struct{ writes []int }

func (*recorder) Ready() bool { return true }
func (*recorder) RecvSomeContext(ctx context.Context, _ []byte) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}
func (w *recorder) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return len(p), nil
}

func TestFlushChunks(t *testing.T) {
	r := newRig(t, nil)
	rec := &recorder{}
	r.sh.out = append(r.sh.out, make([]byte, 150)...)
	if err := r.sh.flush(context.Background(), rec); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(rec.writes) != 3 || rec.writes[0] != 64 || rec.writes[1] != 64 || rec.writes[2] != 22 {
		t.Fatalf("chunks = %v", rec.writes)
	}
	if len(r.sh.out) != 0 {
		t.Fatal("output not drained")
	}
}

type failingFlash struct{ *flash.Mem }

func (failingFlash) Program(int64, []byte) error { return errors.New("program fault") }

func TestFlashErrorKeepsSession(t *testing.T) {
	host, port := transport.NewPipe(1024)
	dev, err := device.New(device.Peripherals{
		Watchdog: &board.Watchdog{},
		LED:      &board.Pin{Name: "led"},
		Delay:    board.Instant{},
		ADC:      &board.ADC{},
		Serial:   port,
	})
	if err != nil {
		t.Fatal(err)
	}
	reg := command.NewRegistry(command.Env{
		Dev:   dev,
		Store: flash.NewStore(failingFlash{flash.NewMem(2 << 20)}, flash.Slots[:]),
	})
	cfg := DefaultConfig()
	cfg.Banner = "hi"
	cfg.Echo = false
	cfg.ChunkDelay = 0
	cfg.ReadyPoll = time.Millisecond
	r := &rig{host: host, sh: New(dev, reg, cfg), dev: dev}

	cancel, done := r.start(t)
	defer cancel()
	r.send(t, "write 1 data\r")
	r.expect(t, "\r\nError: Flash access failed\r\n> ")
	r.send(t, "echo alive\r")
	r.expect(t, "\r\nalive\r\n> ")
	select {
	case err := <-done:
		t.Fatalf("session ended: %v", err)
	default:
	}
}
