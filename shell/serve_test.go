package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"picoos/board"
	"picoos/command"
	"picoos/device"
	"picoos/errcode"
	"picoos/flash"
	"picoos/transport"
)

// flakyPort drops the first session and then idles.
type flakyPort struct {
	recvs   atomic.Int32
	banners atomic.Int32
}

func (*flakyPort) Ready() bool { return true }

func (p *flakyPort) RecvSomeContext(ctx context.Context, _ []byte) (int, error) {
	if p.recvs.Add(1) == 1 {
		return 0, errcode.TransportDisconnected
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

func (p *flakyPort) Write(b []byte) (int, error) {
	if strings.HasPrefix(string(b), "hi") {
		p.banners.Add(1)
	}
	return len(b), nil
}

func TestServeReconnects(t *testing.T) {
	port := &flakyPort{}
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
	reg := command.NewRegistry(command.Env{Dev: dev, Store: flash.NewStore(flash.NewMem(2<<20), flash.Slots[:])})
	cfg := DefaultConfig()
	cfg.Banner = "hi"
	cfg.ReconnectDelay = time.Millisecond
	sh := New(dev, reg, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sh.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for port.banners.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("banner sent %d times, want 2", port.banners.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve = %v", err)
	}
}

func newServeShell(t *testing.T, port transport.Port) (*Shell, *device.Context) {
	t.Helper()
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
	reg := command.NewRegistry(command.Env{Dev: dev, Store: flash.NewStore(flash.NewMem(2<<20), flash.Slots[:])})
	cfg := DefaultConfig()
	cfg.Banner = "hi"
	cfg.ChunkDelay = 0
	cfg.ReconnectDelay = time.Millisecond
	return New(dev, reg, cfg), dev
}

func TestServeStopsAtStreamEOF(t *testing.T) {
	var out bytes.Buffer
	sh, _ := newServeShell(t, transport.NewStream(strings.NewReader("echo hi there\r"), &out))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sh.Serve(ctx); !errors.Is(err, transport.ErrEOF) {
		t.Fatalf("Serve = %v", err)
	}
	if n := strings.Count(out.String(), "hi\r\n> "); n != 1 {
		t.Fatalf("banner sent %d times: %q", n, out.String())
	}
	if !strings.Contains(out.String(), "\r\nhi there\r\n> ") {
		t.Fatalf("piped command not served: %q", out.String())
	}
}

func TestServeReturnsWhenPortBusy(t *testing.T) {
	_, port := transport.NewPipe(16)
	sh, dev := newServeShell(t, port)
	_, release, err := dev.Serial.Borrow()
	if err != nil {
		t.Fatal(err)
	}
	defer release()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sh.Serve(ctx); !errors.Is(err, errcode.Busy) {
		t.Fatalf("Serve = %v, want busy", err)
	}
}
