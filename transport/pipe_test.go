package transport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"picoos/errcode"
)

func TestPipeCarriesBytesBothWays(t *testing.T) {
	host, dev := NewPipe(64)
	if _, err := host.Write([]byte("help\r")); err != nil {
		t.Fatalf("host write: %v", err)
	}
	buf := make([]byte, 16)
	n, err := dev.RecvSomeContext(context.Background(), buf)
	if err != nil || string(buf[:n]) != "help\r" {
		t.Fatalf("dev recv = %q, %v", buf[:n], err)
	}
	if _, err := dev.Write([]byte("ok")); err != nil {
		t.Fatalf("dev write: %v", err)
	}
	n, err = host.Read(buf)
	if err != nil || string(buf[:n]) != "ok" {
		t.Fatalf("host read = %q, %v", buf[:n], err)
	}
}

func TestPipeReadinessFollowsPeer(t *testing.T) {
	host, dev := NewPipe(16)
	if dev.Ready() {
		t.Fatal("device end should not be ready before the host asserts")
	}
	host.Assert(true)
	if !dev.Ready() {
		t.Fatal("device end should see host assertion")
	}
	if host.Ready() {
		t.Fatal("readiness is per direction")
	}
}

func TestPipeWriteLargerThanRing(t *testing.T) {
	host, dev := NewPipe(16)
	msg := []byte(strings.Repeat("0123456789", 10))
	got := make(chan []byte, 1)
	go func() {
		var out bytes.Buffer
		buf := make([]byte, 7)
		for out.Len() < len(msg) {
			n, err := host.Read(buf)
			if err != nil {
				break
			}
			out.Write(buf[:n])
		}
		got <- out.Bytes()
	}()
	if n, err := dev.Write(msg); err != nil || n != len(msg) {
		t.Fatalf("write = %d, %v", n, err)
	}
	select {
	case b := <-got:
		if !bytes.Equal(b, msg) {
			t.Fatalf("received %q", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not finish")
	}
}

func TestPipeWriteTimesOutWhenPeerStalls(t *testing.T) {
	_, dev := NewPipe(8)
	dev.WriteTimeout = 20 * time.Millisecond
	n, err := dev.Write(make([]byte, 32))
	if errcode.Of(err) != errcode.BufferOverflow {
		t.Fatalf("err = %v, want buffer_overflow", err)
	}
	if n != 8 {
		t.Fatalf("wrote %d bytes, want 8", n)
	}
}

func TestPipeCloseDisconnectsBothSides(t *testing.T) {
	host, dev := NewPipe(16)
	done := make(chan error, 1)
	go func() {
		_, err := dev.RecvSomeContext(context.Background(), make([]byte, 4))
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	host.Close()
	select {
	case err := <-done:
		if !errors.Is(err, errcode.TransportDisconnected) {
			t.Fatalf("recv err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked receive not released by close")
	}
	if _, err := dev.Write([]byte("x")); !errors.Is(err, errcode.TransportDisconnected) {
		t.Fatalf("write after close err = %v", err)
	}
}

func TestRecvHonoursContext(t *testing.T) {
	_, dev := NewPipe(16)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := dev.RecvSomeContext(ctx, make([]byte, 4)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestWaitReady(t *testing.T) {
	host, dev := NewPipe(16)
	go func() {
		time.Sleep(10 * time.Millisecond)
		host.Assert(true)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := WaitReady(ctx, dev, time.Millisecond); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

func TestStreamEOFDisconnects(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader("abc"), &out)
	buf := make([]byte, 8)
	var got []byte
	for {
		n, err := s.RecvSomeContext(context.Background(), buf)
		got = append(got, buf[:n]...)
		if err != nil {
			if !errors.Is(err, ErrEOF) || !errors.Is(err, errcode.TransportDisconnected) {
				t.Fatalf("err = %v", err)
			}
			break
		}
	}
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
	if s.Ready() {
		t.Fatal("stream still ready after EOF")
	}
	if _, err := s.Write([]byte("hi")); err != nil || out.String() != "hi" {
		t.Fatalf("write: %q %v", out.String(), err)
	}
}
