package hostlink

import (
	"errors"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Conn is a Client bound to a serial device.
type Conn struct {
	*Client
	port io.Closer
}

// Open connects to the device's CDC or UART port, for example
// /dev/ttyACM0 at 115200 baud. readTimeout is the per-read poll interval.
func Open(addr string, baud int, readTimeout time.Duration) (*Conn, error) {
	p, err := serial.Open(&serial.Config{
		Address:  addr,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  readTimeout,
	})
	if err != nil {
		return nil, err
	}
	c := New(p)
	c.IsTimeout = func(err error) bool { return errors.Is(err, serial.ErrTimeout) }
	return &Conn{Client: c, port: p}, nil
}

func (c *Conn) Close() error { return c.port.Close() }
