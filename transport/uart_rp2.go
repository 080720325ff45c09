//go:build rp2040 || rp2350

package transport

import (
	"context"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"picoos/errcode"
)

// UART is a hardware UART driven by the interrupt-fed uartx driver. A UART
// has no handshake line, so it is always ready.
type UART struct{ u *uartx.UART }

// NewUART configures uart0 or uart1 on the board's default pins.
func NewUART(id string, baud uint32) (*UART, error) {
	var (
		hw     *uartx.UART
		tx, rx machine.Pin
	)
	switch id {
	case "uart0":
		hw, tx, rx = uartx.UART0, machine.UART0_TX_PIN, machine.UART0_RX_PIN
	case "uart1":
		hw, tx, rx = uartx.UART1, machine.UART1_TX_PIN, machine.UART1_RX_PIN
	default:
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "uart", Msg: "unknown uart " + id}
	}
	if err := hw.Configure(uartx.UARTConfig{BaudRate: baud, TX: tx, RX: rx}); err != nil {
		return nil, errcode.Wrap(errcode.Error, "uart configure", err)
	}
	return &UART{u: hw}, nil
}

func (u *UART) Ready() bool { return true }

func (u *UART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	return u.u.RecvSomeContext(ctx, p)
}

func (u *UART) Write(p []byte) (int, error) {
	n, err := u.u.Write(p)
	return n, errcode.Wrap(errcode.BufferOverflow, "uart write", err)
}
