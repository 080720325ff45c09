// Package device owns the board's peripherals for the lifetime of the
// firmware and hands them out through borrow cells.
package device

import (
	"sync/atomic"

	"picoos/errcode"
	"picoos/transport"
)

// Context is the peripheral context. One is installed at boot with Init.
type Context struct {
	Watchdog *Cell[Watchdog]
	LED      *Cell[Pin]
	Delay    *Cell[Delayer]
	ADC      *Cell[ADC]
	ROM      *Cell[ROM]
	Serial   *Cell[transport.Port]
}

var current atomic.Pointer[Context]

// New builds a context without installing it. Missing required peripherals
// are reported as MissingPeripheral.
func New(p Peripherals) (*Context, error) {
	switch {
	case p.Watchdog == nil:
		return nil, missing("watchdog")
	case p.LED == nil:
		return nil, missing("led")
	case p.Delay == nil:
		return nil, missing("delay")
	case p.ADC == nil:
		return nil, missing("adc")
	case p.Serial == nil:
		return nil, missing("serial")
	}
	return &Context{
		Watchdog: NewCell(p.Watchdog, true),
		LED:      NewCell(p.LED, true),
		Delay:    NewCell(p.Delay, true),
		ADC:      NewCell(p.ADC, true),
		ROM:      NewCell(p.ROM, p.ROM != nil),
		Serial:   NewCell(p.Serial, true),
	}, nil
}

// Init builds the process-wide context. A second call fails with
// AlreadyInitialised and leaves the first context in place.
func Init(p Peripherals) (*Context, error) {
	if current.Load() != nil {
		return nil, errcode.AlreadyInitialised
	}
	c, err := New(p)
	if err != nil {
		return nil, err
	}
	if !current.CompareAndSwap(nil, c) {
		return nil, errcode.AlreadyInitialised
	}
	return c, nil
}

// Current returns the installed context, or nil before Init. Safe to call
// from interrupt handlers.
func Current() *Context { return current.Load() }

func missing(name string) error {
	return &errcode.E{C: errcode.MissingPeripheral, Op: "device.init", Msg: "missing " + name}
}
