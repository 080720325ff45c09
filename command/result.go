package command

import (
	"time"

	"picoos/device"
	"picoos/errcode"
)

type Kind uint8

const (
	KindNone    Kind = iota // nothing to render (empty line)
	KindPayload             // text to show
	KindOK                  // success without output
	KindError               // failure; Text holds the message
	KindHalt                // Text is shown, then Halt is applied
)

// Result is what one dispatched line produced.
type Result struct {
	Kind Kind
	Text string
	Code errcode.Code // set for KindError
	Halt Halt         // set for KindHalt
}

func none() Result                 { return Result{Kind: KindNone} }
func ok() Result                   { return Result{Kind: KindOK} }
func payload(s string) Result      { return Result{Kind: KindPayload, Text: s} }
func halt(h Halt, s string) Result { return Result{Kind: KindHalt, Text: s, Halt: h} }

func fail(err error) Result {
	return Result{Kind: KindError, Text: errcode.Message(err), Code: errcode.Of(err)}
}

// Halt is a terminal action that stops the shell.
type Halt uint8

const (
	HaltNone Halt = iota
	HaltReboot
	HaltBootloader
)

// ResetTimeout is the watchdog timeout armed by HaltReboot.
const ResetTimeout = time.Millisecond

func (h Halt) String() string {
	switch h {
	case HaltReboot:
		return "reboot"
	case HaltBootloader:
		return "bootloader"
	}
	return "none"
}

// Apply performs the halt on dev. On hardware neither action returns
// control for long; the caller parks the CPU afterwards.
func (h Halt) Apply(dev *device.Context) error {
	switch h {
	case HaltReboot:
		return dev.Watchdog.With(func(w device.Watchdog) error {
			return w.Arm(ResetTimeout)
		})
	case HaltBootloader:
		return dev.ROM.With(func(r device.ROM) error {
			r.EnterBootloader()
			return nil
		})
	}
	return nil
}
