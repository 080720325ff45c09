//go:build !rp2040 && !rp2350

package board

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"picoos/config"
	"picoos/device"
	"picoos/flash"
	"picoos/transport"
	"picoos/x/fmtx"
)

// FlashSize matches the Pico's 2 MiB part.
const FlashSize = 2 << 20

// Boot builds a simulated board: the shell runs over stdin/stdout, flash is
// in memory, and logs go to stderr unless log.uart is empty.
func Boot(cfg config.Config) (*Board, error) {
	b := &Board{
		Peripherals: device.Peripherals{
			Watchdog: &Watchdog{},
			LED:      &Pin{Name: "led"},
			Delay:    Sleeper{},
			ADC:      &ADC{Raw: 876},
			ROM:      &ROM{},
			Serial:   transport.NewStream(os.Stdin, os.Stdout),
		},
		Flash: flash.NewMem(FlashSize),
		Log:   os.Stderr,
	}
	if cfg.Log.UART == "" {
		b.Log = nil
	}
	return b, nil
}

// Halt ends the simulator the way a reset would end the firmware.
func Halt() { os.Exit(0) }

// Pin is a simulated output that logs level changes.
type Pin struct {
	Name string
	high atomic.Bool

	mu      sync.Mutex
	history []bool
}

func (p *Pin) Set(high bool) {
	p.high.Store(high)
	p.mu.Lock()
	p.history = append(p.history, high)
	p.mu.Unlock()
	fmtx.Println("[board]", p.Name, "->", level(high))
}

func (p *Pin) Get() bool { return p.high.Load() }

// History returns every level written so far.
func (p *Pin) History() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.history...)
}

func level(high bool) string {
	if high {
		return "high"
	}
	return "low"
}

// Watchdog records the armed timeout.
type Watchdog struct{ armed atomic.Int64 }

func (w *Watchdog) Arm(d time.Duration) error {
	w.armed.Store(int64(d))
	fmtx.Println("[board] watchdog armed:", d.String())
	return nil
}

// Armed returns the last timeout, or zero if never armed.
func (w *Watchdog) Armed() time.Duration { return time.Duration(w.armed.Load()) }

// ROM records bootloader entry.
type ROM struct{ entered atomic.Bool }

func (r *ROM) EnterBootloader() {
	r.entered.Store(true)
	fmtx.Println("[board] entering bootloader")
}

func (r *ROM) Entered() bool { return r.entered.Load() }

// ADC returns a fixed raw sample.
type ADC struct {
	Raw uint16
	Err error
}

func (a *ADC) ReadRaw() (uint16, error) { return a.Raw, a.Err }

// Sleeper delays with the wall clock.
type Sleeper struct{}

func (Sleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Instant is a Delayer that returns at once; tests use it for blink.
type Instant struct{}

func (Instant) Sleep(time.Duration) {}
