package device

import (
	"time"

	"picoos/transport"
)

// Watchdog resets the chip when not fed within the armed timeout.
type Watchdog interface {
	Arm(timeout time.Duration) error
}

// Pin is a push-pull output.
type Pin interface {
	Set(high bool)
	Get() bool
}

// Delayer provides blocking waits on the board's timer.
type Delayer interface {
	Sleep(d time.Duration)
}

// ADC samples the on-die temperature channel.
type ADC interface {
	ReadRaw() (uint16, error)
}

// ROM reaches the boot ROM routines.
type ROM interface {
	// EnterBootloader reboots into the USB mass-storage bootloader. It does
	// not return on hardware.
	EnterBootloader()
}

// Peripherals are the concrete handles a board hands over at boot. ROM is
// optional; the rest are required.
type Peripherals struct {
	Watchdog Watchdog
	LED      Pin
	Delay    Delayer
	ADC      ADC
	ROM      ROM
	Serial   transport.Port
}
