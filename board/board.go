// Package board brings up the peripherals the firmware runs on. The rp2
// build drives the real chip; every other build gets in-memory fakes so
// the firmware runs as a host simulator.
package board

import (
	"io"

	"picoos/device"
	"picoos/flash"
)

// Board is what Boot hands to main.
type Board struct {
	Peripherals device.Peripherals
	Flash       flash.Device
	// Log receives diagnostics; nil when logging is disabled.
	Log io.Writer
}
