//go:build rp2040 || rp2350

package critical

import "runtime/interrupt"

// Do runs fn with all interrupts masked. Nesting is allowed; the outermost
// call restores the previous mask.
func Do(fn func()) {
	state := interrupt.Disable()
	defer interrupt.Restore(state)
	fn()
}
