//go:build !rp2040 && !rp2350

package critical

import "sync"

// Host builds have no interrupts; a process-wide lock gives the same
// "nothing else touches the hardware meanwhile" guarantee to goroutines
// standing in for ISRs. Calls must not nest.
var mu sync.Mutex

// Do runs fn exclusively with respect to every other Do.
func Do(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
