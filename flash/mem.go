package flash

import (
	"sync"

	"picoos/errcode"
)

// Mem is an in-memory NOR flash: Erase sets whole sectors to Erased and
// Program can only clear bits, like the real part. Used by host builds and
// tests.
type Mem struct {
	mu   sync.Mutex
	data []byte

	Erases   int // sector erase operations performed
	Programs int // program operations performed
}

// NewMem returns an erased device of size bytes.
func NewMem(size int) *Mem {
	m := &Mem{data: make([]byte, size)}
	for i := range m.data {
		m.data[i] = Erased
	}
	return m
}

func (m *Mem) bounds(off int64, n int) error {
	if off < 0 || n < 0 || off+int64(n) > int64(len(m.data)) {
		return errOutOfRange
	}
	return nil
}

func (m *Mem) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.bounds(off, len(p)); err != nil {
		return 0, err
	}
	return copy(p, m.data[off:]), nil
}

func (m *Mem) Erase(off int64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off%SectorSize != 0 || n%SectorSize != 0 {
		return &errcode.E{C: errcode.FlashIO, Op: "erase", Msg: "unaligned erase"}
	}
	if err := m.bounds(off, n); err != nil {
		return err
	}
	for i := off; i < off+int64(n); i++ {
		m.data[i] = Erased
	}
	m.Erases += n / SectorSize
	return nil
}

func (m *Mem) Program(off int64, p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.bounds(off, len(p)); err != nil {
		return err
	}
	for i, b := range p {
		m.data[off+int64(i)] &= b
	}
	m.Programs++
	return nil
}

// Snapshot returns a copy of the raw device contents.
func (m *Mem) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

type rangeError string

func (e rangeError) Error() string { return string(e) }

const errOutOfRange rangeError = "flash offset out of range"
