package flash

// Device exposes the raw flash primitives the store needs. Offsets are
// absolute from the start of flash. Erase works on whole sectors; Program
// writes into previously erased bytes.
type Device interface {
	ReadAt(p []byte, off int64) (int, error)
	Erase(off int64, n int) error
	Program(off int64, p []byte) error
}
