//go:build rp2040 || rp2350

package flash

import (
	"machine"

	"picoos/errcode"
	"picoos/x/conv"
)

// xipBase is where flash is memory-mapped on RP2040/RP2350.
const xipBase = 0x10000000

// rp2Flash adapts TinyGo's machine.Flash, whose offsets start at the end
// of the firmware image, to absolute flash offsets.
type rp2Flash struct {
	base int64 // absolute offset of machine.Flash offset 0
	size int64
}

// NewRP2 returns the on-board flash. Slots below the data region (inside
// the firmware image) are rejected by every primitive.
func NewRP2() Device {
	return &rp2Flash{
		base: int64(machine.FlashDataStart()) - xipBase,
		size: machine.Flash.Size(),
	}
}

func (f *rp2Flash) rel(off int64, n int) (int64, error) {
	r := off - f.base
	if r < 0 || r+int64(n) > f.size {
		return 0, &errcode.E{C: errcode.FlashIO, Op: "flash", Msg: "offset " + conv.Hex32(uint32(off)) + " outside data region", Err: errOutOfRange}
	}
	return r, nil
}

func (f *rp2Flash) ReadAt(p []byte, off int64) (int, error) {
	r, err := f.rel(off, len(p))
	if err != nil {
		return 0, err
	}
	return machine.Flash.ReadAt(p, r)
}

func (f *rp2Flash) Erase(off int64, n int) error {
	r, err := f.rel(off, n)
	if err != nil {
		return err
	}
	bs := machine.Flash.EraseBlockSize()
	if r%bs != 0 || int64(n)%bs != 0 {
		return &errcode.E{C: errcode.FlashIO, Op: "erase", Msg: "unaligned erase"}
	}
	return machine.Flash.EraseBlocks(r/bs, int64(n)/bs)
}

func (f *rp2Flash) Program(off int64, p []byte) error {
	r, err := f.rel(off, len(p))
	if err != nil {
		return err
	}
	_, err = machine.Flash.WriteAt(p, r)
	return err
}
