package flash

// Geometry of the slot region. Offsets are absolute from the start of the
// flash device (not XIP addresses).
const (
	SectorSize = 4096
	HeaderSize = 4
	Capacity   = SectorSize - HeaderSize // payload bytes per slot
	Erased     = 0xFF                    // value of an erased flash byte
)

// Slot is a named, fixed-offset sector holding one record.
type Slot struct {
	Offset uint32
	Name   string
}

// Slots is the compile-time slot table. It sits at 1 MiB so a firmware
// image up to that size never overlaps it.
var Slots = [...]Slot{
	{Offset: 0x100000, Name: "slot1"},
	{Offset: 0x101000, Name: "slot2"},
	{Offset: 0x102000, Name: "slot3"},
	{Offset: 0x103000, Name: "slot4"},
}

// SlotCount is the number of configured slots.
const SlotCount = len(Slots)
