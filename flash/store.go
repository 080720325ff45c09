package flash

import (
	"picoos/errcode"
	"picoos/x/critical"
	"picoos/x/mathx"
)

// Store reads and writes length-prefixed records in the slot sectors.
// It is not safe for concurrent use; the shell dispatches sequentially.
type Store struct {
	dev   Device
	slots []Slot
	img   [SectorSize]byte // scratch sector image for Write
}

// NewStore binds a store to a device and a slot table (normally Slots[:]).
func NewStore(dev Device, slots []Slot) *Store {
	return &Store{dev: dev, slots: slots}
}

// Slots returns the slot table, in index order.
func (s *Store) Slots() []Slot { return s.slots }

func (s *Store) slot(i int) (Slot, error) {
	if !mathx.InRange(i, 0, len(s.slots)) {
		return Slot{}, errcode.InvalidSlotNumber
	}
	return s.slots[i], nil
}

// Write replaces the record in slot i (0-based) with data.
//
// Erase and program run back to back with interrupts masked: code executing
// from the same flash bank cannot be fetched while it is being erased. A
// power loss in between leaves the slot undefined.
func (s *Store) Write(i int, data []byte) error {
	sl, err := s.slot(i)
	if err != nil {
		return err
	}
	if len(data) > Capacity {
		return errcode.DataTooLarge
	}
	if err := EncodeRecord(s.img[:], data); err != nil {
		return err
	}
	off := int64(sl.Offset)
	critical.Do(func() {
		if err = s.dev.Erase(off, SectorSize); err != nil {
			return
		}
		err = s.dev.Program(off, s.img[:])
	})
	return errcode.Wrap(errcode.FlashIO, "write "+sl.Name, err)
}

// Read returns a copy of the payload stored in slot i (0-based). A slot
// whose header is erased or out of range reads as empty.
func (s *Store) Read(i int) ([]byte, error) {
	sl, err := s.slot(i)
	if err != nil {
		return nil, err
	}
	var hdr [HeaderSize]byte
	if _, err := s.dev.ReadAt(hdr[:], int64(sl.Offset)); err != nil {
		return nil, errcode.Wrap(errcode.FlashIO, "read "+sl.Name, err)
	}
	n, ok := DecodeLength(hdr[:])
	if !ok || n == 0 {
		return []byte{}, nil
	}
	out := make([]byte, n)
	if _, err := s.dev.ReadAt(out, int64(sl.Offset)+HeaderSize); err != nil {
		return nil, errcode.Wrap(errcode.FlashIO, "read "+sl.Name, err)
	}
	return out, nil
}

// Check probes every slot header. It fails when the device cannot reach a
// slot, e.g. because the firmware image has grown into the slot region.
func (s *Store) Check() error {
	var hdr [HeaderSize]byte
	for _, sl := range s.slots {
		if sl.Offset%SectorSize != 0 {
			return &errcode.E{C: errcode.FlashIO, Op: "check", Msg: sl.Name + " is not sector aligned"}
		}
		if _, err := s.dev.ReadAt(hdr[:], int64(sl.Offset)); err != nil {
			return errcode.Wrap(errcode.FlashIO, "check "+sl.Name, err)
		}
	}
	return nil
}
