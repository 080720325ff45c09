package flash

import (
	"encoding/binary"

	"picoos/errcode"
)

// Record layout (one sector):
//
//	[0:4]   payload length, little-endian uint32
//	[4:n+4] payload
//	[n+4:]  Erased fill

// EncodeRecord fills dst (exactly SectorSize bytes) with the record image
// for data.
func EncodeRecord(dst []byte, data []byte) error {
	if len(dst) != SectorSize {
		return errcode.Wrap(errcode.FlashIO, "encode", errShortImage)
	}
	if len(data) > Capacity {
		return errcode.DataTooLarge
	}
	binary.LittleEndian.PutUint32(dst[:HeaderSize], uint32(len(data)))
	n := copy(dst[HeaderSize:], data)
	fill := dst[HeaderSize+n:]
	for i := range fill {
		fill[i] = Erased
	}
	return nil
}

// DecodeLength reads the header and reports the payload length. A length
// that does not fit the payload region (including the all-ones value of an
// erased sector) is reported as not ok.
func DecodeLength(hdr []byte) (int, bool) {
	if len(hdr) < HeaderSize {
		return 0, false
	}
	n := binary.LittleEndian.Uint32(hdr[:HeaderSize])
	if n > Capacity {
		return 0, false
	}
	return int(n), true
}

// DecodeRecord returns the payload view of a full sector image. Invalid
// headers decode as an empty payload.
func DecodeRecord(img []byte) []byte {
	n, ok := DecodeLength(img)
	if !ok || HeaderSize+n > len(img) {
		return nil
	}
	return img[HeaderSize : HeaderSize+n]
}

type imageError string

func (e imageError) Error() string { return string(e) }

const errShortImage imageError = "record image must be one sector"
