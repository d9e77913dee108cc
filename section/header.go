package section

import (
	"encoding/binary"
	"fmt"

	"github.com/fstwave/fst/errs"
)

// Header is the fixed 321-byte HDR block body (spec.md §3, §4.3).
//
// All fields are big-endian on the wire except the real-endianness
// marker, which is read little-endian, checked as a format sentinel and
// not stored in Header — it never changes how any other field is interpreted, so unlike
// mebo's Flag-driven endian.EndianEngine selection there is no
// switchable byte order to carry through the rest of the decoder (see
// DESIGN.md "Dropped adaptations").
type Header struct {
	StartTime        int64
	EndTime          int64
	WriterMemoryUse  uint64
	NumScopes        uint64
	NumHierarchyVars uint64
	NumVars          uint64
	NumVCBlocks      uint64
	Timescale        int8
	Writer           string
	Date             string
	FileType         uint8
	TimeZero         int64
}

// Parse decodes a Header from the HDR block body, which must be exactly
// HeaderBodyLen bytes.
func Parse(body []byte) (Header, error) {
	if len(body) != HeaderBodyLen {
		return Header{}, fmt.Errorf("%w: header body length %d, want %d", errs.ErrMalformed, len(body), HeaderBodyLen)
	}

	var h Header
	off := 0

	readU64BE := func() uint64 {
		v := binary.BigEndian.Uint64(body[off : off+8])
		off += 8
		return v
	}

	h.StartTime = int64(readU64BE())
	h.EndTime = int64(readU64BE())

	realEndianness := binary.LittleEndian.Uint64(body[off : off+8])
	off += 8
	if realEndianness != RealEndiannessLE && realEndianness != RealEndiannessBE {
		return Header{}, fmt.Errorf("%w: real-endianness marker 0x%X", errs.ErrNotAnFstFile, realEndianness)
	}

	h.WriterMemoryUse = readU64BE()
	h.NumScopes = readU64BE()
	h.NumHierarchyVars = readU64BE()
	h.NumVars = readU64BE()
	h.NumVCBlocks = readU64BE()

	h.Timescale = int8(body[off])
	off++

	h.Writer = cString(body[off : off+WriterFieldLen])
	off += WriterFieldLen

	h.Date = cString(body[off : off+DateFieldLen])
	off += DateFieldLen

	off += ReservedLen

	h.FileType = body[off]
	off++

	h.TimeZero = int64(binary.BigEndian.Uint64(body[off : off+8]))
	off += 8

	if off != HeaderBodyLen {
		return Header{}, fmt.Errorf("%w: header field layout mismatch", errs.ErrMalformed)
	}

	return h, nil
}

// cString trims a NUL-padded fixed-width field down to its content.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

// TimeUnit returns a human-readable multiplier for the header's
// timescale exponent, e.g. "1ns" for Timescale == -9. This is a pure
// convenience accessor carried over from the original implementation's
// status-bar formatting (SPEC_FULL.md §5); it performs no I/O.
func (h Header) TimeUnit() string {
	exp := int(h.Timescale)
	unit := "s"

	switch {
	case exp < -12:
		unit, exp = "fs", exp+15
	case exp < -9:
		unit, exp = "ps", exp+12
	case exp < -6:
		unit, exp = "ns", exp+9
	case exp < -3:
		unit, exp = "us", exp+6
	case exp < 0:
		unit, exp = "ms", exp+3
	default:
		unit, exp = "s", exp
	}

	mult := int64(1)
	for i := 0; i < exp; i++ {
		mult *= 10
	}

	return fmt.Sprintf("%d%s", mult, unit)
}
