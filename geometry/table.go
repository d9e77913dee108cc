// Package geometry decodes the GEOM block: the per-variable bit-width
// table, with sentinels for real-typed and overflow-width variables
// (spec.md §4.4).
//
// Grounded on mebo's blob/numeric_decoder.go parseIndexEntries, which
// decodes a dense fixed-size array of per-metric metadata from an
// optionally-compressed payload the same way: read a length-prefixed
// region, decompress if needed, then walk it as a flat sequence of
// small integers.
package geometry

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fstwave/fst/compress"
	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/varint"
)

// realSentinel and longSentinel are the two varint values with special
// meaning in the geometry stream (spec.md §4.4).
const (
	realSentinel = 0
	longSentinel = 0xFFFFFFFF
	longMinValue = 0xFE
)

// Table is the decoded VarLengths mapping (spec.md §3): one VarLength
// per VarId, plus an overflow map for widths that did not fit the
// in-place 8-bit-width representation used for the common case.
type Table struct {
	lengths  []format.VarLength
	overflow map[int]uint32
}

// Len returns the number of declared variables.
func (t Table) Len() int { return len(t.lengths) }

// At returns VarId id's declared length, with any overflow width
// already resolved in place — callers never see the raw LONG sentinel.
func (t Table) At(id int) format.VarLength {
	length := t.lengths[id]
	if w, ok := t.overflow[id]; ok {
		length.Bits = w
	}

	return length
}

// All returns every declared length, in VarId order, with overflow
// widths resolved the same way At does.
func (t Table) All() []format.VarLength {
	if len(t.overflow) == 0 {
		return t.lengths
	}

	out := make([]format.VarLength, len(t.lengths))
	copy(out, t.lengths)
	for id, w := range t.overflow {
		out[id].Bits = w
	}

	return out
}

// Parse decodes a GEOM block body (spec.md §4.4). body is the full block
// body, beginning with the two big-endian u64 length fields.
func Parse(body []byte) (Table, error) {
	if len(body) < 16 {
		return Table{}, fmt.Errorf("%w: geometry body too short", errs.ErrMalformed)
	}

	uncompressedLen := binary.BigEndian.Uint64(body[0:8])
	count := binary.BigEndian.Uint64(body[8:16])
	payload := body[16:]

	decoded, err := compress.MaybeZlib(payload, int(uncompressedLen))
	if err != nil {
		return Table{}, err
	}

	lengths := make([]format.VarLength, 0, count)
	overflow := make(map[int]uint32)

	for i := uint64(0); i < count; i++ {
		v, n, err := varint.DecodeVarint(decoded)
		if err != nil {
			return Table{}, fmt.Errorf("geometry entry %d: %w", i, err)
		}
		decoded = decoded[n:]

		switch {
		case v == realSentinel:
			lengths = append(lengths, format.VarLength{Kind: format.KindReal})

		case v == longSentinel:
			lengths = append(lengths, format.VarLength{Kind: format.KindBits, Bits: 0})

		case v >= longMinValue:
			if v > 0xFFFFFFFF {
				return Table{}, fmt.Errorf("%w: geometry width %d exceeds 32 bits", errs.ErrMalformed, v)
			}
			lengths = append(lengths, format.VarLength{Kind: format.KindBits, Bits: longMinValue})
			overflow[int(i)] = uint32(v)

		default:
			lengths = append(lengths, format.VarLength{Kind: format.KindBits, Bits: uint32(v)})
		}
	}

	return Table{lengths: lengths, overflow: overflow}, nil
}

// ParseFrom is a convenience wrapper for callers that have an
// io.ReaderAt and absolute block bounds rather than an in-memory body,
// mirroring the calling shape of vcd.ParseInfo.
func ParseFrom(r io.ReaderAt, blockStart, blockEnd int64) (Table, error) {
	body := make([]byte, blockEnd-blockStart)
	if _, err := r.ReadAt(body, blockStart); err != nil {
		return Table{}, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return Parse(body)
}

// OverflowWidth returns the full 32-bit width recorded for VarId id when
// its length was too wide for the dense 8-bit representation, and
// whether an overflow entry exists for it.
func (t Table) OverflowWidth(id int) (uint32, bool) {
	w, ok := t.overflow[id]
	return w, ok
}
