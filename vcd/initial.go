package vcd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fstwave/fst/compress"
	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
)

// DecodeInitialValues is the initial-values pass (spec.md §4.6 second
// paragraph): it reads the bits region and, for each VarId in order,
// decodes one ASCII-encoded value of its declared length — except for
// Real-kind variables, whose initial value is the same opaque 8-byte
// little-endian payload used by the wave decoder (spec.md §9 design
// note (b)).
//
// Requires geometry, which is why this runs as a second pass after every
// block's metadata (including this one's bits region) has been located.
func DecodeInitialValues(r io.ReaderAt, info Info, lengths []format.VarLength) ([]format.Value, error) {
	raw := make([]byte, info.BitsCompressedLen)
	if _, err := r.ReadAt(raw, info.BitsDataOffset); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	payload, err := compress.MaybeZlib(raw, int(info.BitsUncompressedLen))
	if err != nil {
		return nil, err
	}

	values := make([]format.Value, len(lengths))
	pos := 0

	for varID, length := range lengths {
		if length.IsReal() {
			if pos+8 > len(payload) {
				return nil, fmt.Errorf("%w: truncated real initial value for var %d", errs.ErrMalformed, varID)
			}
			values[varID] = format.Value{Real: binary.LittleEndian.Uint64(payload[pos : pos+8]), IsReal: true}
			pos += 8

			continue
		}

		bits := int(length.Bits)
		if pos+bits > len(payload) {
			return nil, fmt.Errorf("%w: truncated initial value for var %d", errs.ErrMalformed, varID)
		}

		symbols := make([]format.Symbol, bits)
		for i := 0; i < bits; i++ {
			sym, err := charToSymbol(payload[pos+i])
			if err != nil {
				return nil, err
			}
			symbols[i] = sym
		}
		pos += bits

		values[varID] = format.Value{Bits: packSymbols(symbols), NumBits: bits}
	}

	return values, nil
}
