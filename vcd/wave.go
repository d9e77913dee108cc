package vcd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fstwave/fst/compress"
	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/varint"
)

// Change is one decoded (time, value) pair in a variable's full wave
// timeline (spec.md §4.7).
type Change struct {
	Time  uint64
	Value format.Value
}

// BlockSource is one value-change block's metadata, decoded times and
// this variable's wave-slice within it, zipped together for ReadWave.
type BlockSource struct {
	Info  Info
	Times []uint64
	Slice Slice
}

// ReadWave reconstructs a single variable's full (time, value) timeline
// across every value-change block (spec.md §4.7). It is a pure function
// of the already-loaded block metadata plus one on-demand read of the
// variable's compressed wave bytes per non-empty block.
func ReadWave(r io.ReaderAt, sources []BlockSource, length format.VarLength, initial []format.Value) ([]Change, error) {
	var changes []Change

	if len(initial) > 0 {
		changes = append(changes, Change{Time: 0, Value: initial[0]})
	}

	for _, src := range sources {
		if src.Slice.Empty() {
			continue
		}

		payload, err := readWavePayload(r, src.Info, src.Slice)
		if err != nil {
			return nil, err
		}

		blockChanges, err := decodeBlockChanges(payload, length, src.Times)
		if err != nil {
			return nil, err
		}

		changes = append(changes, blockChanges...)
	}

	return changes, nil
}

func readWavePayload(r io.ReaderAt, info Info, slice Slice) ([]byte, error) {
	buf := make([]byte, slice.Len())
	if _, err := r.ReadAt(buf, info.WavesDataOffset+slice.Start); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	u, n, err := varint.DecodeVarint(buf)
	if err != nil {
		return nil, fmt.Errorf("wave slice header: %w", err)
	}
	compressed := buf[n:]

	if u == 0 {
		return compressed, nil
	}

	return compress.ForPackType(info.WavesPackType).Decompress(compressed, int(u))
}

// decodeBlockChanges decodes one block's worth of wave payload for a
// single variable (spec.md §4.7's per-block iteration). time_index
// starts at 0 for every block, since it indexes that block's own times
// vector.
func decodeBlockChanges(payload []byte, length format.VarLength, times []uint64) ([]Change, error) {
	var changes []Change
	var timeIndex uint64

	emit := func(value format.Value) error {
		if timeIndex >= uint64(len(times)) {
			return fmt.Errorf("%w: time index %d out of range (%d times)", errs.ErrMalformed, timeIndex, len(times))
		}
		changes = append(changes, Change{Time: times[timeIndex], Value: value})

		return nil
	}

	switch {
	case length.IsReal():
		for len(payload) > 0 {
			w, n, err := varint.DecodeVarint(payload)
			if err != nil {
				return nil, fmt.Errorf("real time-index delta: %w", err)
			}
			payload = payload[n:]
			timeIndex += w

			if len(payload) < 8 {
				return nil, fmt.Errorf("%w: truncated real wave payload", errs.ErrMalformed)
			}
			real := binary.LittleEndian.Uint64(payload[:8])
			payload = payload[8:]

			if err := emit(format.Value{IsReal: true, Real: real}); err != nil {
				return nil, err
			}
		}

	case length.Bits == 1:
		for len(payload) > 0 {
			w, n, err := varint.DecodeVarint(payload)
			if err != nil {
				return nil, fmt.Errorf("1-bit wave entry: %w", err)
			}
			payload = payload[n:]

			var sym format.Symbol
			var delta uint64

			if w&1 == 0 {
				delta = w >> 2
				if w&2 == 0 {
					sym = format.Sym0
				} else {
					sym = format.Sym1
				}
			} else {
				delta = w >> 4
				switch w & 0b1110 {
				case 0b0000:
					sym = format.SymX
				case 0b0010:
					sym = format.SymZ
				default:
					return nil, fmt.Errorf("%w: 9-valued logic pattern 0x%X", errs.ErrUnsupportedFormat, w&0b1110)
				}
			}

			timeIndex += delta
			if err := emit(format.Value{Bits: packSymbols([]format.Symbol{sym}), NumBits: 1}); err != nil {
				return nil, err
			}
		}

	default:
		bits := int(length.Bits)
		byteLen := (bits + 7) / 8

		for len(payload) > 0 {
			w, n, err := varint.DecodeVarint(payload)
			if err != nil {
				return nil, fmt.Errorf("multi-bit wave entry: %w", err)
			}
			payload = payload[n:]

			delta := w >> 1
			isBinary := w&1 == 0
			timeIndex += delta

			var symbols []format.Symbol
			if isBinary {
				if len(payload) < byteLen {
					return nil, fmt.Errorf("%w: truncated binary wave value", errs.ErrMalformed)
				}
				symbols = expandBinaryBits(payload[:byteLen], bits)
				payload = payload[byteLen:]
			} else {
				if len(payload) < bits {
					return nil, fmt.Errorf("%w: truncated ascii wave value", errs.ErrMalformed)
				}
				symbols = make([]format.Symbol, bits)
				for i := 0; i < bits; i++ {
					sym, err := charToSymbol(payload[i])
					if err != nil {
						return nil, err
					}
					symbols[i] = sym
				}
				payload = payload[bits:]
			}

			if err := emit(format.Value{Bits: packSymbols(symbols), NumBits: bits}); err != nil {
				return nil, err
			}
		}
	}

	return changes, nil
}

// expandBinaryBits unpacks a binary multi-bit wave value: bits is the
// declared signal width, raw holds ceil(bits/8) bytes with the value
// packed LSB-first — byte bit j (0 = least significant) is symbol j,
// same convention as the packed Value payload itself (format/types.go
// Value.Symbol). Grounded on original_source/fst/src/fst.rs's
// value_from_packed_bits.
func expandBinaryBits(raw []byte, bits int) []format.Symbol {
	symbols := make([]format.Symbol, bits)
	for k := 0; k < bits; k++ {
		byteIdx := k / 8
		bitInByte := k % 8
		if (raw[byteIdx]>>uint(bitInByte))&1 == 1 {
			symbols[k] = format.Sym1
		} else {
			symbols[k] = format.Sym0
		}
	}

	return symbols
}
