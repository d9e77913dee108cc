package vcd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/varint"
)

// TestDecodeBlockChanges1Bit reproduces spec.md §8 scenario 2: a 1-bit
// signal changing 0->1 at time 10 and 1->0 at time 20, times [10, 20].
func TestDecodeBlockChanges1Bit(t *testing.T) {
	var payload []byte
	payload = varint.AppendVarint(payload, (0<<2)|2) // time-index delta=0 (times[0]=10), value=1
	payload = varint.AppendVarint(payload, (1<<2)|0) // time-index delta=1 (times[1]=20), value=0

	times := []uint64{10, 20}
	changes, err := decodeBlockChanges(payload, format.VarLength{Kind: format.KindBits, Bits: 1}, times)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, uint64(10), changes[0].Time)
	require.Equal(t, format.Sym1, changes[0].Value.Symbol(0))
	require.Equal(t, uint64(20), changes[1].Time)
	require.Equal(t, format.Sym0, changes[1].Value.Symbol(0))
}

func TestDecodeBlockChanges1BitXZ(t *testing.T) {
	var payload []byte
	payload = varint.AppendVarint(payload, (0<<4)|0b0001|0b0000) // delta=0, pattern 0b0000 -> X
	payload = varint.AppendVarint(payload, (1<<4)|0b0001|0b0010) // delta=1, pattern 0b0010 -> Z

	times := []uint64{5, 8}
	changes, err := decodeBlockChanges(payload, format.VarLength{Kind: format.KindBits, Bits: 1}, times)
	require.NoError(t, err)
	require.Equal(t, format.SymX, changes[0].Value.Symbol(0))
	require.Equal(t, format.SymZ, changes[1].Value.Symbol(0))
}

func TestDecodeBlockChangesMultiBitBinary(t *testing.T) {
	// 4-bit bus, binary encoding, symbols [1,0,1,0] packed LSB-first into
	// one byte's low nibble (bit j of the byte is symbol j).
	var payload []byte
	payload = varint.AppendVarint(payload, (2<<1)|0) // delta=2, binary
	payload = append(payload, 0b0000_0101)

	times := []uint64{0, 1, 2}
	changes, err := decodeBlockChanges(payload, format.VarLength{Kind: format.KindBits, Bits: 4}, times)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, format.Sym1, changes[0].Value.Symbol(0))
	require.Equal(t, format.Sym0, changes[0].Value.Symbol(1))
	require.Equal(t, format.Sym1, changes[0].Value.Symbol(2))
	require.Equal(t, format.Sym0, changes[0].Value.Symbol(3))
}

func TestDecodeBlockChangesMultiBitAscii(t *testing.T) {
	var payload []byte
	payload = varint.AppendVarint(payload, (1<<1)|1) // delta=1, non-binary
	payload = append(payload, []byte("1xZ0")...)

	times := []uint64{0, 1}
	changes, err := decodeBlockChanges(payload, format.VarLength{Kind: format.KindBits, Bits: 4}, times)
	require.NoError(t, err)
	require.Equal(t, format.Sym1, changes[0].Value.Symbol(0))
	require.Equal(t, format.SymX, changes[0].Value.Symbol(1))
	require.Equal(t, format.SymZ, changes[0].Value.Symbol(2))
	require.Equal(t, format.Sym0, changes[0].Value.Symbol(3))
}

func TestDecodeBlockChangesReal(t *testing.T) {
	var payload []byte
	payload = varint.AppendVarint(payload, 3)
	payload = append(payload, 0, 0, 0, 0, 0, 0, 0xF0, 0x3F) // 1.0 as float64 LE bit pattern

	times := []uint64{0, 1, 2, 3}
	changes, err := decodeBlockChanges(payload, format.VarLength{Kind: format.KindReal}, times)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.True(t, changes[0].Value.IsReal)
	require.Equal(t, uint64(3), changes[0].Time)
}

func TestReadWaveUncompressedPassthrough(t *testing.T) {
	var inner []byte
	inner = varint.AppendVarint(inner, (1<<2)|2) // delta=1, value=1

	var sliceBytes []byte
	sliceBytes = varint.AppendVarint(sliceBytes, 0) // u==0: raw passthrough
	sliceBytes = append(sliceBytes, inner...)

	r := bytes.NewReader(sliceBytes)
	info := Info{WavesDataOffset: 0}
	slice := Slice{Start: 0, End: int64(len(sliceBytes))}

	initial := []format.Value{{Bits: packSymbols([]format.Symbol{format.Sym0}), NumBits: 1}}
	sources := []BlockSource{{Info: info, Times: []uint64{0, 1}, Slice: slice}}

	changes, err := ReadWave(r, sources, format.VarLength{Kind: format.KindBits, Bits: 1}, initial)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, uint64(0), changes[0].Time)
	require.Equal(t, format.Sym0, changes[0].Value.Symbol(0))
	require.Equal(t, uint64(1), changes[1].Time)
	require.Equal(t, format.Sym1, changes[1].Value.Symbol(0))
}
