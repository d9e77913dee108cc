package fst

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/section"
	"github.com/fstwave/fst/varint"
)

func frameBlock(blockType byte, body []byte) []byte {
	length := uint64(8 + len(body))
	buf := make([]byte, 0, 9+len(body))
	buf = append(buf, blockType)

	var lb [8]byte
	binary.BigEndian.PutUint64(lb[:], length)
	buf = append(buf, lb[:]...)
	buf = append(buf, body...)

	return buf
}

func buildHeaderBody(startTime, endTime int64, numVars uint64) []byte {
	body := make([]byte, section.HeaderBodyLen)
	off := 0

	putU64 := func(v uint64) {
		binary.BigEndian.PutUint64(body[off:off+8], v)
		off += 8
	}

	putU64(uint64(startTime))
	putU64(uint64(endTime))
	binary.LittleEndian.PutUint64(body[off:off+8], section.RealEndiannessLE)
	off += 8
	putU64(0)       // writer_memory_use
	putU64(1)       // num_scopes
	putU64(numVars) // num_hierarchy_vars
	putU64(numVars) // num_vars
	putU64(0)       // num_vc_blocks (informational only, not cross-checked)

	body[off] = byte(int8(-9)) // timescale
	off++
	off += section.WriterFieldLen
	off += section.DateFieldLen
	off += section.ReservedLen

	body[off] = 0 // filetype
	off++
	binary.BigEndian.PutUint64(body[off:off+8], 0) // timezero

	return body
}

func buildGeometryBody(bitsWidths []uint64) []byte {
	var payload []byte
	for _, w := range bitsWidths {
		payload = varint.AppendVarint(payload, w)
	}

	head := make([]byte, 16)
	binary.BigEndian.PutUint64(head[0:8], uint64(len(payload)))
	binary.BigEndian.PutUint64(head[8:16], uint64(len(bitsWidths)))

	return append(head, payload...)
}

func buildHierarchyBody(varBits []uint64) []byte {
	var recs []byte
	recs = append(recs, 254) // scope open
	recs = append(recs, 0)   // scope type
	recs = append(recs, []byte("top\x00")...)
	recs = append(recs, 0) // component name: empty cstring

	for i, bits := range varBits {
		recs = append(recs, 0) // var type tag
		recs = append(recs, 0) // direction
		recs = append(recs, []byte("v")...)
		recs = append(recs, byte('0'+i), 0)
		recs = varint.AppendVarint(recs, bits)
		recs = varint.AppendVarint(recs, 0) // no alias
	}

	recs = append(recs, 255) // close "top"

	head := make([]byte, 8)
	binary.BigEndian.PutUint64(head, uint64(len(recs)))

	return append(head, recs...)
}

func TestLoadReaderScenario1NoValueChangeBlocks(t *testing.T) {
	var file []byte
	file = append(file, frameBlock(0, buildHeaderBody(0, 0, 3))...)
	file = append(file, frameBlock(3, buildGeometryBody([]uint64{1, 4, 0}))...)
	file = append(file, frameBlock(4, buildHierarchyBody([]uint64{1, 4, 1}))...)

	r := bytes.NewReader(file)
	dec, err := LoadReader(r, int64(len(file)))
	require.NoError(t, err)
	require.Equal(t, uint64(3), dec.Header().NumVars)

	for id := 0; id < 3; id++ {
		changes, err := dec.ReadWave(id)
		require.NoError(t, err)
		require.Empty(t, changes)
	}
}

func TestLoadReaderFirstBlockNotHeaderIsMalformed(t *testing.T) {
	var file []byte
	file = append(file, frameBlock(3, buildGeometryBody([]uint64{1}))...)

	r := bytes.NewReader(file)
	_, err := LoadReader(r, int64(len(file)))
	require.Error(t, err)
}

// buildValueChangeBlock assembles a VCDATA_DYN_ALIAS2 block body for
// numVars variables, where var 0 carries the given raw (uncompressed)
// wave payload and every other variable is an empty zero-run,
// retracing spec.md §4.6 steps 1-9 forward instead of backward.
// initialValues is the ASCII-encoded bits region, one character per bit
// of every declared variable, concatenated in VarId order.
func buildValueChangeBlock(numVars int, var0Payload []byte, times []uint64, initialValues string) []byte {
	var sliceBytes []byte
	sliceBytes = varint.AppendVarint(sliceBytes, 0) // u==0: raw passthrough
	sliceBytes = append(sliceBytes, var0Payload...)

	var posTable []byte
	posTable = varint.AppendSVarint(posTable, (1<<1)|1) // var0: offset v=1 -> slice starts at 0
	for i := 1; i < numVars; i++ {
		posTable = varint.AppendVarint(posTable, (1 << 1)) // zero-run k=1 for each remaining var
	}

	var timePayload []byte
	var prev uint64
	for _, ts := range times {
		timePayload = varint.AppendVarint(timePayload, ts-prev)
		prev = ts
	}

	bits := []byte(initialValues)

	head := make([]byte, 24)
	binary.BigEndian.PutUint64(head[0:8], 0)                     // start_time
	binary.BigEndian.PutUint64(head[8:16], times[len(times)-1])  // end_time
	binary.BigEndian.PutUint64(head[16:24], 0)                   // memory_required

	afterBits := append([]byte{}, head...)
	afterBits = varint.AppendVarint(afterBits, uint64(len(bits))) // bits_uncompressed_length
	afterBits = varint.AppendVarint(afterBits, uint64(len(bits))) // bits_compressed_length
	afterBits = varint.AppendVarint(afterBits, uint64(len(bits))) // bits_count
	afterBits = append(afterBits, bits...)
	afterBits = append(afterBits, 0x00) // waves_count varint
	afterBits = append(afterBits, 'Z')  // waves_packtype

	body := append([]byte{}, afterBits...)
	body = append(body, sliceBytes...)
	body = append(body, posTable...)

	positionLength := uint64(len(posTable))
	posLenField := make([]byte, 8)
	binary.BigEndian.PutUint64(posLenField, positionLength)
	body = append(body, posLenField...)

	body = append(body, timePayload...)

	trailer := make([]byte, 24)
	binary.BigEndian.PutUint64(trailer[0:8], uint64(len(timePayload)))
	binary.BigEndian.PutUint64(trailer[8:16], uint64(len(timePayload)))
	binary.BigEndian.PutUint64(trailer[16:24], uint64(len(times)))
	body = append(body, trailer...)

	return body
}

// TestLoadReaderScenario2SingleBitSignal reproduces spec.md §8 scenario
// 2: a 1-bit signal changing 0->1 at time 10 and 1->0 at time 20.
func TestLoadReaderScenario2SingleBitSignal(t *testing.T) {
	var wavePayload []byte
	wavePayload = varint.AppendVarint(wavePayload, (0<<2)|2) // time-index delta=0 (times[0]=10), value=1
	wavePayload = varint.AppendVarint(wavePayload, (1<<2)|0) // time-index delta=1 (times[1]=20), value=0

	vcBody := buildValueChangeBlock(2, wavePayload, []uint64{10, 20}, "00")

	var file []byte
	file = append(file, frameBlock(0, buildHeaderBody(0, 20, 2))...)
	file = append(file, frameBlock(3, buildGeometryBody([]uint64{1, 1}))...)
	file = append(file, frameBlock(4, buildHierarchyBody([]uint64{1, 1}))...)
	file = append(file, frameBlock(8, vcBody)...)

	r := bytes.NewReader(file)
	dec, err := LoadReader(r, int64(len(file)))
	require.NoError(t, err)

	changes, err := dec.ReadWave(0)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	require.Equal(t, uint64(0), changes[0].Time)
	require.Equal(t, format.Sym0, changes[0].Value.Symbol(0)) // initial value
	require.Equal(t, uint64(10), changes[1].Time)
	require.Equal(t, format.Sym1, changes[1].Value.Symbol(0))
	require.Equal(t, uint64(20), changes[2].Time)
	require.Equal(t, format.Sym0, changes[2].Value.Symbol(0))

	unchanged, err := dec.ReadWave(1)
	require.NoError(t, err)
	require.Len(t, unchanged, 1) // initial value only, no changes in this block
	require.Equal(t, uint64(0), unchanged[0].Time)
}
