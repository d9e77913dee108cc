// Package vcd decodes value-change blocks: the asymmetric block-trailer
// layout, the position-table alias resolver, the per-block time vector,
// the initial-values pass and the on-demand wave reconstructor
// (spec.md §4.6, §4.7).
//
// Grounded on mebo's blob package, which splits "parse the fixed
// trailer" (blob/header.go), "resolve the index table" (parseIndexEntries)
// and "decode one metric's points on demand" (blob/numeric_decoder.go
// DecodeAll) into separate files the way this package splits
// blockinfo.go / position.go / times.go / initial.go / wave.go.
package vcd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/varint"
)

// Info is the metadata of one value-change block, reconstructed from its
// asymmetric trailer layout (spec.md §4.6 steps 1-9).
type Info struct {
	StartTime       int64
	EndTime         int64
	MemoryRequired  uint64
	BlockEnd        int64

	BitsDataOffset        int64
	BitsCompressedLen     uint64
	BitsUncompressedLen   uint64
	BitsCount             uint64

	WavesDataOffset int64
	WavesPackType   format.PackType
	WavesLen        int64

	PositionDataOffset int64
	PositionLength     uint64

	TimeDataOffset        int64
	TimeCompressedLen     uint64
	TimeUncompressedLen   uint64
	TimeCount             uint64
}

// Data is a parsed value-change block: its metadata plus the decoded
// absolute times vector (spec.md §3 ValueChangeBlockData).
type Data struct {
	Info  Info
	Times []uint64
}

func readU64BE(r io.ReaderAt, off int64) (uint64, error) {
	var buf [8]byte
	if _, err := r.ReadAt(buf[:], off); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return binary.BigEndian.Uint64(buf[:]), nil
}

func readVarintAt(r io.ReaderAt, off int64) (uint64, int, error) {
	var buf [varint.MaxLen]byte
	n, err := r.ReadAt(buf[:], off)
	if err != nil && n == 0 {
		return 0, 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	v, used, derr := varint.DecodeVarint(buf[:n])
	if derr != nil {
		return 0, 0, derr
	}

	return v, used, nil
}

// ParseInfo parses one value-change block's metadata. blockStart is the
// absolute offset of the block's body (immediately after the type+length
// frame prefix); blockEnd is the absolute offset one past the body's
// last byte.
func ParseInfo(r io.ReaderAt, blockStart, blockEnd int64) (Info, error) {
	var info Info
	info.BlockEnd = blockEnd

	pos := blockStart

	startTime, err := readU64BE(r, pos)
	if err != nil {
		return Info{}, err
	}
	pos += 8
	endTime, err := readU64BE(r, pos)
	if err != nil {
		return Info{}, err
	}
	pos += 8
	memReq, err := readU64BE(r, pos)
	if err != nil {
		return Info{}, err
	}
	pos += 8

	info.StartTime = int64(startTime)
	info.EndTime = int64(endTime)
	info.MemoryRequired = memReq

	bitsUncompLen, n, err := readVarintAt(r, pos)
	if err != nil {
		return Info{}, err
	}
	pos += int64(n)
	bitsCompLen, n, err := readVarintAt(r, pos)
	if err != nil {
		return Info{}, err
	}
	pos += int64(n)
	bitsCount, n, err := readVarintAt(r, pos)
	if err != nil {
		return Info{}, err
	}
	pos += int64(n)

	info.BitsUncompressedLen = bitsUncompLen
	info.BitsCompressedLen = bitsCompLen
	info.BitsCount = bitsCount
	info.BitsDataOffset = pos
	pos += int64(bitsCompLen)

	wavesCount, n, err := readVarintAt(r, pos)
	if err != nil {
		return Info{}, err
	}
	_ = wavesCount
	pos += int64(n)

	var packByte [1]byte
	if _, err := r.ReadAt(packByte[:], pos); err != nil {
		return Info{}, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	info.WavesPackType = format.PackType(packByte[0])
	pos++
	info.WavesDataOffset = pos

	if blockEnd-24 < 0 {
		return Info{}, fmt.Errorf("%w: block trailer underflow", errs.ErrMalformed)
	}
	trailerPos := blockEnd - 24
	timeUncompLen, err := readU64BE(r, trailerPos)
	if err != nil {
		return Info{}, err
	}
	timeCompLen, err := readU64BE(r, trailerPos+8)
	if err != nil {
		return Info{}, err
	}
	timeCount, err := readU64BE(r, trailerPos+16)
	if err != nil {
		return Info{}, err
	}
	info.TimeUncompressedLen = timeUncompLen
	info.TimeCompressedLen = timeCompLen
	info.TimeCount = timeCount

	positionLengthOffset := blockEnd - int64(timeCompLen) - 32
	if positionLengthOffset < 0 {
		return Info{}, fmt.Errorf("%w: position-length offset underflow", errs.ErrMalformed)
	}
	positionLength, err := readU64BE(r, positionLengthOffset)
	if err != nil {
		return Info{}, err
	}
	info.PositionLength = positionLength

	positionDataOffset := positionLengthOffset - int64(positionLength)
	if positionDataOffset < info.WavesDataOffset {
		return Info{}, fmt.Errorf("%w: position-data offset underflow", errs.ErrMalformed)
	}
	info.PositionDataOffset = positionDataOffset
	info.TimeDataOffset = positionLengthOffset + 8

	info.WavesLen = positionDataOffset - info.WavesDataOffset
	if info.WavesLen < 0 {
		return Info{}, fmt.Errorf("%w: negative waves region length", errs.ErrMalformed)
	}

	return info, nil
}

// Parse parses one value-change block's metadata, its position table and
// its times vector: everything load-time can reconstruct without
// touching geometry (spec.md §4.6 steps 1-9, §4.6.2).
func Parse(r io.ReaderAt, blockStart, blockEnd int64, numVars int) (Data, []Slice, error) {
	info, err := ParseInfo(r, blockStart, blockEnd)
	if err != nil {
		return Data{}, nil, err
	}

	posBuf := make([]byte, info.PositionLength)
	if _, err := r.ReadAt(posBuf, info.PositionDataOffset); err != nil {
		return Data{}, nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}
	slices, err := resolvePositions(posBuf, numVars, info.WavesLen)
	if err != nil {
		return Data{}, nil, err
	}

	times, err := decodeTimes(r, info)
	if err != nil {
		return Data{}, nil, err
	}

	return Data{Info: info, Times: times}, slices, nil
}
