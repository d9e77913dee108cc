// Package varint implements the LEB128-style unsigned and signed
// variable-length integer encodings used throughout the FST format
// (spec.md §4.1): 7 payload bits per byte, LSB first, high bit signals
// continuation, maximum 10 bytes.
//
// The signed encoding is classic SLEB128 (sign-extend from the last
// byte's bit 6), not zigzag — callers decoding signed position-table
// entries (offsets and aliases) must use the S-prefixed functions; time
// deltas are unsigned.
package varint

import (
	"fmt"
	"io"

	"github.com/fstwave/fst/errs"
)

// MaxLen is the maximum number of bytes a 64-bit varint can occupy.
const MaxLen = 10

// DecodeVarint decodes an unsigned varint from the start of b.
//
// Returns the decoded value and the number of bytes consumed. Fails with
// errs.ErrMalformed if b ends before a terminating byte is found, or if
// the accumulated shift would reach or exceed 64 bits before
// termination (overflow).
func DecodeVarint(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint

	for i := 0; i < len(b); i++ {
		by := b[i]
		result |= uint64(by&0x7f) << shift

		if by&0x80 == 0 {
			return result, i + 1, nil
		}

		shift += 7
		if shift >= 64 {
			return 0, 0, fmt.Errorf("%w: varint overflow", errs.ErrMalformed)
		}
	}

	return 0, 0, fmt.Errorf("%w: truncated varint", errs.ErrMalformed)
}

// DecodeSVarint decodes a signed varint (SLEB128) from the start of b.
//
// Returns the decoded value and the number of bytes consumed.
func DecodeSVarint(b []byte) (int64, int, error) {
	var result int64
	var shift uint
	var by byte
	i := 0

	for {
		if i >= len(b) {
			return 0, 0, fmt.Errorf("%w: truncated svarint", errs.ErrMalformed)
		}

		by = b[i]
		result |= int64(by&0x7f) << shift
		shift += 7
		i++

		if by&0x80 == 0 {
			break
		}

		if shift >= 64 {
			return 0, 0, fmt.Errorf("%w: svarint overflow", errs.ErrMalformed)
		}
	}

	if shift < 64 && by&0x40 != 0 {
		result |= -1 << shift
	}

	return result, i, nil
}

// ReadVarint decodes an unsigned varint one byte at a time from r.
func ReadVarint(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint

	for {
		by, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}

		result |= uint64(by&0x7f) << shift
		if by&0x80 == 0 {
			return result, nil
		}

		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("%w: varint overflow", errs.ErrMalformed)
		}
	}
}

// ReadSVarint decodes a signed varint (SLEB128) one byte at a time from r.
func ReadSVarint(r io.ByteReader) (int64, error) {
	var result int64
	var shift uint
	var by byte

	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		by = b

		result |= int64(by&0x7f) << shift
		shift += 7

		if by&0x80 == 0 {
			break
		}

		if shift >= 64 {
			return 0, fmt.Errorf("%w: svarint overflow", errs.ErrMalformed)
		}
	}

	if shift < 64 && by&0x40 != 0 {
		result |= -1 << shift
	}

	return result, nil
}

// AppendVarint appends the unsigned varint encoding of v to dst and
// returns the extended slice.
func AppendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// AppendSVarint appends the signed varint (SLEB128) encoding of v to dst
// and returns the extended slice.
func AppendSVarint(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7

		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			return append(dst, b)
		}

		dst = append(dst, b|0x80)
	}
}

// Length returns the number of bytes AppendVarint(nil, v) would produce.
func Length(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}
