// Package compress provides the decompression backends FST value-change
// blocks, geometry payloads and hierarchy bodies can be encoded with:
// raw (no compression), Zlib, FastLZ and LZ4 block format.
//
// Adapted from mebo's compress package (Compressor/Decompressor/Codec
// interfaces, factory-by-enum dispatch); only the decompression half is
// needed here since this module never writes FST files.
package compress

import (
	"fmt"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
)

// Decompressor decompresses a block of data to a known output length.
//
// FST always records the uncompressed length on the wire alongside the
// compressed payload, so every implementation here is handed the exact
// expected output size rather than having to guess and retry.
type Decompressor interface {
	// Decompress decompresses compressed into a buffer of exactly
	// uncompressedLen bytes.
	Decompress(compressed []byte, uncompressedLen int) ([]byte, error)
}

var (
	zlibCodec   = ZlibDecompressor{}
	lz4Codec    = LZ4Decompressor{}
	fastlzCodec = FastLZDecompressor{}
)

// ForPackType returns the Decompressor matching a value-change block's
// waves_packtype byte (spec.md §4.7): 'F' selects FastLZ, '4' selects
// LZ4 block format, and everything else selects Zlib.
func ForPackType(pack format.PackType) Decompressor {
	switch pack {
	case format.PackFastLZ:
		return fastlzCodec
	case format.PackLZ4:
		return lz4Codec
	default:
		return zlibCodec
	}
}

// MaybeZlib decompresses data that is either stored raw (when
// compressedLen == uncompressedLen, as in geometry/bits-array/time-array
// payloads per spec.md §4.4/§4.6) or Zlib-compressed otherwise.
func MaybeZlib(data []byte, uncompressedLen int) ([]byte, error) {
	if len(data) == uncompressedLen {
		return data, nil
	}

	return zlibCodec.Decompress(data, uncompressedLen)
}

func lengthMismatch(got, want int) error {
	return fmt.Errorf("%w: decompressed %d bytes, expected %d", errs.ErrDecompress, got, want)
}
