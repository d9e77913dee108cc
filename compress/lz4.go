package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/fstwave/fst/errs"
)

// LZ4Decompressor decompresses LZ4 block-format payloads.
//
// FST's LZ4 pack type ('4' on waves, and the HIER_LZ4/HIER_LZ4DUO
// hierarchy block bodies) uses the same raw block format as
// lz4.UncompressBlock, adapted from mebo's compress/lz4.go. Unlike the
// teacher's adaptive-buffer-doubling Decompress (which doesn't know the
// output size up front), FST always records the exact uncompressed
// length on the wire, so a single correctly-sized buffer suffices.
type LZ4Decompressor struct{}

var _ Decompressor = LZ4Decompressor{}

// Decompress inflates an LZ4 block into a buffer of exactly
// uncompressedLen bytes.
func (LZ4Decompressor) Decompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	if uncompressedLen == 0 {
		return nil, nil
	}

	dst := make([]byte, uncompressedLen)
	n, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", errs.ErrDecompress, err)
	}
	if n != uncompressedLen {
		return nil, lengthMismatch(n, uncompressedLen)
	}

	return dst, nil
}
