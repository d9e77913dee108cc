package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/internal/pool"
)

// ZlibDecompressor decompresses the Zlib (deflate) streams FST uses for
// geometry, bits-array, time-array and 'Z'-packed wave payloads.
//
// Uses klauspost/compress's zlib package, a drop-in, faster replacement
// for the standard library's compress/zlib reader.
type ZlibDecompressor struct{}

var _ Decompressor = ZlibDecompressor{}

// Decompress inflates compressed and validates the result is exactly
// uncompressedLen bytes long.
func (ZlibDecompressor) Decompress(compressed []byte, uncompressedLen int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", errs.ErrDecompress, err)
	}
	defer zr.Close()

	buf := pool.Get()
	defer pool.Put(buf)
	buf.Grow(uncompressedLen)
	buf.SetLength(uncompressedLen)

	n, err := io.ReadFull(zr, buf.B)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: zlib: %v", errs.ErrDecompress, err)
	}
	if n != uncompressedLen {
		return nil, lengthMismatch(n, uncompressedLen)
	}

	out := make([]byte, uncompressedLen)
	copy(out, buf.B)

	return out, nil
}
