package compress

import (
	"bytes"
	"testing"

	klzlib "github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/fstwave/fst/format"
)

func TestZlibDecompressor(t *testing.T) {
	original := bytes.Repeat([]byte("hello fst waves"), 50)

	var buf bytes.Buffer
	w := klzlib.NewWriter(&buf)
	_, err := w.Write(original)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := (ZlibDecompressor{}).Decompress(buf.Bytes(), len(original))
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestLZ4Decompressor(t *testing.T) {
	original := bytes.Repeat([]byte("ABCD1234"), 100)

	dst := make([]byte, lz4.CompressBlockBound(len(original)))
	var c lz4.Compressor
	n, err := c.CompressBlock(original, dst)
	require.NoError(t, err)

	got, err := (LZ4Decompressor{}).Decompress(dst[:n], len(original))
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestFastLZDecompressorLiteralAndMatch(t *testing.T) {
	// Encodes "ABCABC": a 3-byte literal run followed by a 3-byte
	// back-reference copy to offset 0. Traced by hand against the
	// level-1 algorithm (see fastlz.go doc comment).
	compressed := []byte{0x02, 'A', 'B', 'C', 0x20, 0x02}

	got, err := (FastLZDecompressor{}).Decompress(compressed, 6)
	require.NoError(t, err)
	require.Equal(t, []byte("ABCABC"), got)
}

func TestFastLZDecompressorPureLiteral(t *testing.T) {
	// A single literal run with no trailing control byte.
	compressed := []byte{0x03, 'W', 'A', 'V', 'E'}

	got, err := (FastLZDecompressor{}).Decompress(compressed, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("WAVE"), got)
}

func TestForPackType(t *testing.T) {
	require.IsType(t, FastLZDecompressor{}, ForPackType(format.PackFastLZ))
	require.IsType(t, LZ4Decompressor{}, ForPackType(format.PackLZ4))
	require.IsType(t, ZlibDecompressor{}, ForPackType(format.PackZlib))
	require.IsType(t, ZlibDecompressor{}, ForPackType(format.PackType('x')))
}

func TestMaybeZlib(t *testing.T) {
	raw := []byte("no compression needed")
	got, err := MaybeZlib(raw, len(raw))
	require.NoError(t, err)
	require.Equal(t, raw, got)
}
