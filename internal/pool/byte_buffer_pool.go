// Package pool provides a pooled, growable scratch byte buffer used by
// the compress package's Zlib decompressor as scratch space for
// wave/bits/time decompression calls.
//
// Adapted from mebo's internal/pool/byte_buffer_pool.go: the write-side
// helpers that package needs for encoding (MustWrite, WriteTo) have no
// use here since this module never writes FST files, so only the
// growable-scratch-space half survives.
package pool

import "sync"

// DefaultSize is the initial capacity handed out by the default pool.
// Most FST value-change block payloads decompress to well under this.
const DefaultSize = 64 * 1024

// MaxThreshold is the largest buffer capacity the pool will retain.
// Oversized buffers (from an unusually wide variable or block) are
// simply discarded instead of bloating the pool.
const MaxThreshold = 4 * 1024 * 1024

// ByteBuffer is a reusable, growable byte slice.
type ByteBuffer struct {
	B []byte
}

// Bytes returns the current contents of the buffer.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Grow ensures the buffer has at least n bytes of spare capacity,
// reallocating if necessary. Existing contents are preserved.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := DefaultSize
	if cap(bb.B) > 4*DefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < n {
		growBy = n
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// SetLength sets the buffer's length to n, which must be within its
// current capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("pool: SetLength out of range")
	}
	bb.B = bb.B[:n]
}

// byteBufferPool pools ByteBuffers of a given default size.
type byteBufferPool struct {
	pool sync.Pool
}

func newByteBufferPool(defaultSize int) *byteBufferPool {
	return &byteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return &ByteBuffer{B: make([]byte, 0, defaultSize)}
			},
		},
	}
}

func (p *byteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

func (p *byteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if cap(bb.B) > MaxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var defaultPool = newByteBufferPool(DefaultSize)

// Get retrieves a scratch ByteBuffer from the default pool.
func Get() *ByteBuffer { return defaultPool.Get() }

// Put returns a scratch ByteBuffer to the default pool for reuse.
func Put(bb *ByteBuffer) { defaultPool.Put(bb) }
