package vcd

import (
	"io"

	"github.com/fstwave/fst/compress"
	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/varint"

	"fmt"
)

// decodeTimes is the time decoder (spec.md §4.6.2): time_count
// delta-encoded unsigned varints, accumulated into an absolute,
// non-decreasing times vector.
func decodeTimes(r io.ReaderAt, info Info) ([]uint64, error) {
	raw := make([]byte, info.TimeCompressedLen)
	if _, err := r.ReadAt(raw, info.TimeDataOffset); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	payload, err := compress.MaybeZlib(raw, int(info.TimeUncompressedLen))
	if err != nil {
		return nil, err
	}

	times := make([]uint64, 0, info.TimeCount)
	var acc uint64

	for i := uint64(0); i < info.TimeCount; i++ {
		delta, n, err := varint.DecodeVarint(payload)
		if err != nil {
			return nil, fmt.Errorf("time entry %d: %w", i, err)
		}
		payload = payload[n:]

		acc += delta
		times = append(times, acc)
	}

	return times, nil
}
