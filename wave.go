package fst

import (
	"fmt"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/vcd"
)

// ReadWave reconstructs VarId id's full (time, value) timeline across
// every value-change block (spec.md §4.7, §6). It is idempotent and
// changes no state of the Decoder.
func (d *Decoder) ReadWave(id int) ([]vcd.Change, error) {
	if id < 0 || id >= int(d.header.NumVars) {
		return nil, fmt.Errorf("%w: VarId %d out of range [0, %d)", errs.ErrMalformed, id, d.header.NumVars)
	}

	length := d.geometry.At(id)

	sources := make([]vcd.BlockSource, len(d.blocks))
	initial := make([]format.Value, 0, len(d.blocks))

	for i, block := range d.blocks {
		sources[i] = vcd.BlockSource{
			Info:  block.Info,
			Times: block.Times,
			Slice: d.blockSlices[i][id],
		}
		initial = append(initial, d.blockInitial[i][id])
	}

	return vcd.ReadWave(d.r, sources, length, initial)
}
