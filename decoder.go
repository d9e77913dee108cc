package fst

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/geometry"
	"github.com/fstwave/fst/hierarchy"
	"github.com/fstwave/fst/section"
	"github.com/fstwave/fst/vcd"
)

// Decoder holds one fully-parsed FST file: header, geometry, hierarchy,
// blackout intervals and every value-change block's metadata. Wave
// payloads are decoded lazily by ReadWave.
//
// A Decoder is built once by Load/LoadReader and is immutable afterward;
// ReadWave reads the underlying io.ReaderAt at absolute offsets and
// keeps no file cursor of its own (spec.md §5). Concurrent ReadWave calls against
// the same Decoder from multiple goroutines are not safe without
// external synchronization, matching the single-handle contract of the
// spec's resource model (see DESIGN.md).
type Decoder struct {
	r    io.ReaderAt
	size int64

	header   section.Header
	geometry geometry.Table
	tree     *hierarchy.Tree

	blocks       []vcd.Data
	blockSlices  [][]vcd.Slice         // [blockIdx][varID]
	blockInitial [][]format.Value      // [blockIdx][varID]
	blackouts    []Blackout
}

// Load opens and fully parses path.
func Load(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	dec, err := LoadReader(f, info.Size())
	if err != nil {
		f.Close()

		return nil, err
	}

	return dec, nil
}

// LoadReader parses an FST file already opened as an io.ReaderAt of the
// given size, e.g. a bytes.Reader over an in-memory buffer.
func LoadReader(r io.ReaderAt, size int64) (*Decoder, error) {
	dec := &Decoder{r: r, size: size}
	if err := dec.load(); err != nil {
		return nil, err
	}

	return dec, nil
}

// load walks the top-level typed, length-prefixed block
// sequence (spec.md §4.2).
func (d *Decoder) load() error {
	var (
		headerSeen   bool
		blackoutSeen bool
		geomSeen     bool
		hierSeen     bool
		first        = true
	)

	pos := int64(0)

	for pos < d.size {
		var typeByte [1]byte
		if _, err := d.r.ReadAt(typeByte[:], pos); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		blockType := format.BlockType(typeByte[0])

		var lenBuf [8]byte
		if _, err := d.r.ReadAt(lenBuf[:], pos+1); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		blockLen := binary.BigEndian.Uint64(lenBuf[:])
		if blockLen < 8 {
			return fmt.Errorf("%w: block length %d < 8", errs.ErrMalformed, blockLen)
		}

		bodyStart := pos + 9
		bodyEnd := pos + 1 + int64(blockLen)
		if bodyEnd > d.size {
			return fmt.Errorf("%w: block extends past end of file", errs.ErrMalformed)
		}

		if first {
			if blockType != format.BlockHeader {
				return fmt.Errorf("%w: first block is %s, not HDR", errs.ErrMalformed, blockType)
			}
			first = false
		} else {
			switch blockType {
			case format.BlockVCData, format.BlockVCDataDynAlias, format.BlockZWrapper, format.BlockSkip:
				return fmt.Errorf("%w: block type %s", errs.ErrUnsupportedFormat, blockType)
			case format.BlockHeader:
				return fmt.Errorf("%w: duplicate HDR block", errs.ErrMalformed)
			case format.BlockBlackout:
				if blackoutSeen {
					return fmt.Errorf("%w: duplicate BLACKOUT block", errs.ErrMalformed)
				}
			case format.BlockGeometry:
				if geomSeen {
					return fmt.Errorf("%w: duplicate GEOM block", errs.ErrMalformed)
				}
			case format.BlockHierarchy, format.BlockHierarchyLZ4, format.BlockHierarchyLZ4Duo:
				if hierSeen {
					return fmt.Errorf("%w: duplicate HIER block", errs.ErrMalformed)
				}
			case format.BlockVCDataDynAlias2:
				// Always acceptable, any number of times.
			default:
				return fmt.Errorf("%w: unknown block type %d", errs.ErrMalformed, typeByte[0])
			}
		}

		if err := d.dispatch(blockType, bodyStart, bodyEnd); err != nil {
			return err
		}

		switch blockType {
		case format.BlockHeader:
			headerSeen = true
		case format.BlockBlackout:
			blackoutSeen = true
		case format.BlockGeometry:
			geomSeen = true
		case format.BlockHierarchy, format.BlockHierarchyLZ4, format.BlockHierarchyLZ4Duo:
			hierSeen = true
		}

		pos = bodyEnd
	}

	if !headerSeen || !geomSeen || !hierSeen {
		return fmt.Errorf("%w: file ended before HDR/GEOM/HIER were all seen", errs.ErrMalformed)
	}

	return d.finalizeInitialValues()
}

func (d *Decoder) dispatch(blockType format.BlockType, bodyStart, bodyEnd int64) error {
	switch blockType {
	case format.BlockHeader:
		body := make([]byte, bodyEnd-bodyStart)
		if _, err := d.r.ReadAt(body, bodyStart); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		h, err := section.Parse(body)
		if err != nil {
			return err
		}
		d.header = h

		return nil

	case format.BlockGeometry:
		body := make([]byte, bodyEnd-bodyStart)
		if _, err := d.r.ReadAt(body, bodyStart); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		table, err := geometry.Parse(body)
		if err != nil {
			return err
		}
		d.geometry = table

		return nil

	case format.BlockHierarchy, format.BlockHierarchyLZ4, format.BlockHierarchyLZ4Duo:
		body := make([]byte, bodyEnd-bodyStart)
		if _, err := d.r.ReadAt(body, bodyStart); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		tree, err := hierarchy.Parse(body, blockType)
		if err != nil {
			return err
		}
		d.tree = tree

		return nil

	case format.BlockBlackout:
		body := make([]byte, bodyEnd-bodyStart)
		if _, err := d.r.ReadAt(body, bodyStart); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrIO, err)
		}
		blackouts, err := parseBlackout(body)
		if err != nil {
			return err
		}
		d.blackouts = blackouts

		return nil

	case format.BlockVCDataDynAlias2:
		numVars := int(d.header.NumVars)
		data, slices, err := vcd.Parse(d.r, bodyStart, bodyEnd, numVars)
		if err != nil {
			return err
		}
		d.blocks = append(d.blocks, data)
		d.blockSlices = append(d.blockSlices, slices)

		return nil

	default:
		return fmt.Errorf("%w: cannot dispatch block type %s", errs.ErrMalformed, blockType)
	}
}

// finalizeInitialValues runs the initial-values pass (spec.md §4.6
// second paragraph) once every block's metadata and the geometry table
// are both available.
func (d *Decoder) finalizeInitialValues() error {
	lengths := d.geometry.All()
	d.blockInitial = make([][]format.Value, len(d.blocks))

	for i, block := range d.blocks {
		values, err := vcd.DecodeInitialValues(d.r, block.Info, lengths)
		if err != nil {
			return fmt.Errorf("block %d initial values: %w", i, err)
		}
		d.blockInitial[i] = values
	}

	return nil
}

// Header returns the decoded file header.
func (d *Decoder) Header() section.Header { return d.header }

// Hierarchy returns the read-only scope/variable tree.
func (d *Decoder) Hierarchy() *hierarchy.Tree { return d.tree }

// VarLength returns VarId id's declared length.
func (d *Decoder) VarLength(id int) format.VarLength { return d.geometry.At(id) }

// VarLengths returns every declared length, in VarId order (SPEC_FULL.md
// §5 bulk accessor, alongside the single-VarId lookup named in spec.md §6).
func (d *Decoder) VarLengths() []format.VarLength { return d.geometry.All() }

// Blackouts returns the ordered list of raw blackout activity changes
// (spec.md §4.8).
func (d *Decoder) Blackouts() []Blackout { return d.blackouts }

// BlackoutRanges pairs each DumpOn with its closing DumpOff, a
// SPEC_FULL.md supplemented derived view (§5).
func (d *Decoder) BlackoutRanges() []BlackoutRange {
	return blackoutRanges(d.blackouts, uint64(d.header.EndTime))
}
