package hierarchy

import (
	"encoding/binary"
	"fmt"

	"github.com/fstwave/fst/compress"
	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
)

// Decode returns the raw record stream of a hierarchy block body,
// dispatching on blockType for the three on-wire encodings (spec.md
// §4.5): raw (HIER), single LZ4 (HIER_LZ4), or double LZ4 (HIER_LZ4DUO).
func Decode(body []byte, blockType format.BlockType) ([]byte, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: hierarchy body too short", errs.ErrMalformed)
	}

	uncompressedLen := binary.BigEndian.Uint64(body[0:8])
	rest := body[8:]

	switch blockType {
	case format.BlockHierarchy:
		if uint64(len(rest)) != uncompressedLen {
			return nil, fmt.Errorf("%w: raw hierarchy length mismatch", errs.ErrMalformed)
		}

		return rest, nil

	case format.BlockHierarchyLZ4:
		return compress.ForPackType(format.PackLZ4).Decompress(rest, int(uncompressedLen))

	case format.BlockHierarchyLZ4Duo:
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: hierarchy-duo body too short", errs.ErrMalformed)
		}
		intermediateLen := binary.BigEndian.Uint64(rest[0:8])
		payload := rest[8:]

		intermediate, err := compress.ForPackType(format.PackLZ4).Decompress(payload, int(intermediateLen))
		if err != nil {
			return nil, err
		}

		return compress.ForPackType(format.PackLZ4).Decompress(intermediate, int(uncompressedLen))

	default:
		return nil, fmt.Errorf("%w: block type %s is not a hierarchy variant", errs.ErrMalformed, blockType)
	}
}

// Parse decodes a hierarchy block: Decode followed by the tag-prefixed
// record walk (spec.md §4.5).
func Parse(body []byte, blockType format.BlockType) (*Tree, error) {
	data, err := Decode(body, blockType)
	if err != nil {
		return nil, err
	}

	return parseRecords(data)
}
