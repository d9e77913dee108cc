// Package format defines the small wire-level enums shared by every FST
// decoder package: block tags, variable-length-table sentinels, wave
// compression pack types and the four-valued logic symbol set.
package format

import "fmt"

// BlockType identifies the type of a top-level framed block (spec.md §4.2).
type BlockType uint8

const (
	BlockHeader          BlockType = 0
	BlockVCData          BlockType = 1
	BlockBlackout        BlockType = 2
	BlockGeometry        BlockType = 3
	BlockHierarchy       BlockType = 4
	BlockVCDataDynAlias  BlockType = 5
	BlockHierarchyLZ4    BlockType = 6
	BlockHierarchyLZ4Duo BlockType = 7
	BlockVCDataDynAlias2 BlockType = 8
	BlockZWrapper        BlockType = 254
	BlockSkip            BlockType = 255
)

func (b BlockType) String() string {
	switch b {
	case BlockHeader:
		return "HDR"
	case BlockVCData:
		return "VCDATA"
	case BlockBlackout:
		return "BLACKOUT"
	case BlockGeometry:
		return "GEOM"
	case BlockHierarchy:
		return "HIER"
	case BlockVCDataDynAlias:
		return "VCDATA_DYN_ALIAS"
	case BlockHierarchyLZ4:
		return "HIER_LZ4"
	case BlockHierarchyLZ4Duo:
		return "HIER_LZ4DUO"
	case BlockVCDataDynAlias2:
		return "VCDATA_DYN_ALIAS2"
	case BlockZWrapper:
		return "ZWRAPPER"
	case BlockSkip:
		return "SKIP"
	default:
		return fmt.Sprintf("BlockType(%d)", uint8(b))
	}
}

// IsHierarchyVariant reports whether b is any of the three on-wire
// encodings of a hierarchy block (raw, LZ4, LZ4-duo).
func (b BlockType) IsHierarchyVariant() bool {
	return b == BlockHierarchy || b == BlockHierarchyLZ4 || b == BlockHierarchyLZ4Duo
}

// PackType identifies the compression scheme used for a value-change
// block's waves region (spec.md §4.6, §4.7).
type PackType uint8

const (
	PackFastLZ PackType = 'F'
	PackLZ4    PackType = '4'
	// Any other byte value selects Zlib; PackZlib is the canonical value
	// written by modern fstapi writers.
	PackZlib PackType = 'Z'
)

func (p PackType) String() string {
	switch p {
	case PackFastLZ:
		return "FastLZ"
	case PackLZ4:
		return "LZ4"
	default:
		return "Zlib"
	}
}

// Symbol is one of the four logic values this decoder supports.
type Symbol uint8

const (
	Sym0 Symbol = 0
	Sym1 Symbol = 1
	SymX Symbol = 2
	SymZ Symbol = 3
)

func (s Symbol) String() string {
	switch s {
	case Sym0:
		return "0"
	case Sym1:
		return "1"
	case SymX:
		return "X"
	case SymZ:
		return "Z"
	default:
		return "?"
	}
}

// VarLengthKind distinguishes a plain bit-vector variable from a
// real-typed (floating point) one (spec.md §3 VarLengths).
type VarLengthKind uint8

const (
	KindBits VarLengthKind = iota
	KindReal
)

// VarLength is the declared width of one variable, as recorded by the
// geometry block.
type VarLength struct {
	Kind VarLengthKind
	Bits uint32
}

// IsReal reports whether this variable carries an 8-byte real payload
// instead of a packed bit vector.
func (v VarLength) IsReal() bool { return v.Kind == KindReal }

func (v VarLength) String() string {
	if v.IsReal() {
		return "Real"
	}

	return fmt.Sprintf("Bits(%d)", v.Bits)
}

// PackedLen returns the number of bytes needed to hold v.Bits two-bit
// symbols, ceil(bits/4), or 8 for a real value.
func (v VarLength) PackedLen() int {
	if v.IsReal() {
		return 8
	}

	return int((v.Bits + 3) / 4)
}

// Value is a single decoded value-change datum: either a packed
// bit-vector of two-bit symbols (spec.md §3 Value) or an opaque 8-byte
// real payload carried through verbatim (spec.md §9 design note (b)).
type Value struct {
	IsReal  bool
	Real    uint64 // raw little-endian 8 bytes, reinterpreted as a bit pattern; never arithmetically used
	Bits    []byte // PackedLen(NumBits) bytes, four two-bit symbols per byte, LSB-first
	NumBits int
}

// Symbol returns the two-bit symbol at bit index i of a non-real Value.
func (v Value) Symbol(i int) Symbol {
	b := v.Bits[i/4]
	return Symbol((b >> uint((i%4)*2)) & 0x3)
}

func (v Value) String() string {
	if v.IsReal {
		return fmt.Sprintf("Real(0x%016X)", v.Real)
	}

	out := make([]byte, v.NumBits)
	for i := range out {
		out[i] = "01XZ"[v.Symbol(i)]
	}

	return string(out)
}
