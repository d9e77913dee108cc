package vcd

import (
	"fmt"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/format"
)

// charToSymbol maps one ASCII value character to its two-bit symbol, per
// spec.md §4.7's multi-bit non-binary case (also reused by the
// initial-values pass, which is ASCII-encoded throughout).
func charToSymbol(c byte) (format.Symbol, error) {
	switch c {
	case '0':
		return format.Sym0, nil
	case '1':
		return format.Sym1, nil
	case 'x', 'X':
		return format.SymX, nil
	case 'z', 'Z':
		return format.SymZ, nil
	default:
		return 0, fmt.Errorf("%w: value character %q outside {0,1,X,Z}", errs.ErrUnsupportedFormat, c)
	}
}

// packSymbols packs a sequence of two-bit symbols LSB-first, four per
// byte, per spec.md §3's Value definition: symbol i lives at bit
// position (i mod 4)*2 within byte i/4.
func packSymbols(symbols []format.Symbol) []byte {
	out := make([]byte, (len(symbols)+3)/4)
	for i, s := range symbols {
		out[i/4] |= byte(s) << uint((i%4)*2)
	}

	return out
}

// unpackSymbols expands a packed Value payload back into one symbol per
// bit, the inverse of packSymbols.
func unpackSymbols(packed []byte, bits int) []format.Symbol {
	out := make([]format.Symbol, bits)
	for i := 0; i < bits; i++ {
		b := packed[i/4]
		out[i] = format.Symbol((b >> uint((i%4)*2)) & 0x3)
	}

	return out
}
