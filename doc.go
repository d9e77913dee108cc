// Package fst reads GtkWave FST (Fast Signal Trace) waveform files: a
// compact, block-structured binary format recording digital-simulation
// value changes over time.
//
// Load parses a file's header, geometry, hierarchy, blackout intervals
// and the metadata (including times and initial values) of every
// value-change block. Wave payloads themselves are decompressed lazily,
// one variable at a time, by ReadWave.
//
//	dec, err := fst.Load("trace.fst")
//	if err != nil {
//		// handle error
//	}
//	changes, err := dec.ReadWave(0)
//
// Modeled on the root package of github.com/arloliu/mebo, which is a
// thin constructor layer over its blob package's real decoding
// machinery; this package plays the same role over vcd/hierarchy/
// geometry/section.
package fst
