// Package errs defines the sentinel errors returned by every fst
// decoder package. Call sites wrap these with fmt.Errorf("%w: ...") to
// add context; callers that need to distinguish error kinds should use
// errors.Is against the vars below rather than string matching.
package errs

import "errors"

var (
	// ErrNotAnFstFile is returned when the header's real-endianness
	// sentinel does not match either known byte order.
	ErrNotAnFstFile = errors.New("fst: not an FST file")

	// ErrUnsupportedFormat is returned for on-wire constructs this
	// decoder intentionally does not support: legacy VCDATA blocks,
	// ZWRAPPER/SKIP framing, and 9-valued logic outside {0,1,X,Z}.
	ErrUnsupportedFormat = errors.New("fst: unsupported format")

	// ErrMalformed is returned for any structural violation: bad block
	// ordering, truncated lengths, forward-pointing aliases, varint
	// overflow, cursor mismatches.
	ErrMalformed = errors.New("fst: malformed file")

	// ErrIO wraps an underlying read failure against the file source.
	ErrIO = errors.New("fst: io error")

	// ErrDecompress is returned when a compression backend fails or
	// produces an output of the wrong length.
	ErrDecompress = errors.New("fst: decompression error")
)
