package fst

import (
	"fmt"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/varint"
)

// Activity is a blackout record's dump state (spec.md §4.8).
type Activity uint8

const (
	DumpOff Activity = 0
	DumpOn  Activity = 1
)

func (a Activity) String() string {
	if a == DumpOn {
		return "DumpOn"
	}

	return "DumpOff"
}

// Blackout is one decoded blackout record: an activity change at an
// absolute time.
type Blackout struct {
	Activity Activity
	Time     uint64
}

// BlackoutRange pairs a DumpOn with its next DumpOff (or the file's end
// time, if the trace is still blacked out when it ends). This is a
// SPEC_FULL.md supplemented view (§5) over the raw record list, the way
// original_source exposes blackouts to the viewer's dimmed-region
// rendering.
type BlackoutRange struct {
	Start uint64
	End   uint64
}

// parseBlackout decodes a BLACKOUT block body (spec.md §4.8): an
// unsigned varint count followed by that many {activity byte, delta
// varint} records, times cumulative from 0.
func parseBlackout(body []byte) ([]Blackout, error) {
	count, n, err := varint.DecodeVarint(body)
	if err != nil {
		return nil, fmt.Errorf("blackout count: %w", err)
	}
	body = body[n:]

	out := make([]Blackout, 0, count)
	var acc uint64

	for i := uint64(0); i < count; i++ {
		if len(body) < 1 {
			return nil, fmt.Errorf("%w: truncated blackout record %d", errs.ErrMalformed, i)
		}
		activity := Activity(0)
		if body[0] != 0 {
			activity = DumpOn
		}
		body = body[1:]

		delta, n, err := varint.DecodeVarint(body)
		if err != nil {
			return nil, fmt.Errorf("blackout record %d delta: %w", i, err)
		}
		body = body[n:]
		acc += delta

		out = append(out, Blackout{Activity: activity, Time: acc})
	}

	return out, nil
}

// blackoutRanges pairs each DumpOn with its next DumpOff, or fileEnd if
// the blackout is still active at the end of the trace.
func blackoutRanges(blackouts []Blackout, fileEnd uint64) []BlackoutRange {
	var ranges []BlackoutRange

	for i, b := range blackouts {
		if b.Activity != DumpOn {
			continue
		}

		end := fileEnd
		for j := i + 1; j < len(blackouts); j++ {
			if blackouts[j].Activity == DumpOff {
				end = blackouts[j].Time

				break
			}
		}

		ranges = append(ranges, BlackoutRange{Start: b.Time, End: end})
	}

	return ranges
}
