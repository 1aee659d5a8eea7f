// Package metrics implements the L3 catalogue: thirteen computations over
// the L1/L2 collections, each emitting one JSON artifact per
// (pool, queue, min_friends) configuration with an optional date window.
package metrics

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Window is an optional [start, end] date restriction applied to
// gameStartTimestamp. Dates are UTC; the end bound is inclusive of the
// whole day.
type Window struct {
	Start string // YYYY-MM-DD, empty = unbounded
	End   string // YYYY-MM-DD, empty = unbounded
}

// IsZero reports whether no window is set.
func (w Window) IsZero() bool {
	return w.Start == "" && w.End == ""
}

// Bounds returns the window as millisecond timestamps:
// [start 00:00:00Z, end 23:59:59.999Z]. A zero side stays zero.
func (w Window) Bounds() (startMs, endMs int64, err error) {
	if w.Start != "" {
		t, err := time.ParseInLocation(dateLayout, w.Start, time.UTC)
		if err != nil {
			return 0, 0, fmt.Errorf("parse start date %q: %w", w.Start, err)
		}
		startMs = t.UnixMilli()
	}
	if w.End != "" {
		t, err := time.ParseInLocation(dateLayout, w.End, time.UTC)
		if err != nil {
			return 0, 0, fmt.Errorf("parse end date %q: %w", w.End, err)
		}
		endMs = t.Add(24*time.Hour - time.Millisecond).UnixMilli()
	}
	if startMs != 0 && endMs != 0 && startMs > endMs {
		return 0, 0, fmt.Errorf("window start %s after end %s", w.Start, w.End)
	}
	return startMs, endMs, nil
}

// dayOf formats a millisecond timestamp as its UTC date.
func dayOf(tsMillis int64) string {
	return time.UnixMilli(tsMillis).UTC().Format(dateLayout)
}
