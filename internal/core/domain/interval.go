package domain

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End) on a single calendar day.
// A booking ending exactly when another starts does not conflict.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Validate enforces chronology and the no-midnight-spanning rule.
func (i Interval) Validate() error {
	if !i.Start.Before(i.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidInterval, i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
	}

	sy, sm, sd := i.Start.Date()
	ey, em, ed := i.End.Date()
	if sy != ey || sm != em || sd != ed {
		return fmt.Errorf("%w: interval spans midnight", ErrInvalidInterval)
	}

	return nil
}

// MergeIntervals returns the ascending, non-overlapping union of the input.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) <= 1 {
		return intervals
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Start.Before(sorted[b].Start)
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}

// FreeSlots partitions [open, close) into granularity-sized buckets and
// returns the maximal free sub-intervals left after subtracting busy.
// Buckets that overlap any busy interval are dropped; consecutive free
// buckets are coalesced, so gaps between bookings are preserved as-is.
func FreeSlots(busy []Interval, open, close time.Time, granularity time.Duration) []Interval {
	if granularity <= 0 || !open.Before(close) {
		return nil
	}

	merged := MergeIntervals(busy)

	var free []Interval
	for t := open; t.Add(granularity).Sub(close) <= 0; t = t.Add(granularity) {
		bucket := Interval{Start: t, End: t.Add(granularity)}

		blocked := false
		for _, b := range merged {
			if bucket.Overlaps(b) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		if n := len(free); n > 0 && free[n-1].End.Equal(bucket.Start) {
			free[n-1].End = bucket.End
		} else {
			free = append(free, bucket)
		}
	}

	return free
}
