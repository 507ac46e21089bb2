package recurring

import (
	"math"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// gapThreshold returns the longest interval, in days, that still continues a
// run. Monthly-scale series tolerate at least 45 days, weekly-scale 21.
func gapThreshold(medianInterval float64) float64 {
	if medianInterval >= monthlyScaleDays {
		return math.Max(2*medianInterval, monthlyGapFloorDays)
	}
	return math.Max(2*medianInterval, weeklyGapFloorDays)
}

// Segment splits a chronological run wherever the gap between neighbours
// exceeds the frequency-aware threshold.
func Segment(txns []model.Transaction) [][]model.Transaction {
	if len(txns) == 0 {
		return nil
	}

	intervals := dayIntervals(transactionDates(txns))
	threshold := gapThreshold(median(intervals))

	var segments [][]model.Transaction
	start := 0
	for i, interval := range intervals {
		if interval > threshold {
			segments = append(segments, txns[start:i+1])
			start = i + 1
		}
	}
	return append(segments, txns[start:])
}

// EligibleSegment returns the most recent segment. A dormant history followed
// by a short recent run yields nothing.
func EligibleSegment(txns []model.Transaction) ([]model.Transaction, bool) {
	segments := Segment(txns)
	if len(segments) == 0 {
		return nil, false
	}
	last := segments[len(segments)-1]
	if len(last) < minOccurrences {
		return nil, false
	}
	return last, true
}
