package recurring

import (
	"math"
	"sort"
	"time"
)

// median returns the median of values without modifying the input.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// medianAbsoluteDeviation is the median of |v - median(values)|.
func medianAbsoluteDeviation(values []float64, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - center)
	}
	return median(deviations)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleVariance uses the n-1 denominator; fewer than two values have no spread.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values)-1)
}

// coefficientOfVariation is the sample standard deviation over the mean.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return math.Sqrt(sampleVariance(values)) / m
}

// civilDate drops the clock so day arithmetic is unaffected by DST or posting times.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(civilDate(b).Sub(civilDate(a)).Hours() / 24)
}

// dayIntervals returns the day gaps between consecutive dates.
func dayIntervals(dates []time.Time) []float64 {
	if len(dates) < 2 {
		return nil
	}
	intervals := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		intervals = append(intervals, float64(daysBetween(dates[i-1], dates[i])))
	}
	return intervals
}

// monthsSpanned counts calendar month boundaries between first and last.
func monthsSpanned(first, last time.Time) int {
	return (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// mostCommonInt returns the most frequent value; ties go to the value seen first.
func mostCommonInt(values []int) int {
	counts := make(map[int]int, len(values))
	order := make([]int, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := 0, 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
