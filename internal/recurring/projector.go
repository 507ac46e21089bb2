package recurring

import (
	"math"
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

const averageMonthDays = 30

// addMonthsClamped moves t forward by months and lands on day, or on the last
// day of the target month when it is shorter.
func addMonthsClamped(t time.Time, months, day int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if dim := daysInMonth(first.Year(), first.Month()); day > dim {
		day = dim
	}
	return first.AddDate(0, 0, day-1)
}

// nextAnchorDate picks the anchor day, clamped per month, in the month of last
// or one of the two following months. The earliest candidate after last that
// is closest to last plus one interval wins, so an occurrence that slipped past
// month end is followed by the anchor in its own month.
func nextAnchorDate(last time.Time, anchor int, medianInterval float64) time.Time {
	if medianInterval <= 0 {
		medianInterval = averageMonthDays
	}
	target := last.Add(time.Duration(medianInterval * float64(24*time.Hour)))

	var best time.Time
	var bestDistance time.Duration
	for k := 0; k <= 2; k++ {
		candidate := addMonthsClamped(last, k, anchor)
		if !candidate.After(last) {
			continue
		}
		distance := candidate.Sub(target)
		if distance < 0 {
			distance = -distance
		}
		if best.IsZero() || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// ProjectNextDate returns the next expected occurrence after last.
func ProjectNextDate(last time.Time, cadence model.CadenceInfo) time.Time {
	switch cadence.Frequency {
	case model.FrequencyDaily:
		return last.AddDate(0, 0, 1)
	case model.FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case model.FrequencyBiweekly:
		return last.AddDate(0, 0, 14)
	case model.FrequencyMonthly:
		if cadence.AnchorDayOfMonth == nil {
			return addMonthsClamped(last, 1, last.Day())
		}
		return nextAnchorDate(last, *cadence.AnchorDayOfMonth, cadence.MedianIntervalDays)
	case model.FrequencyBimonthly:
		return addMonthsClamped(last, 2, last.Day())
	case model.FrequencyQuarterly:
		return addMonthsClamped(last, 3, last.Day())
	case model.FrequencyYearly:
		return addMonthsClamped(last, 12, last.Day())
	default:
		days := int(math.Round(cadence.MedianIntervalDays))
		if days < 1 {
			days = 1
		}
		return last.AddDate(0, 0, days)
	}
}
