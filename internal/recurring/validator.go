package recurring

import (
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// monthDayDistance is the distance in days between a date and an anchor day,
// wrapping around the end of the date's month. Anchors past the month's last
// day are clamped to it, so an anchor of 31 matches Feb 28.
func monthDayDistance(date time.Time, anchor int) int {
	dim := daysInMonth(date.Year(), date.Month())
	if anchor > dim {
		anchor = dim
	}
	d := date.Day() - anchor
	if d < 0 {
		d = -d
	}
	if wrapped := dim - d; wrapped < d {
		return wrapped
	}
	return d
}

func weekdayDistance(day, anchor time.Weekday) int {
	d := int(day) - int(anchor)
	if d < 0 {
		d = -d
	}
	if wrapped := 7 - d; wrapped < d {
		return wrapped
	}
	return d
}

// dayOfMonthConsistency is the share of dates within tolerance of the anchor.
func dayOfMonthConsistency(dates []time.Time, anchor, tolerance int) float64 {
	if len(dates) == 0 {
		return 0
	}
	within := 0
	for _, d := range dates {
		if monthDayDistance(d, anchor) <= tolerance {
			within++
		}
	}
	return float64(within) / float64(len(dates))
}

func weekdayConsistency(dates []time.Time, anchor time.Weekday, tolerance int) float64 {
	if len(dates) == 0 {
		return 0
	}
	within := 0
	for _, d := range dates {
		if weekdayDistance(d.Weekday(), anchor) <= tolerance {
			within++
		}
	}
	return float64(within) / float64(len(dates))
}

// ValidateDates checks that occurrences stay near the cadence anchor and
// returns the date consistency used for scoring. Frequencies without an
// anchor pass with a neutral consistency.
func ValidateDates(dates []time.Time, cadence model.CadenceInfo) (float64, bool) {
	var consistency float64

	switch {
	case cadence.Frequency == model.FrequencyMonthly && cadence.AnchorDayOfMonth != nil:
		consistency = dayOfMonthConsistency(dates, *cadence.AnchorDayOfMonth, monthlyDayTolerance)
	case (cadence.Frequency == model.FrequencyWeekly || cadence.Frequency == model.FrequencyBiweekly) &&
		cadence.AnchorDayOfWeek != nil:
		consistency = weekdayConsistency(dates, *cadence.AnchorDayOfWeek, weeklyDayTolerance)
	default:
		return baselineDateScore, true
	}

	if consistency < minDateConsistency {
		return 0, false
	}
	return consistency, true
}
