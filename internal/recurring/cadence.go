package recurring

import (
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

type frequencyBand struct {
	frequency model.Frequency
	min, max  float64
}

// frequencyBands map a median interval in days to a frequency class.
var frequencyBands = []frequencyBand{
	{model.FrequencyWeekly, 6, 8},
	{model.FrequencyBiweekly, 12, 16},
	{model.FrequencyMonthly, 25, 35},
	{model.FrequencyQuarterly, 80, 100},
	{model.FrequencyYearly, 360, 370},
}

func classifyInterval(medianInterval float64) model.Frequency {
	for _, band := range frequencyBands {
		if medianInterval >= band.min && medianInterval <= band.max {
			return band.frequency
		}
	}
	return model.FrequencyCustom
}

// InferCadence derives the frequency, dispersion and anchor of a series of
// dates. It reports false when the series is too frequent or too irregular to
// be a recurrence.
func InferCadence(dates []time.Time) (model.CadenceInfo, bool) {
	intervals := dayIntervals(dates)
	if len(intervals) == 0 {
		return model.CadenceInfo{}, false
	}

	tooFrequent := true
	for _, interval := range intervals {
		if interval >= minIntervalDays {
			tooFrequent = false
			break
		}
	}
	if tooFrequent {
		return model.CadenceInfo{}, false
	}

	medianInterval := median(intervals)
	if medianInterval <= 0 {
		return model.CadenceInfo{}, false
	}
	mad := medianAbsoluteDeviation(intervals, medianInterval)
	if mad/medianInterval > maxMADRatio {
		return model.CadenceInfo{}, false
	}

	frequency := classifyInterval(medianInterval)
	if frequency == model.FrequencyCustom && len(dates) < minCustomOccurrences {
		return model.CadenceInfo{}, false
	}

	cadence := model.CadenceInfo{
		Frequency:          frequency,
		MedianIntervalDays: medianInterval,
		MAD:                mad,
	}

	switch frequency {
	case model.FrequencyWeekly, model.FrequencyBiweekly:
		weekday := anchorWeekday(dates)
		cadence.AnchorDayOfWeek = &weekday
	case model.FrequencyMonthly:
		day := anchorDayOfMonth(dates)
		cadence.AnchorDayOfMonth = &day
	}

	return cadence, true
}

func anchorWeekday(dates []time.Time) time.Weekday {
	days := make([]int, len(dates))
	for i, d := range dates {
		days[i] = int(d.Weekday())
	}
	return time.Weekday(mostCommonInt(days))
}

func anchorDayOfMonth(dates []time.Time) int {
	days := make([]int, len(dates))
	for i, d := range dates {
		days[i] = d.Day()
	}
	return mostCommonInt(days)
}
