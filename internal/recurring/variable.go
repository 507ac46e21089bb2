package recurring

import (
	"github.com/Veraticus/spice-recurring/internal/model"
)

// variableCandidate looks for a monthly bill whose amount legitimately moves,
// like a utility. The date anchor carries the evidence, so it must hold for
// 90% of occurrences, and the amount must actually vary; a steady amount is
// left to the fixed-amount clusterer.
func variableCandidate(segment []model.Transaction, minCV float64) (candidate, bool) {
	if len(segment) < minVariableOccurrences {
		return candidate{}, false
	}

	dates := transactionDates(segment)
	intervals := dayIntervals(dates)
	medianInterval := median(intervals)
	if classifyInterval(medianInterval) != model.FrequencyMonthly {
		return candidate{}, false
	}

	anchor := anchorDayOfMonth(dates)
	if dayOfMonthConsistency(dates, anchor, monthlyDayTolerance) < minVariableDateRatio {
		return candidate{}, false
	}

	if coefficientOfVariation(absAmounts(segment)) <= minCV {
		return candidate{}, false
	}

	return candidate{
		transactions: segment,
		cadence: model.CadenceInfo{
			Frequency:          model.FrequencyMonthly,
			MedianIntervalDays: medianInterval,
			MAD:                medianAbsoluteDeviation(intervals, medianInterval),
			AnchorDayOfMonth:   &anchor,
		},
		dateConsistency: variableDateWeight,
		source:          model.SourceVariableAmount,
	}, true
}
