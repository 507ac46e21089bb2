package recurring

import (
	"math"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// ScoreInput carries the evidence for a candidate pattern.
type ScoreInput struct {
	Frequency       model.Frequency
	Occurrences     int
	MedianInterval  float64
	MAD             float64
	AmountMedian    float64
	AmountVariance  float64
	MonthsSpanned   int
	DateConsistency float64
}

// Score combines sample size, interval regularity, amount stability, time
// span and date consistency into a confidence in [0, 1].
//
// Weekly series need at least six occurrences over two months, and lose 0.2
// when the amount variance exceeds 10% of the squared median.
func Score(in ScoreInput) float64 {
	if in.Frequency == model.FrequencyWeekly &&
		(in.Occurrences < 6 || in.MonthsSpanned < 2) {
		return 0
	}

	occurrenceScore := math.Min(float64(in.Occurrences)/10, 0.3)

	regularityScore := 0.0
	if in.MedianInterval > 0 {
		regularityScore = math.Max(0, 1-in.MAD/in.MedianInterval)
	}

	amountConsistency := 0.0
	if in.AmountMedian > 0 {
		amountConsistency = math.Max(0, 1-in.AmountVariance/(in.AmountMedian*in.AmountMedian))
	}

	timeSpanScore := math.Min(float64(in.MonthsSpanned)/12, 0.2)

	weeklyPenalty := 0.0
	if in.Frequency == model.FrequencyWeekly &&
		in.AmountVariance > 0.1*in.AmountMedian*in.AmountMedian {
		weeklyPenalty = -0.2
	}

	score := occurrenceScore +
		0.3*regularityScore +
		0.2*amountConsistency +
		timeSpanScore +
		0.2*in.DateConsistency +
		weeklyPenalty

	return math.Max(0, math.Min(1, score))
}
