package recurring

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/service"
)

// variableAmountRatio marks a record as variable when its variance exceeds
// this share of the expected amount.
const variableAmountRatio = 0.1

// Progress receives one tick per processed pattern.
type Progress interface {
	Add(n int) error
}

// Persister stores detected patterns, skipping keys that already have an
// active record.
type Persister struct {
	store    service.PatternStore
	progress Progress
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithProgress reports per-pattern progress.
func WithProgress(p Progress) PersisterOption {
	return func(ps *Persister) {
		ps.progress = p
	}
}

// NewPersister creates a persister backed by store.
func NewPersister(store service.PatternStore, opts ...PersisterOption) *Persister {
	p := &Persister{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPatternRecord converts a detected pattern into an active, unconfirmed
// record. Amounts are stored as non-negative magnitudes rounded to cents.
func NewPatternRecord(p model.RecurringPattern) *model.PatternRecord {
	expected := decimal.NewFromFloat(math.Abs(p.ExpectedAmount)).Round(2)
	variance := decimal.NewFromFloat(math.Abs(p.AmountVariance)).Round(4)

	return &model.PatternRecord{
		MerchantGroupID:    p.MerchantGroupID,
		MerchantName:       p.MerchantName,
		Frequency:          p.Frequency,
		Direction:          p.Direction,
		CategoryID:         p.CategoryID,
		AccountID:          p.AccountID,
		InstrumentID:       p.InstrumentID,
		ExpectedAmount:     expected.InexactFloat64(),
		AmountVariance:     variance.InexactFloat64(),
		ConfidenceScore:    p.ConfidenceScore,
		OccurrenceCount:    p.OccurrenceCount,
		LastOccurrenceDate: p.LastOccurrenceDate,
		NextExpectedDate:   p.NextExpectedDate,
		IsAmountVariable:   variance.GreaterThan(expected.Mul(decimal.NewFromFloat(variableAmountRatio))),
		IsActive:           true,
	}
}

// SaveDetectedPatterns persists each pattern with its transaction matches.
// Failures are counted per pattern and never stop the batch. A pattern whose
// match rows fail to insert keeps its record and counts as an error.
// Cancellation of ctx stops the batch; patterns saved so far stay saved.
func (p *Persister) SaveDetectedPatterns(ctx context.Context, patterns []model.RecurringPattern) model.SaveSummary {
	var summary model.SaveSummary

	for _, pattern := range patterns {
		if ctx.Err() != nil {
			break
		}
		switch p.savePattern(ctx, pattern) {
		case outcomeSaved:
			summary.Saved++
		case outcomeSkipped:
			summary.Skipped++
		default:
			summary.Errors++
		}
		if p.progress != nil {
			_ = p.progress.Add(1)
		}
	}

	common.LogInfo("saved detected patterns", common.Fields{
		"saved":   summary.Saved,
		"skipped": summary.Skipped,
		"errors":  summary.Errors,
	})
	return summary
}

func (p *Persister) savePattern(ctx context.Context, pattern model.RecurringPattern) string {
	fields := common.Fields{
		"merchant_group_id": pattern.MerchantGroupID,
		"frequency":         pattern.Frequency,
		"direction":         pattern.Direction,
	}

	id, err := p.store.InsertPattern(ctx, NewPatternRecord(pattern))
	if errors.Is(err, common.ErrDuplicateEntry) {
		common.LogDebug("active pattern already exists", fields)
		persistOutcomes.WithLabelValues(outcomeSkipped).Inc()
		return outcomeSkipped
	}
	if err != nil {
		common.LogError(err, "failed to insert pattern", fields)
		persistOutcomes.WithLabelValues(outcomeError).Inc()
		return outcomeError
	}

	if err := p.store.InsertMatches(ctx, id, pattern.TransactionIDs); err != nil {
		fields["pattern_id"] = id
		common.LogError(err, "pattern saved without transaction matches", fields)
		persistOutcomes.WithLabelValues(outcomeError).Inc()
		return outcomeError
	}

	persistOutcomes.WithLabelValues(outcomeSaved).Inc()
	return outcomeSaved
}
