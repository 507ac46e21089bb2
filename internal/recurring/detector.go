package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// Detector runs the detection pipeline over one ledger owner's transactions.
type Detector struct {
	now func() time.Time
	cfg Config
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the wall clock used for the lookback window and the
// recency gate.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Detect runs detection with the default configuration and the given lookback.
func Detect(ctx context.Context, transactions []model.Transaction, lookbackMonths int) ([]model.RecurringPattern, error) {
	cfg := DefaultConfig()
	cfg.LookbackMonths = lookbackMonths

	d, err := NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, transactions)
}

// Since returns the start of the lookback window relative to now.
func (d *Detector) Since(now time.Time) time.Time {
	return now.AddDate(0, -d.cfg.LookbackMonths, 0)
}

// Detect returns the recurring patterns found in transactions. Candidate
// groups are independent and are evaluated concurrently; the result is ordered
// by group key. The only error is cancellation of ctx.
func (d *Detector) Detect(ctx context.Context, transactions []model.Transaction) ([]model.RecurringPattern, error) {
	start := time.Now()
	defer func() {
		detectionDuration.Observe(time.Since(start).Seconds())
	}()

	now := d.now()
	groups := GroupCandidates(transactions, d.Since(now), now)

	results := make([][]model.RecurringPattern, len(groups))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = d.detectGroup(group, now)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("detection cancelled: %w", err)
	}

	var patterns []model.RecurringPattern
	for _, found := range results {
		patterns = append(patterns, found...)
	}

	slog.Debug("recurring detection finished",
		"transactions", len(transactions),
		"groups", len(groups),
		"patterns", len(patterns),
		"duration", time.Since(start))

	return patterns, nil
}

// detectGroup evaluates one candidate group. Fixed-amount clusters are tried
// first; the variable-amount detector runs when no monthly pattern came out
// of them.
func (d *Detector) detectGroup(group CandidateGroup, now time.Time) []model.RecurringPattern {
	segment, ok := EligibleSegment(group.Transactions)
	if !ok {
		reject(stageSegment)
		return nil
	}

	var patterns []model.RecurringPattern
	for _, cluster := range ClusterByAmount(segment, d.cfg.AmountToleranceAbs, d.cfg.AmountTolerancePct) {
		c, ok := fixedCandidate(cluster)
		if !ok {
			continue
		}
		if p, ok := d.finalize(group, c, now); ok {
			patterns = append(patterns, p)
		}
	}

	if len(segment) >= minVariableOccurrences && !hasFrequency(patterns, model.FrequencyMonthly) {
		c, ok := variableCandidate(segment, d.cfg.MinVariableCV)
		if !ok {
			reject(stageVariable)
			return patterns
		}
		if p, ok := d.finalize(group, c, now); ok {
			patterns = append(patterns, p)
		}
	}

	return patterns
}

// fixedCandidate runs cadence inference and date validation on an amount cluster.
func fixedCandidate(cluster []model.Transaction) (candidate, bool) {
	dates := transactionDates(cluster)

	cadence, ok := InferCadence(dates)
	if !ok {
		reject(stageCadence)
		return candidate{}, false
	}

	consistency, ok := ValidateDates(dates, cadence)
	if !ok {
		reject(stageValidation)
		return candidate{}, false
	}

	return candidate{
		transactions:    cluster,
		cadence:         cadence,
		dateConsistency: consistency,
		source:          model.SourceFixedAmount,
	}, true
}

// candidate is a set of transactions believed to recur, before scoring.
type candidate struct {
	transactions    []model.Transaction
	cadence         model.CadenceInfo
	dateConsistency float64
	source          model.PatternSource
}

// finalize scores, gates and projects a candidate into a pattern.
func (d *Detector) finalize(group CandidateGroup, c candidate, now time.Time) (model.RecurringPattern, bool) {
	txns := c.transactions
	first, last := txns[0], txns[len(txns)-1]

	amounts := absAmounts(txns)
	expected := median(amounts)
	variance := sampleVariance(amounts)

	score := Score(ScoreInput{
		Frequency:       c.cadence.Frequency,
		Occurrences:     len(txns),
		MedianInterval:  c.cadence.MedianIntervalDays,
		MAD:             c.cadence.MAD,
		AmountMedian:    expected,
		AmountVariance:  variance,
		MonthsSpanned:   monthsSpanned(first.Date, last.Date),
		DateConsistency: c.dateConsistency,
	})
	if score < d.cfg.MinConfidence {
		reject(stageScore)
		return model.RecurringPattern{}, false
	}

	if !IsRecent(last.Date, now, c.cadence.MedianIntervalDays, d.cfg.RecencyMultiplier) {
		reject(stageRecency)
		return model.RecurringPattern{}, false
	}

	ids := make([]string, len(txns))
	for i := range txns {
		ids[i] = txns[i].ID
	}

	merchantName := last.MerchantName
	if merchantName == "" {
		merchantName = last.Name
	}

	pattern := model.RecurringPattern{
		MerchantGroupID:    group.MerchantGroupID,
		MerchantName:       merchantName,
		Frequency:          c.cadence.Frequency,
		Direction:          group.Direction,
		CategoryID:         dominantCategory(txns),
		AccountID:          last.AccountID,
		InstrumentID:       last.InstrumentID,
		Source:             c.source,
		Cadence:            c.cadence,
		ExpectedAmount:     expected,
		AmountVariance:     variance,
		ConfidenceScore:    score,
		OccurrenceCount:    len(txns),
		LastOccurrenceDate: last.Date,
		NextExpectedDate:   ProjectNextDate(last.Date, c.cadence),
		TransactionIDs:     ids,
	}

	patternsDetected.WithLabelValues(string(pattern.Frequency), string(pattern.Source)).Inc()
	return pattern, true
}

// dominantCategory is the most common user-facing split category; ties go to
// the category seen first.
func dominantCategory(txns []model.Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, txn := range txns {
		for _, split := range txn.Splits {
			if split.IsSystem || split.CategoryID == "" {
				continue
			}
			if counts[split.CategoryID] == 0 {
				order = append(order, split.CategoryID)
			}
			counts[split.CategoryID]++
		}
	}

	best, bestCount := "", 0
	for _, id := range order {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best
}

func hasFrequency(patterns []model.RecurringPattern, frequency model.Frequency) bool {
	for _, p := range patterns {
		if p.Frequency == frequency {
			return true
		}
	}
	return false
}
