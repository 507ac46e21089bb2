package recurring

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/testutil/ledger"
)

func newTestDetector(t *testing.T, now string) *Detector {
	t.Helper()
	at := ledger.Date(now)
	d, err := NewDetector(DefaultConfig(), WithClock(func() time.Time { return at }))
	require.NoError(t, err)
	return d
}

func detect(t *testing.T, now string, txns []model.Transaction) []model.RecurringPattern {
	t.Helper()
	patterns, err := newTestDetector(t, now).Detect(context.Background(), txns)
	require.NoError(t, err)
	return patterns
}

func TestNewDetectorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0
	cfg.Workers = 0

	_, err := NewDetector(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestDetector_MonthlySubscription(t *testing.T) {
	txns := ledger.NewSeries("netflix").
		Merchant("Netflix").
		Category("entertainment").
		Monthly("2024-01-05", 4, -9.99).
		Build()

	patterns := detect(t, "2024-04-20", txns)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, "netflix", p.MerchantGroupID)
	assert.Equal(t, "Netflix", p.MerchantName)
	assert.Equal(t, model.FrequencyMonthly, p.Frequency)
	assert.Equal(t, model.DirectionExpense, p.Direction)
	assert.Equal(t, model.SourceFixedAmount, p.Source)
	assert.Equal(t, "entertainment", p.CategoryID)
	assert.Equal(t, "checking", p.AccountID)
	assert.InDelta(t, 9.99, p.ExpectedAmount, 1e-9)
	assert.InDelta(t, 0.0, p.AmountVariance, 1e-9)
	assert.GreaterOrEqual(t, p.ConfidenceScore, 0.5)
	assert.InDelta(t, 1.0, p.ConfidenceScore, 1e-9)
	assert.Equal(t, 4, p.OccurrenceCount)
	assert.Equal(t, ledger.Date("2024-04-05"), p.LastOccurrenceDate)
	assert.Equal(t, ledger.Date("2024-05-05"), p.NextExpectedDate)
	require.NotNil(t, p.Cadence.AnchorDayOfMonth)
	assert.Equal(t, 5, *p.Cadence.AnchorDayOfMonth)
	assert.Equal(t, []string{
		"netflix-expense-001", "netflix-expense-002", "netflix-expense-003", "netflix-expense-004",
	}, p.TransactionIDs)
}

func TestDetector_StaleSubscriptionIsSuppressed(t *testing.T) {
	txns := ledger.NewSeries("netflix").Monthly("2024-01-05", 4, -9.99).Build()
	now := ledger.Date("2024-04-05").AddDate(0, 0, 200)

	before := promtestutil.ToFloat64(candidateRejections.WithLabelValues(stageRecency))

	d, err := NewDetector(DefaultConfig(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	patterns, err := d.Detect(context.Background(), txns)
	require.NoError(t, err)

	assert.Empty(t, patterns)
	assert.InDelta(t, 1.0, promtestutil.ToFloat64(candidateRejections.WithLabelValues(stageRecency))-before, 1e-9)
}

func TestDetector_TooFewOccurrences(t *testing.T) {
	txns := ledger.NewSeries("gym").Monthly("2024-02-03", 2, -40).Build()

	assert.Empty(t, detect(t, "2024-03-10", txns))
}

func TestDetector_DormantHistoryWithShortRecentRun(t *testing.T) {
	old := ledger.NewSeries("isp").Monthly("2023-01-10", 6, -60)

	patterns := detect(t, "2023-06-20", old.Build())
	require.Len(t, patterns, 1, "the old run alone qualifies")

	txns := old.Monthly("2023-10-10", 2, -60).Build()
	assert.Empty(t, detect(t, "2023-11-20", txns))
}

func TestDetector_VariableAmountUtility(t *testing.T) {
	build := func(amounts ...float64) []model.Transaction {
		days := []string{"2024-01-14", "2024-02-13", "2024-03-15", "2024-04-14", "2024-05-13", "2024-06-14"}
		series := ledger.NewSeries("power-co").Merchant("Power Co").Category("utilities")
		for i, day := range days {
			series.Add(day, -amounts[i])
		}
		return series.Build()
	}

	t.Run("fluctuating amounts fall back to variable detector", func(t *testing.T) {
		patterns := detect(t, "2024-06-20", build(80, 95, 110, 90, 100, 85))
		require.Len(t, patterns, 1)

		p := patterns[0]
		assert.Equal(t, model.FrequencyMonthly, p.Frequency)
		assert.Equal(t, model.SourceVariableAmount, p.Source)
		assert.Equal(t, 6, p.OccurrenceCount)
		assert.InDelta(t, 92.5, p.ExpectedAmount, 1e-9)
		assert.InDelta(t, 116.6667, p.AmountVariance, 1e-3)
		assert.GreaterOrEqual(t, p.ConfidenceScore, 0.5)
		require.NotNil(t, p.Cadence.AnchorDayOfMonth)
		assert.Equal(t, 14, *p.Cadence.AnchorDayOfMonth)
		assert.Equal(t, ledger.Date("2024-07-14"), p.NextExpectedDate)
	})

	t.Run("steady amount stays with fixed detector", func(t *testing.T) {
		patterns := detect(t, "2024-06-20", build(90, 90, 90, 90, 90, 90))
		require.Len(t, patterns, 1)
		assert.Equal(t, model.SourceFixedAmount, patterns[0].Source)
		assert.Equal(t, model.FrequencyMonthly, patterns[0].Frequency)
	})

	t.Run("low variation is not a variable bill", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinVariableCV = 0.15
		at := ledger.Date("2024-06-20")
		d, err := NewDetector(cfg, WithClock(func() time.Time { return at }))
		require.NoError(t, err)

		patterns, err := d.Detect(context.Background(), build(80, 95, 110, 90, 100, 85))
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})
}

func TestDetector_WeeklyMinimums(t *testing.T) {
	t.Run("five weekly occurrences are not enough", func(t *testing.T) {
		txns := ledger.NewSeries("lunch").Every(7, "2024-01-26", 5, -12).Build()
		assert.Empty(t, detect(t, "2024-02-26", txns))
	})

	t.Run("six weekly occurrences across two months", func(t *testing.T) {
		txns := ledger.NewSeries("lunch").Every(7, "2024-01-26", 6, -12).Build()

		patterns := detect(t, "2024-03-04", txns)
		require.Len(t, patterns, 1)
		p := patterns[0]
		assert.Equal(t, model.FrequencyWeekly, p.Frequency)
		require.NotNil(t, p.Cadence.AnchorDayOfWeek)
		assert.Equal(t, time.Friday, *p.Cadence.AnchorDayOfWeek)
		assert.Equal(t, ledger.Date("2024-03-08"), p.NextExpectedDate)
	})
}

func TestDetector_Paycheck(t *testing.T) {
	txns := ledger.NewSeries("employer").
		Merchant("Employer Inc").
		Income().
		Every(14, "2024-01-05", 8, 2500).
		Build()

	patterns := detect(t, "2024-04-20", txns)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.FrequencyBiweekly, patterns[0].Frequency)
	assert.Equal(t, model.DirectionIncome, patterns[0].Direction)
	assert.InDelta(t, 2500.0, patterns[0].ExpectedAmount, 1e-9)
}

func TestDetector_TwoPricePointsAtOneMerchant(t *testing.T) {
	txns := ledger.Concat(
		ledger.NewSeries("apple").Monthly("2024-01-03", 5, -2.99),
		ledger.NewSeries("apple").Monthly("2024-01-20", 5, -14.99),
	)
	// The two series share a group, so their IDs must be distinct.
	for i := 5; i < len(txns); i++ {
		txns[i].ID = fmt.Sprintf("apple-tv-%d", i)
	}

	patterns := detect(t, "2024-05-25", txns)
	require.Len(t, patterns, 2)

	amounts := []float64{patterns[0].ExpectedAmount, patterns[1].ExpectedAmount}
	assert.ElementsMatch(t, []float64{2.99, 14.99}, amounts)
}

func TestDetector_InstrumentsAreSeparate(t *testing.T) {
	txns := ledger.Concat(
		ledger.NewSeries("spotify").Account("checking").Monthly("2024-01-08", 2, -11.99),
		ledger.NewSeries("spotify").Instrument("card-1").Monthly("2024-03-08", 2, -11.99),
	)

	assert.Empty(t, detect(t, "2024-04-10", txns))
}

func TestDetector_LookbackWindow(t *testing.T) {
	txns := ledger.NewSeries("insurance").Monthly("2022-01-15", 6, -120).Build()

	assert.Empty(t, detect(t, "2023-06-01", txns))
}

func TestDetector_IgnoresTransactionsAfterClock(t *testing.T) {
	txns := ledger.NewSeries("netflix").Monthly("2024-01-05", 6, -9.99).Build()

	patterns := detect(t, "2024-04-20", txns)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, 4, p.OccurrenceCount)
	assert.Equal(t, ledger.Date("2024-04-05"), p.LastOccurrenceDate)
	assert.Equal(t, ledger.Date("2024-05-05"), p.NextExpectedDate)
	assert.Equal(t, []string{
		"netflix-expense-001", "netflix-expense-002", "netflix-expense-003", "netflix-expense-004",
	}, p.TransactionIDs)
}

func TestDetector_MonthEndSlipProjectsWithinMonth(t *testing.T) {
	txns := ledger.NewSeries("rent").
		Add("2024-01-30", -1200).
		Add("2024-03-01", -1200).
		Add("2024-03-30", -1200).
		Add("2024-04-30", -1200).
		Add("2024-05-30", -1200).
		Add("2024-07-01", -1200).
		Build()

	patterns := detect(t, "2024-07-05", txns)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, model.FrequencyMonthly, p.Frequency)
	require.NotNil(t, p.Cadence.AnchorDayOfMonth)
	assert.Equal(t, 30, *p.Cadence.AnchorDayOfMonth)
	assert.Equal(t, ledger.Date("2024-07-01"), p.LastOccurrenceDate)
	assert.Equal(t, ledger.Date("2024-07-30"), p.NextExpectedDate)
}

func TestDetector_ResultIsOrderedByGroup(t *testing.T) {
	var series []*ledger.Series
	for _, name := range []string{"zeta", "alpha", "mid", "beta", "omega", "gamma"} {
		series = append(series, ledger.NewSeries(name).Monthly("2024-01-10", 4, -20))
	}

	cfg := DefaultConfig()
	cfg.Workers = 3
	at := ledger.Date("2024-04-15")
	d, err := NewDetector(cfg, WithClock(func() time.Time { return at }))
	require.NoError(t, err)

	patterns, err := d.Detect(context.Background(), ledger.Concat(series...))
	require.NoError(t, err)
	require.Len(t, patterns, 6)

	var got []string
	for _, p := range patterns {
		got = append(got, p.MerchantGroupID)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma", "mid", "omega", "zeta"}, got)
}

func TestDetector_Cancelled(t *testing.T) {
	txns := ledger.NewSeries("netflix").Monthly("2024-01-05", 4, -9.99).Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestDetector(t, "2024-04-20").Detect(ctx, txns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDetector_EmptyLedger(t *testing.T) {
	assert.Empty(t, detect(t, "2024-04-20", nil))
}

func TestDetect_DefaultConfig(t *testing.T) {
	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	series := ledger.NewSeries("rent")
	for i := 5; i >= 0; i-- {
		series.AddAt(firstOfMonth.AddDate(0, -i, 0), -1500)
	}

	patterns, err := Detect(context.Background(), series.Build(), 12)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.FrequencyMonthly, patterns[0].Frequency)

	_, err = Detect(context.Background(), series.Build(), 0)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
