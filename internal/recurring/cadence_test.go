package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/testutil/ledger"
)

func dates(values ...string) []time.Time {
	out := make([]time.Time, len(values))
	for i, v := range values {
		out[i] = ledger.Date(v)
	}
	return out
}

func everyDays(start string, days, count int) []time.Time {
	first := ledger.Date(start)
	out := make([]time.Time, count)
	for i := range out {
		out[i] = first.AddDate(0, 0, i*days)
	}
	return out
}

func TestClassifyInterval(t *testing.T) {
	tests := []struct {
		median float64
		want   model.Frequency
	}{
		{5, model.FrequencyCustom},
		{6, model.FrequencyWeekly},
		{8, model.FrequencyWeekly},
		{10, model.FrequencyCustom},
		{14, model.FrequencyBiweekly},
		{25, model.FrequencyMonthly},
		{35, model.FrequencyMonthly},
		{45, model.FrequencyCustom},
		{91, model.FrequencyQuarterly},
		{365, model.FrequencyYearly},
		{400, model.FrequencyCustom},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyInterval(tt.median), "median %v", tt.median)
	}
}

func TestInferCadence(t *testing.T) {
	t.Run("monthly with anchor", func(t *testing.T) {
		cadence, ok := InferCadence(dates("2024-01-05", "2024-02-05", "2024-03-05", "2024-04-05"))
		require.True(t, ok)
		assert.Equal(t, model.FrequencyMonthly, cadence.Frequency)
		assert.InDelta(t, 31.0, cadence.MedianIntervalDays, 1e-9)
		assert.InDelta(t, 0.0, cadence.MAD, 1e-9)
		require.NotNil(t, cadence.AnchorDayOfMonth)
		assert.Equal(t, 5, *cadence.AnchorDayOfMonth)
		assert.Nil(t, cadence.AnchorDayOfWeek)
	})

	t.Run("monthly anchor tie goes to first day seen", func(t *testing.T) {
		cadence, ok := InferCadence(dates("2024-01-05", "2024-02-06", "2024-03-05", "2024-04-06"))
		require.True(t, ok)
		require.NotNil(t, cadence.AnchorDayOfMonth)
		assert.Equal(t, 5, *cadence.AnchorDayOfMonth)
	})

	t.Run("weekly with weekday anchor", func(t *testing.T) {
		cadence, ok := InferCadence(everyDays("2024-01-26", 7, 6))
		require.True(t, ok)
		assert.Equal(t, model.FrequencyWeekly, cadence.Frequency)
		require.NotNil(t, cadence.AnchorDayOfWeek)
		assert.Equal(t, time.Friday, *cadence.AnchorDayOfWeek)
		assert.Nil(t, cadence.AnchorDayOfMonth)
	})

	t.Run("biweekly", func(t *testing.T) {
		cadence, ok := InferCadence(everyDays("2024-01-05", 14, 5))
		require.True(t, ok)
		assert.Equal(t, model.FrequencyBiweekly, cadence.Frequency)
		require.NotNil(t, cadence.AnchorDayOfWeek)
	})

	t.Run("quarterly has no anchor", func(t *testing.T) {
		cadence, ok := InferCadence(dates("2023-01-15", "2023-04-15", "2023-07-15", "2023-10-15"))
		require.True(t, ok)
		assert.Equal(t, model.FrequencyQuarterly, cadence.Frequency)
		assert.Nil(t, cadence.AnchorDayOfMonth)
		assert.Nil(t, cadence.AnchorDayOfWeek)
	})

	t.Run("yearly", func(t *testing.T) {
		cadence, ok := InferCadence(dates("2021-03-01", "2022-03-01", "2023-03-01"))
		require.True(t, ok)
		assert.Equal(t, model.FrequencyYearly, cadence.Frequency)
	})

	t.Run("custom needs four occurrences", func(t *testing.T) {
		_, ok := InferCadence(everyDays("2024-01-01", 45, 3))
		assert.False(t, ok)

		cadence, ok := InferCadence(everyDays("2024-01-01", 45, 4))
		require.True(t, ok)
		assert.Equal(t, model.FrequencyCustom, cadence.Frequency)
	})

	t.Run("too frequent", func(t *testing.T) {
		_, ok := InferCadence(everyDays("2024-01-01", 1, 10))
		assert.False(t, ok)
	})

	t.Run("irregular", func(t *testing.T) {
		_, ok := InferCadence(dates("2024-01-01", "2024-01-11", "2024-02-10", "2024-04-10"))
		assert.False(t, ok)
	})

	t.Run("single date", func(t *testing.T) {
		_, ok := InferCadence(dates("2024-01-01"))
		assert.False(t, ok)
	})

	t.Run("same-day duplicates", func(t *testing.T) {
		_, ok := InferCadence(dates("2024-01-01", "2024-01-01", "2024-01-01"))
		assert.False(t, ok)
	})
}
