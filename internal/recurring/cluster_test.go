package recurring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/testutil/ledger"
)

func amountsOf(txns []model.Transaction) []float64 {
	out := make([]float64, len(txns))
	for i := range txns {
		out[i] = txns[i].Amount
	}
	return out
}

func TestAmountTolerance(t *testing.T) {
	assert.InDelta(t, 5.0, amountTolerance(9.99, 5, 0.05), 1e-9)
	assert.InDelta(t, 10.0, amountTolerance(200, 5, 0.05), 1e-9)
}

func TestClusterByAmount(t *testing.T) {
	t.Run("absolute tolerance around seed", func(t *testing.T) {
		series := ledger.NewSeries("shop")
		for i, amount := range []float64{10, 100, 10.5, 104, 12, 109, 10.2} {
			series.AddAt(ledger.Date("2024-01-01").AddDate(0, 0, 7*i), amount)
		}

		clusters := ClusterByAmount(series.Build(), 5, 0.05)
		require.Len(t, clusters, 1)
		assert.Equal(t, []float64{10, 10.5, 12, 10.2}, amountsOf(clusters[0]))
	})

	t.Run("percentage tolerance for large amounts", func(t *testing.T) {
		series := ledger.NewSeries("rent")
		for i, amount := range []float64{200, 209, 211, 195} {
			series.AddAt(ledger.Date("2024-01-01").AddDate(0, i, 0), amount)
		}

		clusters := ClusterByAmount(series.Build(), 5, 0.05)
		require.Len(t, clusters, 1)
		assert.Equal(t, []float64{200, 209, 195}, amountsOf(clusters[0]))
	})

	t.Run("compares magnitudes", func(t *testing.T) {
		txns := ledger.NewSeries("refunds").
			Add("2024-01-01", -20).
			Add("2024-02-01", 20).
			Add("2024-03-01", -21).
			Build()

		clusters := ClusterByAmount(txns, 5, 0.05)
		require.Len(t, clusters, 1)
		assert.Len(t, clusters[0], 3)
	})

	t.Run("seeds from earliest unclustered transaction", func(t *testing.T) {
		txns := ledger.NewSeries("utility").
			Add("2024-01-14", 80).
			Add("2024-02-13", 95).
			Add("2024-03-15", 110).
			Add("2024-04-14", 90).
			Add("2024-05-13", 100).
			Add("2024-06-14", 85).
			Build()

		clusters := ClusterByAmount(txns, 5, 0.05)
		require.Len(t, clusters, 1)
		assert.Equal(t, []float64{95, 90, 100}, amountsOf(clusters[0]))
	})
}
