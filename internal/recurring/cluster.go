package recurring

import (
	"math"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// amountTolerance is how far an amount may drift from a cluster seed.
func amountTolerance(seed, absTol, pctTol float64) float64 {
	return math.Max(absTol, pctTol*seed)
}

// ClusterByAmount greedily groups a segment into fixed-price clusters. The
// earliest unclustered transaction seeds a cluster and claims every other
// unclustered transaction within tolerance of the seed. Clusters with fewer
// than three members are discarded; members stay in chronological order.
func ClusterByAmount(segment []model.Transaction, absTol, pctTol float64) [][]model.Transaction {
	clustered := make([]bool, len(segment))
	var clusters [][]model.Transaction

	for i := range segment {
		if clustered[i] {
			continue
		}
		seed := segment[i].AbsAmount()
		tolerance := amountTolerance(seed, absTol, pctTol)

		clustered[i] = true
		members := []model.Transaction{segment[i]}
		for j := i + 1; j < len(segment); j++ {
			if clustered[j] {
				continue
			}
			if math.Abs(segment[j].AbsAmount()-seed) <= tolerance {
				clustered[j] = true
				members = append(members, segment[j])
			}
		}

		if len(members) < minOccurrences {
			reject(stageCluster)
			continue
		}
		clusters = append(clusters, members)
	}

	return clusters
}
