package recurring

import (
	"sort"
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// CandidateGroup is the set of transactions sharing merchant, direction and
// settlement instrument, ordered by date.
type CandidateGroup struct {
	MerchantGroupID string
	Direction       model.TransactionDirection
	InstrumentKey   string
	Transactions    []model.Transaction
}

// Key identifies the group.
func (g CandidateGroup) Key() string {
	return g.MerchantGroupID + "|" + string(g.Direction) + "|" + g.InstrumentKey
}

// GroupCandidates partitions transactions into candidate groups. Transactions
// dated outside [since, until], without a merchant group, or carrying only
// system splits are ignored. A zero bound leaves that side open. Groups with fewer than three members are dropped. The result is
// ordered by group key.
func GroupCandidates(transactions []model.Transaction, since, until time.Time) []CandidateGroup {
	byKey := make(map[string]*CandidateGroup)

	for _, txn := range transactions {
		if !since.IsZero() && txn.Date.Before(since) {
			continue
		}
		if !until.IsZero() && txn.Date.After(until) {
			continue
		}
		if txn.MerchantGroupID == "" || txn.IsSystemOnly() {
			continue
		}

		group := CandidateGroup{
			MerchantGroupID: txn.MerchantGroupID,
			Direction:       txn.Direction,
			InstrumentKey:   txn.InstrumentKey(),
		}
		key := group.Key()
		existing, ok := byKey[key]
		if !ok {
			existing = &group
			byKey[key] = existing
		}
		existing.Transactions = append(existing.Transactions, txn)
	}

	groups := make([]CandidateGroup, 0, len(byKey))
	for _, group := range byKey {
		if len(group.Transactions) < minOccurrences {
			reject(stageGroupSize)
			continue
		}
		sortByDate(group.Transactions)
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key() < groups[j].Key()
	})
	return groups
}

// sortByDate orders transactions chronologically, breaking ties by ID.
func sortByDate(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})
}

func transactionDates(txns []model.Transaction) []time.Time {
	dates := make([]time.Time, len(txns))
	for i := range txns {
		dates[i] = txns[i].Date
	}
	return dates
}

func absAmounts(txns []model.Transaction) []float64 {
	amounts := make([]float64, len(txns))
	for i := range txns {
		amounts[i] = txns[i].AbsAmount()
	}
	return amounts
}
