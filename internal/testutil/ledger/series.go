// Package ledger provides a fluent builder for ledger transactions used in
// recurring-detection tests.
//
// Example usage:
//
//	txns := ledger.NewSeries("netflix").
//		Account("checking").
//		Monthly("2024-01-05", 4, -9.99).
//		Build()
package ledger

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// Date parses a YYYY-MM-DD date in UTC and panics on malformed input.
func Date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(fmt.Sprintf("ledger: bad date %q: %v", s, err))
	}
	return d
}

// Series builds transactions for one merchant group.
type Series struct {
	merchantGroupID string
	merchantName    string
	accountID       string
	instrumentID    string
	direction       model.TransactionDirection
	splits          []model.CategorySplit
	txns            []model.Transaction
}

// NewSeries starts a series of expense transactions on account "checking".
func NewSeries(merchantGroupID string) *Series {
	return &Series{
		merchantGroupID: merchantGroupID,
		merchantName:    merchantGroupID,
		accountID:       "checking",
		direction:       model.DirectionExpense,
	}
}

// Merchant sets the display name of following transactions.
func (s *Series) Merchant(name string) *Series {
	s.merchantName = name
	return s
}

// Account settles following transactions on an account.
func (s *Series) Account(id string) *Series {
	s.accountID, s.instrumentID = id, ""
	return s
}

// Instrument settles following transactions on a payment instrument.
func (s *Series) Instrument(id string) *Series {
	s.accountID, s.instrumentID = "", id
	return s
}

// Income marks following transactions as income.
func (s *Series) Income() *Series {
	s.direction = model.DirectionIncome
	return s
}

// Expense marks following transactions as expenses.
func (s *Series) Expense() *Series {
	s.direction = model.DirectionExpense
	return s
}

// Category assigns a single user-facing split to following transactions.
func (s *Series) Category(id string) *Series {
	s.splits = []model.CategorySplit{{CategoryID: id}}
	return s
}

// SystemOnly assigns a single system split to following transactions.
func (s *Series) SystemOnly() *Series {
	s.splits = []model.CategorySplit{{CategoryID: "buffer", IsSystem: true}}
	return s
}

// Add appends a transaction on date with amount.
func (s *Series) Add(date string, amount float64) *Series {
	return s.AddAt(Date(date), amount)
}

// AddAt appends a transaction at t with amount.
func (s *Series) AddAt(t time.Time, amount float64) *Series {
	id := fmt.Sprintf("%s-%s-%03d", s.merchantGroupID, s.direction, len(s.txns)+1)
	splits := make([]model.CategorySplit, len(s.splits))
	copy(splits, s.splits)
	for i := range splits {
		splits[i].Amount = amount
	}

	s.txns = append(s.txns, model.Transaction{
		ID:              id,
		Date:            t,
		Name:            s.merchantName,
		MerchantName:    s.merchantName,
		MerchantGroupID: s.merchantGroupID,
		AccountID:       s.accountID,
		InstrumentID:    s.instrumentID,
		Direction:       s.direction,
		Amount:          amount,
		Splits:          splits,
	})
	return s
}

// Monthly appends count transactions one calendar month apart.
func (s *Series) Monthly(start string, count int, amount float64) *Series {
	first := Date(start)
	for i := 0; i < count; i++ {
		s.AddAt(first.AddDate(0, i, 0), amount)
	}
	return s
}

// Every appends count transactions spaced days apart.
func (s *Series) Every(days int, start string, count int, amount float64) *Series {
	first := Date(start)
	for i := 0; i < count; i++ {
		s.AddAt(first.AddDate(0, 0, i*days), amount)
	}
	return s
}

// Build returns a copy of the transactions built so far.
func (s *Series) Build() []model.Transaction {
	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Concat joins several series into one ledger.
func Concat(series ...*Series) []model.Transaction {
	var out []model.Transaction
	for _, s := range series {
		out = append(out, s.Build()...)
	}
	return out
}
