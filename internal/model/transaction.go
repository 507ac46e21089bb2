// Package model defines the core data structures for the spice application.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"time"
)

// TransactionDirection indicates whether money flowed in or out.
type TransactionDirection string

// Transaction direction constants.
const (
	DirectionIncome  TransactionDirection = "income"
	DirectionExpense TransactionDirection = "expense"
)

// IsValid reports whether d is a known direction.
func (d TransactionDirection) IsValid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// CategorySplit assigns part of a transaction to a category.
type CategorySplit struct {
	CategoryID string
	Amount     float64
	IsSystem   bool // system/buffer split, not user-facing spend
}

// Transaction represents a single ledger entry as supplied by the ledger store.
// Merchant grouping and category splits are assigned upstream.
type Transaction struct {
	Date            time.Time
	ID              string
	Name            string // Raw transaction description
	MerchantName    string // Cleaned merchant name
	MerchantGroupID string
	AccountID       string
	InstrumentID    string
	Hash            string
	Direction       TransactionDirection
	Splits          []CategorySplit
	Amount          float64
}

// AbsAmount returns the amount as a non-negative magnitude.
func (t *Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// InstrumentKey identifies the settlement instrument of the transaction.
// Accounts and instruments live in separate namespaces.
func (t *Transaction) InstrumentKey() string {
	if t.AccountID != "" {
		return "account:" + t.AccountID
	}
	if t.InstrumentID != "" {
		return "instrument:" + t.InstrumentID
	}
	return ""
}

// IsSystemOnly reports whether every category split is system-flagged.
// Transactions without splits are treated as user-facing.
func (t *Transaction) IsSystemOnly() bool {
	if len(t.Splits) == 0 {
		return false
	}
	for _, s := range t.Splits {
		if !s.IsSystem {
			return false
		}
	}
	return true
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantGroupID,
		t.InstrumentKey())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
