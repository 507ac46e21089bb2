// Package storage provides the data persistence layer for the spice application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-recurring/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPattern     = errors.New("invalid pattern")
	ErrInvalidRun         = errors.New("invalid detection run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !txn.Direction.IsValid() {
		return fmt.Errorf("%w: direction %q", ErrInvalidTransaction, txn.Direction)
	}
	return nil
}

// validatePatternRecord validates a pattern record before insert.
func validatePatternRecord(record *model.PatternRecord) error {
	if record == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if strings.TrimSpace(record.MerchantGroupID) == "" {
		return fmt.Errorf("%w: missing merchant group", ErrInvalidPattern)
	}
	if !record.Frequency.IsValid() {
		return fmt.Errorf("%w: frequency %q", ErrInvalidPattern, record.Frequency)
	}
	if !record.Direction.IsValid() {
		return fmt.Errorf("%w: direction %q", ErrInvalidPattern, record.Direction)
	}
	if record.ExpectedAmount < 0 || record.AmountVariance < 0 {
		return fmt.Errorf("%w: amounts must be non-negative", ErrInvalidPattern)
	}
	if record.ConfidenceScore < 0 || record.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidPattern)
	}
	return nil
}

// validateRun validates a detection run before insert.
func validateRun(run *model.DetectionRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	return nil
}
