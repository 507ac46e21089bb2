// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

//go:generate mockgen -destination=mock_pattern_store.go -package=service github.com/Veraticus/spice-recurring/internal/service PatternStore

// LedgerReader supplies dated transactions with their category splits.
type LedgerReader interface {
	GetTransactionsSince(ctx context.Context, since time.Time) ([]model.Transaction, error)
}

// PatternStore persists detected recurring patterns.
//
// InsertPattern is an insert-if-absent: when an active record already holds
// the pattern's (merchant group, frequency, direction) key it returns
// common.ErrDuplicateEntry and writes nothing.
type PatternStore interface {
	ExistsActivePattern(ctx context.Context, merchantGroupID string, frequency model.Frequency, direction model.TransactionDirection) (bool, error)
	InsertPattern(ctx context.Context, record *model.PatternRecord) (int64, error)
	InsertMatches(ctx context.Context, patternID int64, transactionIDs []string) error
}

// PatternFilter narrows pattern record listings.
type PatternFilter struct {
	MerchantGroupID string
	IncludeInactive bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	LedgerReader
	PatternStore

	// Ledger operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// Pattern record lifecycle
	GetPattern(ctx context.Context, id int64) (*model.PatternRecord, error)
	ListPatterns(ctx context.Context, filter PatternFilter) ([]model.PatternRecord, error)
	GetPatternTransactionIDs(ctx context.Context, patternID int64) ([]string, error)
	DeactivatePattern(ctx context.Context, id int64) error
	ConfirmPattern(ctx context.Context, id int64) error

	// Detection runs
	SaveDetectionRun(ctx context.Context, run *model.DetectionRun) error
	GetRecentDetectionRuns(ctx context.Context, limit int) ([]model.DetectionRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
