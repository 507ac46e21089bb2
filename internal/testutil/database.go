// Package testutil provides test utilities for the spice recurring project.
// It offers isolated, migrated databases seeded with ledger data.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/service"
	"github.com/Veraticus/spice-recurring/internal/storage"
	"github.com/Veraticus/spice-recurring/internal/testutil/ledger"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       testing.TB
}

// SetupTestDB creates a new in-memory test database seeded with the given
// ledger series. It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		ledger.NewSeries("netflix").Monthly("2024-01-05", 4, -9.99),
//	)
func SetupTestDB(t testing.TB, series ...*ledger.Series) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	if txns := ledger.Concat(series...); len(txns) > 0 {
		db.MustSaveTransactions(txns)
	}
	return db
}

// MustSaveTransactions stores transactions or fails the test.
func (db *TestDB) MustSaveTransactions(txns []model.Transaction) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// MustListPatterns returns every pattern record, active or not, or fails the test.
func (db *TestDB) MustListPatterns() []model.PatternRecord {
	db.t.Helper()
	records, err := db.Storage.ListPatterns(context.Background(), service.PatternFilter{IncludeInactive: true})
	if err != nil {
		db.t.Fatalf("failed to list patterns: %v", err)
	}
	return records
}
