package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Ledger transactions and category splits",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT NOT NULL,
					date DATETIME NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					merchant_name TEXT NOT NULL DEFAULT '',
					merchant_group_id TEXT NOT NULL DEFAULT '',
					account_id TEXT NOT NULL DEFAULT '',
					instrument_id TEXT NOT NULL DEFAULT '',
					direction TEXT NOT NULL CHECK (direction IN ('income', 'expense')),
					amount REAL NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_merchant_group ON transactions(merchant_group_id)`,
				`CREATE INDEX idx_transactions_hash ON transactions(hash)`,

				`CREATE TABLE IF NOT EXISTS transaction_splits (
					transaction_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					category_id TEXT NOT NULL,
					amount REAL NOT NULL,
					is_system INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (transaction_id, position),
					FOREIGN KEY (transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
				)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Recurring patterns and their matched transactions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS recurring_patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					merchant_group_id TEXT NOT NULL,
					merchant_name TEXT NOT NULL DEFAULT '',
					frequency TEXT NOT NULL,
					direction TEXT NOT NULL CHECK (direction IN ('income', 'expense')),
					category_id TEXT NOT NULL DEFAULT '',
					account_id TEXT NOT NULL DEFAULT '',
					instrument_id TEXT NOT NULL DEFAULT '',
					expected_amount REAL NOT NULL CHECK (expected_amount >= 0),
					amount_variance REAL NOT NULL DEFAULT 0 CHECK (amount_variance >= 0),
					is_amount_variable INTEGER NOT NULL DEFAULT 0,
					confidence_score REAL NOT NULL CHECK (confidence_score >= 0 AND confidence_score <= 1),
					occurrence_count INTEGER NOT NULL,
					last_occurrence_date DATETIME NOT NULL,
					next_expected_date DATETIME NOT NULL,
					is_active INTEGER NOT NULL DEFAULT 1,
					is_confirmed INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				// At most one active record per key; INSERT OR IGNORE relies on it.
				`CREATE UNIQUE INDEX idx_recurring_patterns_active_key
					ON recurring_patterns(merchant_group_id, frequency, direction)
					WHERE is_active = 1`,
				`CREATE INDEX idx_recurring_patterns_next ON recurring_patterns(next_expected_date)`,

				`CREATE TABLE IF NOT EXISTS recurring_pattern_matches (
					pattern_id INTEGER NOT NULL,
					transaction_id TEXT NOT NULL,
					PRIMARY KEY (pattern_id, transaction_id),
					FOREIGN KEY (pattern_id) REFERENCES recurring_patterns(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_recurring_pattern_matches_txn ON recurring_pattern_matches(transaction_id)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Detection run history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS detection_runs (
					id TEXT PRIMARY KEY,
					started_at DATETIME NOT NULL,
					finished_at DATETIME NOT NULL,
					lookback_months INTEGER NOT NULL,
					transactions INTEGER NOT NULL DEFAULT 0,
					patterns INTEGER NOT NULL DEFAULT 0,
					saved INTEGER NOT NULL DEFAULT 0,
					skipped INTEGER NOT NULL DEFAULT 0,
					errors INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_detection_runs_started ON detection_runs(started_at)`,
			})
		},
	},
}

// SchemaVersion returns the current PRAGMA user_version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
