package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/model"
	"github.com/Veraticus/spice-recurring/internal/service"
)

const patternColumns = `
	id, merchant_group_id, merchant_name, frequency, direction, category_id,
	account_id, instrument_id, expected_amount, amount_variance,
	is_amount_variable, confidence_score, occurrence_count,
	last_occurrence_date, next_expected_date, is_active, is_confirmed,
	created_at, updated_at`

// ExistsActivePattern reports whether an active record holds the key.
func (s *SQLiteStorage) ExistsActivePattern(ctx context.Context, merchantGroupID string, frequency model.Frequency, direction model.TransactionDirection) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(merchantGroupID, "merchantGroupID"); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM recurring_patterns
			WHERE merchant_group_id = ? AND frequency = ? AND direction = ? AND is_active = 1
		)
	`, merchantGroupID, string(frequency), string(direction)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active pattern: %w", err)
	}
	return exists, nil
}

// InsertPattern inserts record unless an active record already holds its
// key, in which case it returns common.ErrDuplicateEntry. The partial unique
// index on active keys makes the check and the insert a single statement.
func (s *SQLiteStorage) InsertPattern(ctx context.Context, record *model.PatternRecord) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validatePatternRecord(record); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO recurring_patterns (
			merchant_group_id, merchant_name, frequency, direction, category_id,
			account_id, instrument_id, expected_amount, amount_variance,
			is_amount_variable, confidence_score, occurrence_count,
			last_occurrence_date, next_expected_date, is_active, is_confirmed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`,
		record.MerchantGroupID, record.MerchantName, string(record.Frequency),
		string(record.Direction), record.CategoryID, record.AccountID,
		record.InstrumentID, record.ExpectedAmount, record.AmountVariance,
		record.IsAmountVariable, record.ConfidenceScore, record.OccurrenceCount,
		record.LastOccurrenceDate, record.NextExpectedDate, record.IsConfirmed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pattern: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("pattern %s/%s/%s: %w",
			record.MerchantGroupID, record.Frequency, record.Direction, common.ErrDuplicateEntry)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	record.IsActive = true
	slog.Debug("inserted recurring pattern",
		"id", id,
		"merchant_group_id", record.MerchantGroupID,
		"frequency", record.Frequency)
	return id, nil
}

// InsertMatches links transactions to a pattern in one transaction.
// Re-linking an existing pair is a no-op.
func (s *SQLiteStorage) InsertMatches(ctx context.Context, patternID int64, transactionIDs []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(transactionIDs) == 0 {
		return fmt.Errorf("%w: transactionIDs", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO recurring_pattern_matches (pattern_id, transaction_id)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range transactionIDs {
		if err := validateString(id, "transactionID"); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, patternID, id); err != nil {
			return fmt.Errorf("failed to insert match %d/%s: %w", patternID, id, err)
		}
	}

	return tx.Commit()
}

// GetPattern retrieves a pattern record by ID.
func (s *SQLiteStorage) GetPattern(ctx context.Context, id int64) (*model.PatternRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+patternColumns+` FROM recurring_patterns WHERE id = ?`, id)
	record, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pattern %d: %w", id, common.ErrNotFound)
	}
	return record, err
}

// ListPatterns returns pattern records ordered by next expected date.
func (s *SQLiteStorage) ListPatterns(ctx context.Context, filter service.PatternFilter) ([]model.PatternRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any
	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = 1")
	}
	if filter.MerchantGroupID != "" {
		conditions = append(conditions, "merchant_group_id = ?")
		args = append(args, filter.MerchantGroupID)
	}

	query := `SELECT ` + patternColumns + ` FROM recurring_patterns`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY next_expected_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.PatternRecord
	for rows.Next() {
		record, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// GetPatternTransactionIDs returns the transactions matched to a pattern.
func (s *SQLiteStorage) GetPatternTransactionIDs(ctx context.Context, patternID int64) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id FROM recurring_pattern_matches
		WHERE pattern_id = ?
		ORDER BY transaction_id
	`, patternID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeactivatePattern retires a record, freeing its key for future detection.
func (s *SQLiteStorage) DeactivatePattern(ctx context.Context, id int64) error {
	return s.updatePatternFlag(ctx, id, "is_active = 0", "deactivated")
}

// ConfirmPattern marks a record as confirmed by the user.
func (s *SQLiteStorage) ConfirmPattern(ctx context.Context, id int64) error {
	return s.updatePatternFlag(ctx, id, "is_confirmed = 1", "confirmed")
}

func (s *SQLiteStorage) updatePatternFlag(ctx context.Context, id int64, assignment, action string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE recurring_patterns SET `+assignment+`, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to update pattern %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pattern %d: %w", id, common.ErrNotFound)
	}

	slog.Info("updated recurring pattern", "id", id, "action", action)
	return nil
}

func scanPattern(row rowScanner) (*model.PatternRecord, error) {
	var record model.PatternRecord
	var frequency, direction string
	err := row.Scan(
		&record.ID,
		&record.MerchantGroupID,
		&record.MerchantName,
		&frequency,
		&direction,
		&record.CategoryID,
		&record.AccountID,
		&record.InstrumentID,
		&record.ExpectedAmount,
		&record.AmountVariance,
		&record.IsAmountVariable,
		&record.ConfidenceScore,
		&record.OccurrenceCount,
		&record.LastOccurrenceDate,
		&record.NextExpectedDate,
		&record.IsActive,
		&record.IsConfirmed,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pattern: %w", err)
	}
	record.Frequency = model.Frequency(frequency)
	record.Direction = model.TransactionDirection(direction)
	return &record, nil
}
