package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-recurring/internal/model"
)

const defaultRunLimit = 20

// SaveDetectionRun records a finished detection batch.
func (s *SQLiteStorage) SaveDetectionRun(ctx context.Context, run *model.DetectionRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO detection_runs (
			id, started_at, finished_at, lookback_months,
			transactions, patterns, saved, skipped, errors
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.StartedAt, run.FinishedAt, run.LookbackMonths,
		run.Transactions, run.Patterns, run.Saved, run.Skipped, run.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to save detection run %s: %w", run.ID, err)
	}
	return nil
}

// GetRecentDetectionRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) GetRecentDetectionRuns(ctx context.Context, limit int) ([]model.DetectionRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, lookback_months,
			transactions, patterns, saved, skipped, errors
		FROM detection_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.DetectionRun
	for rows.Next() {
		var run model.DetectionRun
		if err := rows.Scan(
			&run.ID, &run.StartedAt, &run.FinishedAt, &run.LookbackMonths,
			&run.Transactions, &run.Patterns, &run.Saved, &run.Skipped, &run.Errors,
		); err != nil {
			return nil, fmt.Errorf("failed to scan detection run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
