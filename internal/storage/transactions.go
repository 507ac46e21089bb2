package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/model"
)

const transactionColumns = `
	id, hash, date, name, merchant_name, merchant_group_id,
	account_id, instrument_id, direction, amount`

// SaveTransactions saves multiple transactions and their category splits.
// Transactions already present are left untouched.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	txnStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = txnStmt.Close() }()

	splitStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transaction_splits (
			transaction_id, position, category_id, amount, is_system
		) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare split statement: %w", err)
	}
	defer func() { _ = splitStmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		// Generate hash if not already set
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		result, err := txnStmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date.UTC(),
			txn.Name,
			txn.MerchantName,
			txn.MerchantGroupID,
			txn.AccountID,
			txn.InstrumentID,
			string(txn.Direction),
			txn.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			continue
		}
		inserted++

		for i, split := range txn.Splits {
			if _, err := splitStmt.ExecContext(ctx,
				txn.ID, i, split.CategoryID, split.Amount, split.IsSystem,
			); err != nil {
				return fmt.Errorf("failed to insert split %d of transaction %s: %w", i, txn.ID, err)
			}
		}
	}

	slog.Debug("saved transactions", "received", len(transactions), "inserted", inserted)
	return nil
}

// GetTransactionsSince returns every transaction dated on or after since,
// ordered by date, with its category splits. Query failures are reported as
// ErrLedgerUnavailable so callers may retry.
func (s *SQLiteStorage) GetTransactionsSince(ctx context.Context, since time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE date >= ?
		ORDER BY date, id
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query transactions: %w", common.ErrLedgerUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	index := make(map[string]int)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		index[txn.ID] = len(transactions)
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating transactions: %w", common.ErrLedgerUnavailable, err)
	}

	if len(transactions) == 0 {
		return transactions, nil
	}

	splitRows, err := s.db.QueryContext(ctx, `
		SELECT s.transaction_id, s.category_id, s.amount, s.is_system
		FROM transaction_splits s
		JOIN transactions t ON t.id = s.transaction_id
		WHERE t.date >= ?
		ORDER BY s.transaction_id, s.position
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query splits: %w", common.ErrLedgerUnavailable, err)
	}
	defer func() { _ = splitRows.Close() }()

	for splitRows.Next() {
		var txnID string
		var split model.CategorySplit
		if err := splitRows.Scan(&txnID, &split.CategoryID, &split.Amount, &split.IsSystem); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if i, ok := index[txnID]; ok {
			transactions[i].Splits = append(transactions[i].Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating splits: %w", common.ErrLedgerUnavailable, err)
	}

	return transactions, nil
}

// GetTransactionByID retrieves a single transaction with its splits.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, amount, is_system
		FROM transaction_splits
		WHERE transaction_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var split model.CategorySplit
		if err := rows.Scan(&split.CategoryID, &split.Amount, &split.IsSystem); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		txn.Splits = append(txn.Splits, split)
	}
	return txn, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var direction string
	err := row.Scan(
		&txn.ID,
		&txn.Hash,
		&txn.Date,
		&txn.Name,
		&txn.MerchantName,
		&txn.MerchantGroupID,
		&txn.AccountID,
		&txn.InstrumentID,
		&direction,
		&txn.Amount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	txn.Direction = model.TransactionDirection(direction)
	return &txn, nil
}
