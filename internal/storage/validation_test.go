package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/spice-recurring/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "netflix", false},
		{"empty", "", true},
		{"whitespace", " \t\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.value, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	valid := func() *model.Transaction {
		return &model.Transaction{
			ID:        "txn-1",
			Date:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Direction: model.DirectionExpense,
			Amount:    -9.99,
		}
	}

	tests := []struct {
		txn     *model.Transaction
		name    string
		wantErr error
	}{
		{name: "valid", txn: valid()},
		{name: "nil", txn: nil, wantErr: ErrNilParameter},
		{
			name: "missing id",
			txn: func() *model.Transaction {
				txn := valid()
				txn.ID = ""
				return txn
			}(),
			wantErr: ErrInvalidTransaction,
		},
		{
			name: "missing date",
			txn: func() *model.Transaction {
				txn := valid()
				txn.Date = time.Time{}
				return txn
			}(),
			wantErr: ErrInvalidTransaction,
		},
		{
			name: "unknown direction",
			txn: func() *model.Transaction {
				txn := valid()
				txn.Direction = ""
				return txn
			}(),
			wantErr: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransaction(tt.txn)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateTransaction() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateTransaction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePatternRecord(t *testing.T) {
	valid := func() *model.PatternRecord {
		return &model.PatternRecord{
			MerchantGroupID: "netflix",
			Frequency:       model.FrequencyMonthly,
			Direction:       model.DirectionExpense,
			ExpectedAmount:  9.99,
			ConfidenceScore: 0.9,
		}
	}

	tests := []struct {
		mutate  func(*model.PatternRecord)
		name    string
		wantErr bool
	}{
		{name: "valid", mutate: func(*model.PatternRecord) {}},
		{name: "missing merchant group", mutate: func(r *model.PatternRecord) { r.MerchantGroupID = " " }, wantErr: true},
		{name: "unknown frequency", mutate: func(r *model.PatternRecord) { r.Frequency = "hourly" }, wantErr: true},
		{name: "unknown direction", mutate: func(r *model.PatternRecord) { r.Direction = "both" }, wantErr: true},
		{name: "negative variance", mutate: func(r *model.PatternRecord) { r.AmountVariance = -1 }, wantErr: true},
		{name: "confidence above one", mutate: func(r *model.PatternRecord) { r.ConfidenceScore = 1.2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid()
			tt.mutate(record)
			err := validatePatternRecord(record)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePatternRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPattern) {
				t.Errorf("validatePatternRecord() error = %v, want ErrInvalidPattern", err)
			}
		})
	}
}

func TestValidateTransactions(t *testing.T) {
	if err := validateTransactions(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("validateTransactions(nil) error = %v, want ErrNilParameter", err)
	}
	if err := validateTransactions([]model.Transaction{}); !errors.Is(err, ErrEmptySlice) {
		t.Errorf("validateTransactions([]) error = %v, want ErrEmptySlice", err)
	}

	txns := []model.Transaction{
		{ID: "a", Date: time.Now(), Direction: model.DirectionIncome},
		{ID: "", Date: time.Now(), Direction: model.DirectionIncome},
	}
	err := validateTransactions(txns)
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("validateTransactions() error = %v, want ErrInvalidTransaction", err)
	}
}
