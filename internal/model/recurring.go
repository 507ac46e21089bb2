package model

import "time"

// Frequency is the inferred recurrence class of a pattern.
type Frequency string

// Frequency constants.
const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBimonthly Frequency = "bimonthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyBimonthly, FrequencyQuarterly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// CadenceInfo describes how often a cluster of transactions recurs.
type CadenceInfo struct {
	AnchorDayOfMonth   *int
	AnchorDayOfWeek    *time.Weekday
	Frequency          Frequency
	MedianIntervalDays float64
	MAD                float64
}

// PatternSource records which detector produced a pattern.
type PatternSource string

// Pattern source constants.
const (
	SourceFixedAmount    PatternSource = "fixed"
	SourceVariableAmount PatternSource = "variable"
)

// RecurringPattern is a detected recurrence. It is derived from the ledger on
// every run and never mutated afterwards.
type RecurringPattern struct {
	LastOccurrenceDate time.Time
	NextExpectedDate   time.Time
	MerchantGroupID    string
	MerchantName       string
	Frequency          Frequency
	Direction          TransactionDirection
	CategoryID         string
	AccountID          string
	InstrumentID       string
	Source             PatternSource
	TransactionIDs     []string
	Cadence            CadenceInfo
	ExpectedAmount     float64
	AmountVariance     float64
	ConfidenceScore    float64
	OccurrenceCount    int
}

// PatternKey is the deduplication key of persisted patterns.
type PatternKey struct {
	MerchantGroupID string
	Frequency       Frequency
	Direction       TransactionDirection
}

// Key returns the deduplication key of the pattern.
func (p *RecurringPattern) Key() PatternKey {
	return PatternKey{
		MerchantGroupID: p.MerchantGroupID,
		Frequency:       p.Frequency,
		Direction:       p.Direction,
	}
}

// PatternRecord is a persisted recurring pattern. Its active and confirmed
// flags are owned by the surrounding application.
type PatternRecord struct {
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastOccurrenceDate time.Time
	NextExpectedDate   time.Time
	MerchantGroupID    string
	MerchantName       string
	Frequency          Frequency
	Direction          TransactionDirection
	CategoryID         string
	AccountID          string
	InstrumentID       string
	ExpectedAmount     float64
	AmountVariance     float64
	ConfidenceScore    float64
	ID                 int64
	OccurrenceCount    int
	IsAmountVariable   bool
	IsActive           bool
	IsConfirmed        bool
}

// SaveSummary is the outcome of persisting a batch of detected patterns.
type SaveSummary struct {
	Saved   int
	Skipped int
	Errors  int
}

// DetectionRun records a single detection batch.
type DetectionRun struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	ID             string
	LookbackMonths int
	Transactions   int
	Patterns       int
	SaveSummary
}
