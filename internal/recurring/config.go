// Package recurring detects recurring transactions (subscriptions, bills,
// paychecks) in a ledger and persists them as pattern records.
//
// Detection is a batch pipeline of pure stages applied to each candidate group:
// grouping, segmentation, amount clustering, cadence inference, date
// validation, scoring, recency gating and next-date projection.
package recurring

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/spice-recurring/internal/common"
)

// Fixed thresholds of the pipeline. The tunable ones live in Config.
const (
	minOccurrences         = 3
	minCustomOccurrences   = 4
	minVariableOccurrences = 5
	minIntervalDays        = 6
	maxMADRatio            = 0.2
	minDateConsistency     = 0.8
	minVariableDateRatio   = 0.9
	variableDateWeight     = 0.9
	baselineDateScore      = 0.5
	monthlyDayTolerance    = 2
	weeklyDayTolerance     = 1
	monthlyScaleDays       = 25
	monthlyGapFloorDays    = 45
	weeklyGapFloorDays     = 21
)

// Config holds the tunable parameters of the detection pipeline.
type Config struct {
	// LookbackMonths bounds the transactions considered, counted back from now.
	LookbackMonths int `mapstructure:"lookback_months" validate:"gte=1,lte=120"`
	// MinConfidence is the score a pattern needs to be emitted.
	MinConfidence float64 `mapstructure:"min_confidence" validate:"gt=0,lte=1"`
	// AmountToleranceAbs and AmountTolerancePct bound how far an amount may
	// drift from its cluster seed: max(abs, pct × seed).
	AmountToleranceAbs float64 `mapstructure:"amount_tolerance_abs" validate:"gte=0"`
	AmountTolerancePct float64 `mapstructure:"amount_tolerance_pct" validate:"gte=0,lt=1"`
	// RecencyMultiplier scales the median interval into a staleness window.
	RecencyMultiplier float64 `mapstructure:"recency_multiplier" validate:"gt=0"`
	// MinVariableCV is the amount variation a utility-like bill must exceed.
	MinVariableCV float64 `mapstructure:"min_variable_cv" validate:"gte=0"`
	// Workers bounds how many candidate groups are evaluated concurrently.
	Workers int `mapstructure:"workers" validate:"gte=1,lte=64"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		LookbackMonths:     12,
		MinConfidence:      0.5,
		AmountToleranceAbs: 5.0,
		AmountTolerancePct: 0.05,
		RecencyMultiplier:  1.5,
		MinVariableCV:      0.1,
		Workers:            4,
	}
}

var configValidate = validator.New()

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}
