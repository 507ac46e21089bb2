package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-recurring/internal/recurring"
)

// Configuration keys.
const (
	KeyDatabasePath       = "database.path"
	KeyLookbackMonths     = "recurring.lookback_months"
	KeyMinConfidence      = "recurring.min_confidence"
	KeyAmountToleranceAbs = "recurring.amount_tolerance_abs"
	KeyAmountTolerancePct = "recurring.amount_tolerance_pct"
	KeyRecencyMultiplier  = "recurring.recency_multiplier"
	KeyMinVariableCV      = "recurring.min_variable_cv"
	KeyWorkers            = "recurring.workers"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/spice/spice.db"

// SetDetectionDefaults registers the detection defaults so that config files,
// environment variables and flags can override them key by key.
func SetDetectionDefaults(v *viper.Viper) {
	d := recurring.DefaultConfig()
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLookbackMonths, d.LookbackMonths)
	v.SetDefault(KeyMinConfidence, d.MinConfidence)
	v.SetDefault(KeyAmountToleranceAbs, d.AmountToleranceAbs)
	v.SetDefault(KeyAmountTolerancePct, d.AmountTolerancePct)
	v.SetDefault(KeyRecencyMultiplier, d.RecencyMultiplier)
	v.SetDefault(KeyMinVariableCV, d.MinVariableCV)
	v.SetDefault(KeyWorkers, d.Workers)
}

// LoadDetectionConfig reads the recurring.* section into a validated
// detection configuration. Unset keys keep their defaults.
func LoadDetectionConfig(v *viper.Viper) (recurring.Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDetectionDefaults(v)

	var settings struct {
		Recurring recurring.Config `mapstructure:"recurring"`
	}
	if err := v.Unmarshal(&settings); err != nil {
		return recurring.Config{}, fmt.Errorf("failed to decode detection config: %w", err)
	}

	if err := settings.Recurring.Validate(); err != nil {
		return recurring.Config{}, err
	}
	return settings.Recurring, nil
}

// DatabasePath returns the expanded database location.
func DatabasePath(v *viper.Viper) string {
	if v == nil {
		v = viper.GetViper()
	}
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}
