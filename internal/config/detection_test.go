package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-recurring/internal/common"
	"github.com/Veraticus/spice-recurring/internal/recurring"
)

func TestLoadDetectionConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadDetectionConfig(viper.New())
		require.NoError(t, err)
		assert.Equal(t, recurring.DefaultConfig(), cfg)
	})

	t.Run("config file overrides individual keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
recurring:
  lookback_months: 18
  min_confidence: 0.7
  workers: 2
`), 0o600))

		v := viper.New()
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := LoadDetectionConfig(v)
		require.NoError(t, err)
		assert.Equal(t, 18, cfg.LookbackMonths)
		assert.InDelta(t, 0.7, cfg.MinConfidence, 1e-9)
		assert.Equal(t, 2, cfg.Workers)
		assert.InDelta(t, recurring.DefaultConfig().RecencyMultiplier, cfg.RecencyMultiplier, 1e-9)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SPICE_RECURRING_LOOKBACK_MONTHS", "6")

		v := viper.New()
		v.SetEnvPrefix("SPICE")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		cfg, err := LoadDetectionConfig(v)
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.LookbackMonths)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		v := viper.New()
		v.Set(KeyMinConfidence, 1.5)

		_, err := LoadDetectionConfig(v)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	v := viper.New()
	assert.Equal(t, "/home/tester/.local/share/spice/spice.db", DatabasePath(v))

	v.Set(KeyDatabasePath, "~/ledger.db")
	assert.Equal(t, "/home/tester/ledger.db", DatabasePath(v))
}
