package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/errors"
)

func TestLoadCreatesTemplatesWithDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JOURNAL_AI_API_KEY", "")
	t.Setenv("JOURNAL_DB_PATH", "")
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.FileExists(t, filepath.Join(dir, "credentials.toml"))
	assert.Len(t, cfg.Created, 2)

	assert.Equal(t, 1000.0, cfg.Calculator.DefaultBalance)
	assert.Equal(t, "forex", cfg.Calculator.DefaultMode)
	assert.Equal(t, 2.0, cfg.Backtest.RewardRisk)
	assert.Equal(t, 60*time.Second, cfg.Coach.Timeout)
	assert.Equal(t, 3, cfg.Coach.MaxAttempts)
	assert.Equal(t, filepath.Join(dir, "journal.db"), cfg.Storage.DBPath)
	assert.False(t, cfg.HasCoach())

	info, err := os.Stat(filepath.Join(dir, "credentials.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A second load reads the templates back without creating anything.
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Equal(t, cfg.Calculator, again.Calculator)
	assert.Equal(t, cfg.Coach, again.Coach)
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[risk]
daily_loss_limit = 250.0
max_trades_per_day = 4

[calculator]
default_mode = "crypto"
default_leverage = 10.0

[coach]
timeout = "15s"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.toml"), []byte("[coach]\napi_key = \"from-file\"\n"), 0600))

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JOURNAL_AI_API_KEY", "")
	t.Setenv("JOURNAL_DB_PATH", filepath.Join(dir, "other.db"))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Settings().DailyLossLimit)
	assert.Equal(t, 4, cfg.Settings().MaxTradesPerDay)
	assert.Equal(t, "crypto", cfg.Calculator.DefaultMode)
	assert.Equal(t, 10.0, cfg.Calculator.DefaultLeverage)
	assert.Equal(t, 1.0, cfg.Calculator.DefaultRiskPercent, "unset keys keep defaults")
	assert.Equal(t, 15*time.Second, cfg.Coach.Timeout)
	assert.Equal(t, "from-file", cfg.Credentials.Coach.APIKey)
	assert.Equal(t, filepath.Join(dir, "other.db"), cfg.Storage.DBPath)

	t.Setenv("OPENAI_API_KEY", "openai-key")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "openai-key", cfg.Credentials.Coach.APIKey)

	t.Setenv("JOURNAL_AI_API_KEY", "journal-key")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "journal-key", cfg.Credentials.Coach.APIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"negative loss limit", "[risk]\ndaily_loss_limit = -5.0\n"},
		{"risk percent above 100", "[calculator]\ndefault_risk_percent = 150.0\n"},
		{"unknown mode", "[calculator]\ndefault_mode = \"stocks\"\n"},
		{"leverage below 1", "[calculator]\ndefault_leverage = 0.5\n"},
		{"negative reward risk", "[backtest]\nreward_risk = -1.0\n"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(tt.toml), 0644))

			_, err := Load(dir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfigInvalid), err.Error())
		})
	}
}

func TestBacktestDefaultsAndLogConfig(t *testing.T) {
	cfg := &Config{
		Dir:      "/tmp/journal",
		Backtest: BacktestConfig{Balance: 5000, RiskPercent: 2, RewardRisk: 3, Asset: "XAUUSD", Style: "swing"},
		Logging:  LoggingConfig{Level: "debug", File: true, MaxSize: 1},
	}

	bt := cfg.BacktestDefaults()
	assert.Equal(t, 5000.0, bt.Balance)
	assert.Equal(t, "swing", bt.Style)
	assert.Zero(t, bt.StrategyID)

	lc := cfg.LogConfig()
	assert.Equal(t, filepath.Join("/tmp/journal", "logs", "journal.log"), lc.FilePath)
	assert.Equal(t, "debug", lc.Level)
}
