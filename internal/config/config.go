// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Risk        RiskConfig       `mapstructure:"risk"`
	Calculator  CalculatorConfig `mapstructure:"calculator"`
	Backtest    BacktestConfig   `mapstructure:"backtest"`
	Logging     LoggingConfig    `mapstructure:"logging"`
	Coach       CoachConfig      `mapstructure:"coach"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Credentials Credentials      `mapstructure:"-"` // Loaded separately

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
	// Created lists template files written because they were missing.
	Created []string `mapstructure:"-"`
}

// RiskConfig holds the default daily guardrail limits. Zero disables a limit.
type RiskConfig struct {
	DailyLossLimit  float64 `mapstructure:"daily_loss_limit" validate:"gte=0"`
	MaxTradesPerDay int     `mapstructure:"max_trades_per_day" validate:"gte=0"`
}

// CalculatorConfig holds the position calculator defaults.
type CalculatorConfig struct {
	DefaultBalance     float64 `mapstructure:"default_balance" validate:"gte=0"`
	DefaultRiskPercent float64 `mapstructure:"default_risk_percent" validate:"gte=0,lte=100"`
	DefaultMode        string  `mapstructure:"default_mode" validate:"oneof=forex crypto"`
	DefaultLeverage    float64 `mapstructure:"default_leverage" validate:"gte=1"`
}

// BacktestConfig holds the defaults for a new backtest session.
type BacktestConfig struct {
	Balance     float64 `mapstructure:"balance" validate:"gte=0"`
	RiskPercent float64 `mapstructure:"risk_percent" validate:"gte=0,lte=100"`
	RewardRisk  float64 `mapstructure:"reward_risk" validate:"gte=0"`
	Asset       string  `mapstructure:"asset"`
	Style       string  `mapstructure:"style"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age" validate:"gte=0"`
}

// CoachConfig holds the AI coach endpoint configuration.
type CoachConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model       string        `mapstructure:"model" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxTokens   int           `mapstructure:"max_tokens" validate:"gte=0"`
	Temperature float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// Credentials holds API credentials.
type Credentials struct {
	Coach CoachCredentials `mapstructure:"coach"`
}

// CoachCredentials holds the AI coach API key.
type CoachCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-journal"
	}
	return filepath.Join(home, ".config", "trading-journal")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. Missing files
// are created from templates and the defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{Dir: configDir}

	created, err := loadConfigFile(configDir, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if created != "" {
		cfg.Created = append(cfg.Created, created)
	}

	created, err = loadCredentials(configDir, &cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}
	if created != "" {
		cfg.Created = append(cfg.Created, created)
	}

	applyEnvOverrides(cfg)

	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = filepath.Join(configDir, "journal.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("risk.daily_loss_limit", 0.0)
	v.SetDefault("risk.max_trades_per_day", 0)

	v.SetDefault("calculator.default_balance", 1000.0)
	v.SetDefault("calculator.default_risk_percent", 1.0)
	v.SetDefault("calculator.default_mode", "forex")
	v.SetDefault("calculator.default_leverage", 1.0)

	v.SetDefault("backtest.balance", 1000.0)
	v.SetDefault("backtest.risk_percent", 1.0)
	v.SetDefault("backtest.reward_risk", 2.0)
	v.SetDefault("backtest.asset", "")
	v.SetDefault("backtest.style", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("coach.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("coach.model", "openai/gpt-4o-mini")
	v.SetDefault("coach.timeout", "60s")
	v.SetDefault("coach.max_tokens", 1024)
	v.SetDefault("coach.temperature", 0.7)
	v.SetDefault("coach.max_attempts", 3)

	v.SetDefault("storage.db_path", "")
}

func loadConfigFile(configDir string, cfg *Config) (string, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	var created string
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return "", err
		}
		// Config file not found, create template and fall back to defaults
		path, err := createTemplateConfig(configDir)
		if err != nil {
			return "", err
		}
		created = path
	}

	return created, v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) (string, error) {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return "", err
	}

	return "", v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	// Coach credentials; the journal-specific variable wins
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.Coach.APIKey = v
	}
	if v := os.Getenv("JOURNAL_AI_API_KEY"); v != "" {
		cfg.Credentials.Coach.APIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (got %v)", fe.Namespace(), fieldRule(fe), fe.Value()))
			}
			return fmt.Errorf("%w: %s", errors.ErrConfigInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}
	return nil
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Settings returns the configured guardrail limits.
func (c *Config) Settings() models.Settings {
	return models.Settings{
		DailyLossLimit:  c.Risk.DailyLossLimit,
		MaxTradesPerDay: c.Risk.MaxTradesPerDay,
	}
}

// BacktestDefaults returns a session configuration seeded from the config.
func (c *Config) BacktestDefaults() models.BacktestSessionConfig {
	return models.BacktestSessionConfig{
		Balance:     c.Backtest.Balance,
		RiskPercent: c.Backtest.RiskPercent,
		RewardRisk:  c.Backtest.RewardRisk,
		Asset:       c.Backtest.Asset,
		Style:       c.Backtest.Style,
	}
}

// LogConfig returns the logging configuration with the log file placed
// under the config directory.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   filepath.Join(c.Dir, "logs", "journal.log"),
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

// HasCoach reports whether an AI coach API key is configured.
func (c *Config) HasCoach() bool {
	return c.Credentials.Coach.APIKey != ""
}
