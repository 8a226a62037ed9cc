package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-journal/internal/coach"
	"trading-journal/internal/config"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
)

// Version information
const (
	Version   = "1.0.0"
	BuildDate = "2026-10-01"
)

// commandTimeout bounds the store work of a single command.
const commandTimeout = 30 * time.Second

// App holds the application dependencies. Fields left nil are built from
// the configuration before the first command runs.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.JournalStore
	Coach  *coach.Coach
	Now    func() time.Time

	ownsStore bool
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tj",
		Short: "Trading journal and risk calculator",
		Long: `A personal trading journal for forex and crypto.

It sizes positions from your account risk, records trades, enforces daily
loss and trade-count guardrails, scores your discipline and derives
performance analytics from the journal. An optional AI coach reviews the
journal through any OpenAI-compatible API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "answer yes to every confirmation")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addCalcCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addStrategyCommands(rootCmd, app)
	addDashboardCommands(rootCmd, app)
	addSettingsCommands(rootCmd, app)
	addBacktestCommands(rootCmd, app)
	addCoachCommands(rootCmd, app)

	return rootCmd
}

// setup builds whatever the caller did not supply.
func (a *App) setup(cmd *cobra.Command) error {
	if a.Now == nil {
		a.Now = time.Now
	}

	if a.Config == nil {
		dir, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg
		a.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
		for _, path := range cfg.Created {
			a.Logger.Info().Str("path", path).Msg("Created configuration template")
		}
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	if a.Store == nil {
		s, err := store.NewSQLiteStore(a.Config.Storage.DBPath, store.WithLogger(a.Logger))
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		a.Store = s
		a.ownsStore = true
		a.Logger.Debug().Str("path", a.Config.Storage.DBPath).Msg("SQLite store initialized")
	}

	if a.Coach == nil {
		var llm coach.LLMClient
		if a.Config.HasCoach() {
			llm = coach.NewOpenAIClient(
				a.Config.Credentials.Coach.APIKey,
				a.Config.Coach.BaseURL,
				a.Config.Coach.Model,
				coach.WithMaxTokens(a.Config.Coach.MaxTokens),
				coach.WithTemperature(a.Config.Coach.Temperature),
				coach.WithRetry(retryConfig(a.Config.Coach.MaxAttempts)),
			)
			a.Logger.Debug().Str("model", a.Config.Coach.Model).Msg("AI coach client initialized")
		}
		a.Coach = coach.New(llm, a.Config.Coach.Timeout, a.Logger)
	}

	return nil
}

// retryConfig is the default coach retry policy with the configured
// attempt count.
func retryConfig(attempts int) coach.RetryConfig {
	cfg := coach.DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	return cfg
}

// Close releases the store if the app opened it.
func (a *App) Close() error {
	if a.ownsStore && a.Store != nil {
		a.ownsStore = false
		return a.Store.Close()
	}
	return nil
}

// commandContext returns a command context carrying the logger.
func (a *App) commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, a.Logger)
	return context.WithTimeout(ctx, timeout)
}

// settings returns the stored guardrail limits, falling back to the
// configured defaults until the user saves their own.
func (a *App) settings(ctx context.Context) (models.Settings, error) {
	s, err := a.Store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if s == nil {
		return a.Config.Settings(), nil
	}
	return *s, nil
}

// backtestConfig returns the stored session configuration or the defaults.
func (a *App) backtestConfig(ctx context.Context) (models.BacktestSessionConfig, error) {
	cfg, err := a.Store.GetBacktestConfig(ctx)
	if err != nil {
		return models.BacktestSessionConfig{}, err
	}
	if cfg == nil {
		return a.Config.BacktestDefaults(), nil
	}
	return *cfg, nil
}

// startOfDay returns local midnight of t's calendar day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// todayTrades returns today's live trades, pending included.
func (a *App) todayTrades(ctx context.Context) ([]models.Trade, error) {
	start := startOfDay(a.Now())
	return a.Store.ListTrades(ctx, store.TradeQuery{From: start, To: start.AddDate(0, 0, 1)})
}

// preMarketDone reports whether the pre-market routine was recorded today.
func (a *App) preMarketDone(ctx context.Context) (bool, error) {
	v, err := a.Store.GetMarker(ctx, store.MarkerPreMarket)
	if err != nil {
		return false, err
	}
	return v == a.Now().Format(store.PreMarketLayout), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trading Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				redacted := *app.Config
				redacted.Credentials = config.Credentials{}
				return output.JSON(redacted)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir, "database": app.Config.Storage.DBPath})
			} else {
				output.Println(app.Config.Dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Risk Guardrails")
	output.Printf("  Daily Loss Limit: %s\n", limitText(cfg.Risk.DailyLossLimit > 0, FormatCurrency(cfg.Risk.DailyLossLimit)))
	output.Printf("  Max Trades/Day:   %s\n", limitText(cfg.Risk.MaxTradesPerDay > 0, fmt.Sprintf("%d", cfg.Risk.MaxTradesPerDay)))
	output.Println()

	output.Bold("Calculator")
	output.Printf("  Balance:          %s\n", FormatCurrency(cfg.Calculator.DefaultBalance))
	output.Printf("  Risk %%:           %.2f%%\n", cfg.Calculator.DefaultRiskPercent)
	output.Printf("  Mode:             %s\n", cfg.Calculator.DefaultMode)
	output.Printf("  Leverage:         %.0fx\n", cfg.Calculator.DefaultLeverage)
	output.Println()

	output.Bold("Backtest Defaults")
	output.Printf("  Balance:          %s\n", FormatCurrency(cfg.Backtest.Balance))
	output.Printf("  Risk %%:           %.2f%%\n", cfg.Backtest.RiskPercent)
	output.Printf("  Reward:Risk:      %s\n", FormatRiskReward(cfg.Backtest.RewardRisk))
	output.Println()

	output.Bold("AI Coach")
	output.Printf("  Endpoint:         %s\n", cfg.Coach.BaseURL)
	output.Printf("  Model:            %s\n", cfg.Coach.Model)
	output.Printf("  Timeout:          %s\n", cfg.Coach.Timeout)
	output.Printf("  API Key:          %s\n", limitText(cfg.HasCoach(), "configured"))
	output.Println()

	output.Bold("Storage")
	output.Printf("  Database:         %s\n", cfg.Storage.DBPath)
	output.Printf("  Log Level:        %s\n", cfg.Logging.Level)
}

func limitText(enabled bool, text string) string {
	if !enabled {
		return "disabled"
	}
	return text
}
