package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/backtest"
	"trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
)

func addBacktestCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "backtest",
		Aliases: []string{"bt"},
		Short:   "Backtest session simulator",
		Long: `Simulate a compounding-equity session. Each outcome risks the configured
percent of the current equity and pays the fixed reward:risk on a win.
Session trades are kept apart from the live journal.`,
	}

	cmd.AddCommand(newBacktestConfigCmd(app))
	cmd.AddCommand(newBacktestAddCmd(app))
	cmd.AddCommand(newBacktestSummaryCmd(app))
	cmd.AddCommand(newBacktestReplayCmd(app))
	cmd.AddCommand(newBacktestClearCmd(app))

	rootCmd.AddCommand(cmd)
}

// sessionFilterFlags binds the session filters.
func sessionFilterFlags(cmd *cobra.Command, f *analytics.TradeFilter) {
	cmd.Flags().StringVar(&f.Asset, "asset", analytics.All, "filter by asset")
	cmd.Flags().StringVar(&f.Strategy, "strategy", analytics.All, "filter by strategy id")
	cmd.Flags().StringVar(&f.Style, "style", analytics.All, "filter by trading style")
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func parseOutcomes(args []string) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, 0, len(args))
	for _, arg := range args {
		o, ok := models.ParseOutcome(arg)
		if !ok {
			return nil, errors.NewValidationError("outcome", arg, "expected WIN, LOSS or BREAKEVEN")
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func newBacktestConfigCmd(app *App) *cobra.Command {
	var in models.BacktestSessionConfig

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the session configuration",
		Example: `  tj backtest config
  tj backtest config --balance 1000 --risk 10 --rr 2 --asset EURUSD --strategy 1 --style scalping`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			cfg, err := app.backtestConfig(ctx)
			if err != nil {
				return err
			}

			if anyChanged(cmd, "balance", "risk", "rr", "asset", "style", "strategy") {
				changed := cmd.Flags().Changed
				if changed("balance") {
					cfg.Balance = in.Balance
				}
				if changed("risk") {
					cfg.RiskPercent = in.RiskPercent
				}
				if changed("rr") {
					cfg.RewardRisk = in.RewardRisk
				}
				if changed("asset") {
					cfg.Asset = strings.ToUpper(in.Asset)
				}
				if changed("style") {
					cfg.Style = in.Style
				}
				if changed("strategy") {
					cfg.StrategyID, cfg.StrategyName = 0, ""
					if in.StrategyID != 0 {
						s, err := app.Store.GetStrategy(ctx, in.StrategyID)
						if err != nil {
							return err
						}
						cfg.StrategyID, cfg.StrategyName = s.ID, s.Name
					}
				}
				if err := validateInput(cfg); err != nil {
					return err
				}
				if err := app.Store.SaveBacktestConfig(ctx, cfg); err != nil {
					return err
				}
				app.Logger.Info().
					Float64("balance", cfg.Balance).
					Float64("risk_percent", cfg.RiskPercent).
					Float64("reward_risk", cfg.RewardRisk).
					Int64("strategy_id", cfg.StrategyID).
					Msg("Backtest session configured")
			}

			if output.IsJSON() {
				return output.JSON(cfg)
			}
			output.Bold("Backtest Session")
			output.Printf("  Balance:      %s\n", FormatCurrency(cfg.Balance))
			output.Printf("  Risk:         %.2f%% of equity\n", cfg.RiskPercent)
			output.Printf("  Reward:Risk:  %s\n", FormatRiskReward(cfg.RewardRisk))
			output.Printf("  Asset:        %s\n", cfg.Asset)
			output.Printf("  Style:        %s\n", cfg.Style)
			if cfg.StrategyID == 0 {
				output.Printf("  Strategy:     %s\n", output.Yellow("none (required to record outcomes)"))
			} else {
				output.Printf("  Strategy:     #%d %s\n", cfg.StrategyID, cfg.StrategyName)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&in.Balance, "balance", 0, "starting balance")
	cmd.Flags().Float64Var(&in.RiskPercent, "risk", 0, "risk per trade in percent of equity")
	cmd.Flags().Float64Var(&in.RewardRisk, "rr", 0, "fixed reward:risk paid on a win")
	cmd.Flags().StringVar(&in.Asset, "asset", "", "asset label")
	cmd.Flags().Int64Var(&in.StrategyID, "strategy", 0, "strategy id, 0 clears")
	cmd.Flags().StringVar(&in.Style, "style", "", "trading style tag")
	return cmd
}

// recordOutcomes records each outcome against the equity of the filtered
// session, persisting as it goes.
func recordOutcomes(ctx context.Context, app *App, f analytics.TradeFilter, outcomes []models.Outcome) ([]models.Trade, error) {
	cfg, err := app.backtestConfig(ctx)
	if err != nil {
		return nil, err
	}
	history, err := app.Store.ListBacktestTrades(ctx)
	if err != nil {
		return nil, err
	}

	logger := logging.WithOperation(logging.FromContext(ctx), "backtest")
	recorded := make([]models.Trade, 0, len(outcomes))
	now := app.Now()
	for i, o := range outcomes {
		t, err := backtest.Record(cfg, history, f, o, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			return recorded, err
		}
		if err := app.Store.SaveBacktestTrade(ctx, &t); err != nil {
			return recorded, errors.Wrap(err, "failed to save backtest trade")
		}
		logging.LogBacktestEvent(logger, string(o), t.PnL, t.EquityAfter)
		history = append(history, t)
		recorded = append(recorded, t)
	}
	return recorded, nil
}

func newBacktestAddCmd(app *App) *cobra.Command {
	var filter analytics.TradeFilter

	cmd := &cobra.Command{
		Use:   "add <WIN|LOSS|BREAKEVEN>...",
		Short: "Record one or more outcomes",
		Example: `  tj backtest add win
  tj backtest add W W L BE W`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			outcomes, err := parseOutcomes(args)
			if err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			recorded, err := recordOutcomes(ctx, app, filter, outcomes)
			if err != nil {
				if errors.Is(err, errors.ErrNoStrategySelected) {
					output.Warning("Select a strategy first: tj backtest config --strategy <id>")
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(recorded)
			}
			for _, t := range recorded {
				output.Printf("  %-9s risk %s  P&L %s  equity %s\n",
					output.Result(string(t.Result)), FormatCurrency(t.Risk), output.FormatPnL(t.PnL), output.BoldText(FormatCurrency(t.EquityAfter)))
			}
			return nil
		},
	}

	sessionFilterFlags(cmd, &filter)
	return cmd
}

func newBacktestSummaryCmd(app *App) *cobra.Command {
	var filter analytics.TradeFilter
	var showTrades bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Session equity, growth, win rate and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			cfg, err := app.backtestConfig(ctx)
			if err != nil {
				return err
			}
			history, err := app.Store.ListBacktestTrades(ctx)
			if err != nil {
				return err
			}
			summary := backtest.Summarize(cfg, history, filter)

			if output.IsJSON() {
				return output.JSON(summary)
			}
			displaySessionSummary(output, summary)

			if showTrades {
				f := filter
				f.OnlyBacktest = true
				trades := analytics.SortByDate(analytics.Filter(history, f))
				output.Println()
				table := NewTable(output, "#", "Date", "Asset", "Result", "Risk", "P&L", "Equity")
				for i, t := range trades {
					table.AddRow(fmt.Sprintf("%d", i+1), FormatDateTime(t.Date), t.Asset, output.Result(string(t.Result)),
						FormatCurrency(t.Risk), output.FormatPnL(t.PnL), FormatCurrency(t.EquityAfter))
				}
				table.Render()
			}
			return nil
		},
	}

	sessionFilterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&showTrades, "trades", false, "list the session trades")
	return cmd
}

func displaySessionSummary(output *Output, s backtest.Summary) {
	output.Box("Backtest Session", []string{
		fmt.Sprintf("Starting Balance: %s", FormatCurrency(s.StartingBalance)),
		fmt.Sprintf("Equity:           %s", output.BoldText(FormatCurrency(s.Equity))),
		fmt.Sprintf("Growth:           %s", output.FormatPercent(s.GrowthPercent)),
		fmt.Sprintf("Net P&L:          %s", output.FormatPnL(s.NetPnL)),
		fmt.Sprintf("Trades:           %d", s.TotalTrades),
		fmt.Sprintf("Win Rate:         %.1f%%", s.WinRate),
		fmt.Sprintf("Best/Worst Run:   W%d / L%d", s.MaxWinStreak, s.MaxLoseStreak),
	})
}

func newBacktestReplayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <WIN|LOSS|BREAKEVEN>...",
		Short: "Simulate a sequence without saving it",
		Long:  "Run a fresh session over the given outcomes from the configured balance. Nothing is recorded.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			outcomes, err := parseOutcomes(args)
			if err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			cfg, err := app.backtestConfig(ctx)
			if err != nil {
				return err
			}
			trades, err := backtest.Replay(cfg, outcomes, app.Now(), time.Minute)
			if err != nil {
				return err
			}
			summary := backtest.Summarize(cfg, trades, analytics.TradeFilter{})

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trades":  trades,
					"summary": summary,
				})
			}
			equity := make([]string, len(trades))
			for i, t := range trades {
				equity[i] = FormatCurrency(t.EquityAfter)
			}
			output.Printf("  %s → %s\n", FormatCurrency(cfg.Balance), strings.Join(equity, " → "))
			output.Println()
			displaySessionSummary(output, summary)
			return nil
		},
	}
}

func newBacktestClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every session trade",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			if !output.Confirm("Delete all backtest session trades?") {
				return errors.ErrCancelled
			}
			if err := app.Store.ClearBacktestTrades(ctx); err != nil {
				return err
			}
			app.Logger.Info().Msg("Backtest session cleared")

			if output.IsJSON() {
				return output.JSON(map[string]bool{"cleared": true})
			}
			output.Success("✓ Backtest session cleared")
			return nil
		},
	}
}
