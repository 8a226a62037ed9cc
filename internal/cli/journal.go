package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/risk"
	"trading-journal/internal/store"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "journal",
		Aliases: []string{"j"},
		Short:   "Trading journal management",
		Long:    "Review, resolve, edit and back up journaled trades.",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalResultCmd(app))
	cmd.AddCommand(newJournalPnLCmd(app))
	cmd.AddCommand(newJournalEditCmd(app))
	cmd.AddCommand(newJournalDeleteCmd(app))
	cmd.AddCommand(newJournalExportCmd(app))
	cmd.AddCommand(newJournalImportCmd(app))
	cmd.AddCommand(newJournalResetCmd(app))

	rootCmd.AddCommand(cmd)
}

// filterFlags binds the shared trade filter flags.
func filterFlags(cmd *cobra.Command, f *analytics.TradeFilter) {
	cmd.Flags().StringVar(&f.Mode, "mode", analytics.All, "filter by mode: forex, crypto or all")
	cmd.Flags().StringVar(&f.Result, "result", analytics.All, "filter by result")
	cmd.Flags().StringVar(&f.Strategy, "strategy", analytics.All, "filter by strategy id")
	cmd.Flags().StringVar(&f.Emotion, "emotion", analytics.All, "filter by emotion")
	cmd.Flags().StringVar(&f.Asset, "asset", analytics.All, "filter by asset")
}

// normalizeFilter maps result labels typed with underscores onto the
// stored vocabulary.
func normalizeFilter(f analytics.TradeFilter) analytics.TradeFilter {
	if r, ok := models.ParseResult(f.Result); ok {
		f.Result = string(r)
	}
	return f
}

// loadTrades returns the live journal, backtest trades included on request.
func (a *App) loadTrades(ctx context.Context, includeBacktest bool) ([]models.Trade, error) {
	trades, err := a.Store.ListTrades(ctx, store.TradeQuery{IncludeBacktest: includeBacktest})
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

// resolveTrade finds a trade by full id or by a unique id suffix.
func (a *App) resolveTrade(ctx context.Context, ref string) (*models.Trade, error) {
	trade, err := a.Store.GetTrade(ctx, ref)
	if err == nil || !errors.Is(err, errors.ErrTradeNotFound) || len(ref) < 4 {
		return trade, err
	}

	trades, lerr := a.loadTrades(ctx, true)
	if lerr != nil {
		return nil, lerr
	}
	var found []models.Trade
	for _, t := range trades {
		if strings.HasSuffix(strings.ToUpper(t.ID), strings.ToUpper(ref)) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return nil, err
	case 1:
		return &found[0], nil
	default:
		return nil, errors.NewValidationError("id", ref, fmt.Sprintf("matches %d trades, use more characters", len(found)))
	}
}

func newJournalListCmd(app *App) *cobra.Command {
	var filter analytics.TradeFilter
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List journaled trades",
		Long:    "List trades newest first with summary statistics for the filtered set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			trades, err := app.loadTrades(ctx, filter.IncludeBacktest)
			if err != nil {
				return err
			}
			trades = analytics.Filter(trades, normalizeFilter(filter))
			summary := analytics.Summarize(trades)

			shown := trades
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trades":  shown,
					"summary": summary,
				})
			}

			if len(trades) == 0 {
				output.Info("No trades match the filters.")
				output.Dim("Tip: journal a calculation with 'tj calc ... --save --strategy <id>'")
				return nil
			}

			renderTradeTable(output, shown)
			output.Println()
			renderSummary(output, summary)
			if len(shown) < len(trades) {
				output.Dim("Showing %d of %d trades (use --limit 0 for all)", len(shown), len(trades))
			}
			return nil
		},
	}

	filterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&filter.IncludeBacktest, "backtest", false, "include backtest-flagged trades")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum trades to show (0 for all)")
	return cmd
}

func renderTradeTable(output *Output, trades []models.Trade) {
	table := NewTable(output, "ID", "Date", "Asset", "Dir", "Entry", "SL", "TP", "Size", "Risk", "R:R", "Result", "P&L", "Strategy")
	for _, t := range trades {
		table.AddRow(
			ShortID(t.ID),
			FormatDateTime(t.Date),
			t.Asset,
			string(t.Direction),
			FormatPrice(t.Entry),
			FormatPrice(t.StopLoss),
			FormatPrice(t.TakeProfit),
			FormatSize(t.PositionSize),
			FormatCurrency(t.Risk),
			FormatRiskReward(t.RewardRisk),
			output.Result(string(t.Result)),
			output.FormatPnL(t.PnL),
			TruncateString(t.StrategyName, 18),
		)
	}
	table.Render()
}

func renderSummary(output *Output, s analytics.Summary) {
	output.Bold("Summary")
	output.Printf("  Closed Trades: %d (%d pending)\n", s.TotalTrades, s.Pending)
	output.Printf("  Wins/Losses:   %d/%d (%.1f%% win rate)\n", s.Wins, s.Losses, s.WinRate)
	output.Printf("  Net P&L:       %s\n", output.FormatPnL(s.NetPnL))
	output.Printf("  Avg R:R:       %s\n", FormatRiskReward(s.AvgRewardRisk))
	if s.TotalTrades > 0 {
		output.Printf("  Profit Factor: %.2f\n", s.ProfitFactor())
		output.Printf("  Expectancy:    %s\n", output.FormatPnL(s.Expectancy()))
	}
}

func newJournalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one trade in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			t, err := app.resolveTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}
			displayTrade(output, *t)
			return nil
		},
	}
}

func displayTrade(output *Output, t models.Trade) {
	lines := []string{
		fmt.Sprintf("Date:       %s", FormatDateTime(t.Date)),
		fmt.Sprintf("Asset:      %s (%s) %s", t.Asset, t.Mode, t.Direction),
		fmt.Sprintf("Entry:      %s", FormatPrice(t.Entry)),
		fmt.Sprintf("Stop Loss:  %s", FormatPrice(t.StopLoss)),
		fmt.Sprintf("Target:     %s", FormatPrice(t.TakeProfit)),
		fmt.Sprintf("Size:       %s", FormatSize(t.PositionSize)),
		fmt.Sprintf("Risk:       %s  R:R %s", FormatCurrency(t.Risk), FormatRiskReward(t.RewardRisk)),
		fmt.Sprintf("Result:     %s", output.Result(string(t.Result))),
		fmt.Sprintf("P&L:        %s", output.FormatPnL(t.PnL)),
		fmt.Sprintf("Strategy:   %s", t.StrategyName),
		fmt.Sprintf("Emotion:    %s", t.Emotion),
	}
	if t.Leverage > 0 {
		lines = append(lines, fmt.Sprintf("Leverage:   %.0fx", t.Leverage))
	}
	if t.ExitTime != nil {
		lines = append(lines, fmt.Sprintf("Closed:     %s", FormatDateTime(*t.ExitTime)))
	}
	if t.ChecklistComplete != nil {
		lines = append(lines, fmt.Sprintf("Checklist:  %v", *t.ChecklistComplete))
	}
	if t.Notes != "" {
		lines = append(lines, fmt.Sprintf("Notes:      %s", t.Notes))
	}
	output.Box("Trade "+t.ID, lines)
}

func newJournalResultCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "result <id> <RESULT>",
		Short: "Set a trade's result",
		Long: `Set a trade's result and derive its P&L.

  TP HIT     risk × reward:risk (reward:risk falls back to 2)
  SL HIT     -risk
  WIN/LOSS   keeps a manually entered P&L magnitude, else as TP/SL
  BREAKEVEN  0

The exit time is stamped the first time a trade leaves PENDING.`,
		Example: `  tj journal result 7XQ2MZ4K tp_hit
  tj journal result 7XQ2MZ4K "SL HIT"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			label := strings.Join(args[1:], " ")
			result, ok := models.ParseResult(label)
			if !ok {
				return errors.NewValidationError("result", label, "expected one of "+resultLabels())
			}

			t, err := app.resolveTrade(ctx, args[0])
			if err != nil {
				return err
			}

			updated := risk.ApplyOutcome(*t, result, app.Now())
			if err := app.Store.UpdateTrade(ctx, &updated); err != nil {
				return errors.Wrap(err, "failed to update trade")
			}
			logging.LogOutcome(logging.FromContext(ctx), updated.ID, string(updated.Result), updated.PnL)

			if output.IsJSON() {
				return output.JSON(updated)
			}
			output.Success("✓ %s %s → %s, P&L %s", updated.Asset, ShortID(updated.ID), output.Result(string(updated.Result)), output.FormatPnL(updated.PnL))
			return nil
		},
	}
}

func resultLabels() string {
	labels := make([]string, len(models.Results))
	for i, r := range models.Results {
		labels[i] = string(r)
	}
	return strings.Join(labels, ", ")
}

func newJournalPnLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pnl <id> <amount>",
		Short: "Override a trade's P&L",
		Long:  "Set a trade's realized P&L by hand. The result is left unchanged. Put -- before a negative amount.",
		Example: `  tj journal pnl 7XQ2MZ4K 137.50
  tj journal pnl 7XQ2MZ4K -- -42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			pnl, err := cast.ToFloat64E(strings.ReplaceAll(args[1], ",", ""))
			if err != nil {
				return errors.NewValidationError("amount", args[1], "not a number")
			}

			t, err := app.resolveTrade(ctx, args[0])
			if err != nil {
				return err
			}
			t.PnL = pnl
			if err := app.Store.UpdateTrade(ctx, t); err != nil {
				return errors.Wrap(err, "failed to update trade")
			}
			logger := logging.WithTradeID(app.Logger, t.ID)
			logger.Info().Float64("pnl", pnl).Msg("P&L overridden")

			if output.IsJSON() {
				return output.JSON(t)
			}
			output.Success("✓ P&L of %s set to %s", ShortID(t.ID), output.FormatPnL(t.PnL))
			return nil
		},
	}
}

// tradeEdit holds the editable trade fields.
type tradeEdit struct {
	Entry      float64 `flag:"entry" validate:"gt=0"`
	StopLoss   float64 `flag:"sl" validate:"gt=0"`
	TakeProfit float64 `flag:"tp" validate:"gte=0"`
	PnL        float64 `flag:"pnl"`
	Notes      string  `flag:"notes"`
	Emotion    string  `flag:"emotion"`
}

func newJournalEditCmd(app *App) *cobra.Command {
	var edit tradeEdit

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a trade",
		Long: `Edit a trade's price legs, P&L, notes or emotion. The result is never
changed here; direction and reward:risk follow the new price legs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			t, err := app.resolveTrade(ctx, args[0])
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			if changed("entry") {
				t.Entry = edit.Entry
			}
			if changed("sl") {
				t.StopLoss = edit.StopLoss
			}
			if changed("tp") {
				t.TakeProfit = edit.TakeProfit
			}
			if changed("pnl") {
				t.PnL = edit.PnL
			}
			if changed("notes") {
				t.Notes = edit.Notes
			}
			if changed("emotion") {
				t.Emotion = models.ParseEmotion(edit.Emotion)
			}

			// Legs are only checked when they move; imported records may carry none.
			if changed("entry") || changed("sl") || changed("tp") {
				if err := validateInput(tradeEdit{Entry: t.Entry, StopLoss: t.StopLoss, TakeProfit: t.TakeProfit}); err != nil {
					return err
				}
				t.Direction = risk.InferDirection(t.Entry, t.StopLoss)
				if t.Direction == models.DirectionNone {
					return errors.ErrInvalidPriceLevels
				}
				t.RewardRisk = risk.RewardRisk(t.Entry, t.StopLoss, t.TakeProfit)
			}

			if err := app.Store.UpdateTrade(ctx, t); err != nil {
				return errors.Wrap(err, "failed to update trade")
			}
			logger := logging.WithTradeID(app.Logger, t.ID)
			logger.Info().Msg("Trade edited")

			if output.IsJSON() {
				return output.JSON(t)
			}
			output.Success("✓ Trade %s updated", ShortID(t.ID))
			return nil
		},
	}

	cmd.Flags().Float64Var(&edit.Entry, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&edit.StopLoss, "sl", 0, "stop-loss price")
	cmd.Flags().Float64Var(&edit.TakeProfit, "tp", 0, "take-profit price (0 clears)")
	cmd.Flags().Float64Var(&edit.PnL, "pnl", 0, "realized P&L")
	cmd.Flags().StringVar(&edit.Notes, "notes", "", "trade notes")
	cmd.Flags().StringVar(&edit.Emotion, "emotion", "", "emotion tag")
	return cmd
}

func newJournalDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a trade",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			t, err := app.resolveTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if !output.Confirm("Delete %s %s from %s?", t.Asset, ShortID(t.ID), FormatDate(t.Date)) {
				return errors.ErrCancelled
			}
			if err := app.Store.DeleteTrade(ctx, t.ID); err != nil {
				return err
			}
			logger := logging.WithTradeID(app.Logger, t.ID)
			logger.Info().Msg("Trade deleted")

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": t.ID})
			}
			output.Success("✓ Trade deleted")
			return nil
		},
	}
}

func newJournalExportCmd(app *App) *cobra.Command {
	var asCSV bool
	var path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal",
		Long: `Write a JSON backup of trades and strategies, or a CSV of trades with --csv.
The file name defaults to one dated today in the current directory; use
-o - for standard output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			var buf bytes.Buffer
			var err error
			if asCSV {
				err = store.ExportCSV(ctx, app.Store, &buf)
			} else {
				err = store.ExportJSON(ctx, app.Store, &buf)
			}
			if err != nil {
				return err
			}

			if path == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if path == "" {
				path = exportFileName(app, asCSV)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			app.Logger.Info().Str("path", path).Bool("csv", asCSV).Msg("Journal exported")

			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Success("✓ Exported to %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "export trades as CSV instead of a JSON backup")
	cmd.Flags().StringVarP(&path, "output", "o", "", "output file, - for stdout")
	return cmd
}

func exportFileName(app *App, asCSV bool) string {
	name := store.BackupFileName(app.Now())
	if asCSV {
		name = strings.TrimSuffix(strings.Replace(name, "-backup", "", 1), filepath.Ext(name)) + ".csv"
	}
	return name
}

func newJournalImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a JSON backup",
		Long:  "Replace every trade and strategy with the contents of a JSON backup.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open backup %s", args[0])
			}
			defer f.Close()

			if !output.Confirm("Replace the whole journal with %s?", filepath.Base(args[0])) {
				return errors.ErrCancelled
			}

			backup, err := store.ImportJSON(ctx, app.Store, f)
			if err != nil {
				return err
			}
			app.Logger.Info().
				Str("path", args[0]).
				Int("trades", len(backup.JournalData)).
				Int("strategies", len(backup.Strategies)).
				Msg("Journal imported")

			if output.IsJSON() {
				return output.JSON(map[string]int{
					"trades":     len(backup.JournalData),
					"strategies": len(backup.Strategies),
				})
			}
			output.Success("✓ Imported %d trades and %d strategies", len(backup.JournalData), len(backup.Strategies))
			return nil
		},
	}
}

func newJournalResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all journal data",
		Long:  "Delete every trade, strategy, setting and backtest record, then restore the default strategies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			if !output.Confirm("Delete ALL journal data? This cannot be undone.") {
				return errors.ErrCancelled
			}
			if err := app.Store.ResetAll(ctx); err != nil {
				return err
			}
			app.Logger.Warn().Msg("Journal reset")

			if output.IsJSON() {
				return output.JSON(map[string]bool{"reset": true})
			}
			output.Success("✓ Journal reset, default strategies restored")
			return nil
		},
	}
}
