package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
)

type strategyInput struct {
	Name        string   `flag:"name" validate:"required,max=80"`
	Description string   `flag:"description" validate:"max=500"`
	Open        []string `flag:"open" validate:"dive,required"`
	SLTP        []string `flag:"sltp" validate:"dive,required"`
	Indicator   []string `flag:"indicator" validate:"dive,required"`
}

func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "strategy",
		Aliases: []string{"strategies", "st"},
		Short:   "Manage trading strategies",
		Long:    "Create, list and delete strategies and their pre-trade checklists.",
	}

	cmd.AddCommand(newStrategyAddCmd(app))
	cmd.AddCommand(newStrategyListCmd(app))
	cmd.AddCommand(newStrategyShowCmd(app))
	cmd.AddCommand(newStrategyDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newStrategyAddCmd(app *App) *cobra.Command {
	var in strategyInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a strategy",
		Example: `  tj strategy add --name "London Breakout" \
    --open "Asian range marked" --open "Break with volume" \
    --sltp "SL beyond range" --indicator "RSI not overbought"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			in.Name = strings.TrimSpace(in.Name)
			if err := validateInput(in); err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			s := &models.Strategy{
				Name:               in.Name,
				Description:        in.Description,
				OpenChecklist:      in.Open,
				SLTPChecklist:      in.SLTP,
				IndicatorChecklist: in.Indicator,
			}
			if err := app.Store.SaveStrategy(ctx, s); err != nil {
				return fmt.Errorf("failed to save strategy: %w", err)
			}
			logger := logging.WithStrategy(app.Logger, s.Name)
			logger.Info().Int64("strategy_id", s.ID).Msg("Strategy created")

			if output.IsJSON() {
				return output.JSON(s)
			}
			output.Success("✓ Strategy #%d %q created", s.ID, s.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "strategy name")
	cmd.Flags().StringVar(&in.Description, "description", "", "short description")
	cmd.Flags().StringArrayVar(&in.Open, "open", nil, "opening checklist item (repeatable)")
	cmd.Flags().StringArrayVar(&in.SLTP, "sltp", nil, "stop-loss/take-profit checklist item (repeatable)")
	cmd.Flags().StringArrayVar(&in.Indicator, "indicator", nil, "indicator checklist item (repeatable)")
	return cmd
}

func newStrategyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List strategies with their performance",
		Long:    "List strategies with trade count, win rate and P&L derived from the live journal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			strategies, err := app.Store.ListStrategies(ctx)
			if err != nil {
				return err
			}
			trades, err := app.loadTrades(ctx, false)
			if err != nil {
				return err
			}
			perf := analytics.PerformanceByStrategy(strategies, trades)

			if output.IsJSON() {
				return output.JSON(perf)
			}
			if len(perf) == 0 {
				output.Info("No strategies yet. Add one with 'tj strategy add --name <name>'.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Checklist", "Trades", "Win Rate", "P&L")
			for _, p := range perf {
				table.AddRow(
					strconv.FormatInt(p.Strategy.ID, 10),
					TruncateString(p.Strategy.Name, 40),
					strconv.Itoa(len(p.Strategy.Checklist())),
					strconv.Itoa(p.Trades),
					fmt.Sprintf("%.1f%%", p.WinRate),
					output.FormatPnL(p.TotalPnL),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newStrategyShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a strategy and its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			id, err := parseStrategyID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			s, err := app.Store.GetStrategy(ctx, id)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(s)
			}

			output.Bold("#%d %s", s.ID, s.Name)
			if s.Description != "" {
				output.Dim("%s", s.Description)
			}
			n := 0
			for _, section := range []struct {
				title string
				items []string
			}{
				{"Opening", s.OpenChecklist},
				{"SL/TP", s.SLTPChecklist},
				{"Indicators", s.IndicatorChecklist},
			} {
				if len(section.items) == 0 {
					continue
				}
				output.Println()
				output.Printf("  %s\n", output.Cyan(section.title))
				for _, item := range section.items {
					n++
					output.Printf("  %2d. %s\n", n, item)
				}
			}
			return nil
		},
	}
}

func newStrategyDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a strategy",
		Long:    "Delete a strategy. Journaled trades keep the strategy name.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			id, err := parseStrategyID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			s, err := app.Store.GetStrategy(ctx, id)
			if err != nil {
				return err
			}
			if !output.Confirm("Delete strategy %q?", s.Name) {
				return errors.ErrCancelled
			}
			if err := app.Store.DeleteStrategy(ctx, id); err != nil {
				return err
			}
			logger := logging.WithStrategy(app.Logger, s.Name)
			logger.Info().Int64("strategy_id", id).Msg("Strategy deleted")

			if output.IsJSON() {
				return output.JSON(map[string]int64{"deleted": id})
			}
			output.Success("✓ Strategy %q deleted", s.Name)
			return nil
		},
	}
}

func parseStrategyID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("id", arg, "expected a positive strategy id")
	}
	return id, nil
}
