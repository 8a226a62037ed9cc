package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"trading-journal/internal/errors"
)

func addSettingsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Daily guardrail limits",
		Long: `Show or change the daily loss limit and the maximum trades per day.
Zero disables a limit. Until saved here, the limits come from config.toml.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			s, err := app.settings(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(s)
			}
			output.Bold("Guardrails")
			output.Printf("  Daily Loss Limit: %s\n", limitText(s.DailyLossLimit > 0, FormatCurrency(s.DailyLossLimit)))
			output.Printf("  Max Trades/Day:   %s\n", limitText(s.MaxTradesPerDay > 0, strconv.Itoa(s.MaxTradesPerDay)))
			return nil
		},
	})

	var lossLimit float64
	var maxTrades int
	set := &cobra.Command{
		Use:     "set",
		Short:   "Change the limits",
		Example: `  tj settings set --daily-loss-limit 200 --max-trades 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !cmd.Flags().Changed("daily-loss-limit") && !cmd.Flags().Changed("max-trades") {
				return errors.NewValidationError("settings", nil, "give --daily-loss-limit and/or --max-trades")
			}

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			s, err := app.settings(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("daily-loss-limit") {
				s.DailyLossLimit = lossLimit
			}
			if cmd.Flags().Changed("max-trades") {
				s.MaxTradesPerDay = maxTrades
			}
			if err := validateInput(s); err != nil {
				return err
			}
			if err := app.Store.SaveSettings(ctx, s); err != nil {
				return err
			}
			app.Logger.Info().
				Float64("daily_loss_limit", s.DailyLossLimit).
				Int("max_trades_per_day", s.MaxTradesPerDay).
				Msg("Settings saved")

			if output.IsJSON() {
				return output.JSON(s)
			}
			output.Success("✓ Settings saved")
			return nil
		},
	}
	set.Flags().Float64Var(&lossLimit, "daily-loss-limit", 0, "maximum loss per day, 0 disables")
	set.Flags().IntVar(&maxTrades, "max-trades", 0, "maximum trades per day, 0 disables")
	cmd.AddCommand(set)

	rootCmd.AddCommand(cmd)
}
