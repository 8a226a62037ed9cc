package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/coach"
	"trading-journal/internal/errors"
)

func addCoachCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "AI trading coach",
		Long: `Ask an AI coach about your journal. Requires an API key for an
OpenAI-compatible endpoint in credentials.toml or JOURNAL_AI_API_KEY.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ask <question>",
		Short:   "Ask a question about your trading",
		Example: `  tj coach ask "Why do I keep losing on Fridays?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoach(cmd, app, func(ctx context.Context, snap coach.Snapshot) (string, error) {
				return app.Coach.Ask(ctx, snap, strings.Join(args, " "))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Weekly performance report",
		Long:  "Review the last seven days of trades.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoach(cmd, app, app.Coach.WeeklyReport)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "patterns",
		Short: "Find patterns in your journal",
		Long:  "Look for patterns across strategies, emotions and weekdays. Needs at least 5 closed trades.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoach(cmd, app, app.Coach.Patterns)
		},
	})

	rootCmd.AddCommand(cmd)
}

// runCoach loads the journal snapshot and prints the coach's answer.
func runCoach(cmd *cobra.Command, app *App, ask func(context.Context, coach.Snapshot) (string, error)) error {
	output := NewOutput(cmd)
	if !app.Coach.Available() {
		output.Warning("Add your API key to %s/credentials.toml or set JOURNAL_AI_API_KEY.", app.Config.Dir)
		return errors.ErrCoachUnavailable
	}

	ctx, cancel := app.commandContext(cmd, commandTimeout+app.Config.Coach.Timeout)
	defer cancel()

	snap, err := app.snapshot(ctx)
	if err != nil {
		return err
	}

	if !output.IsJSON() {
		output.Dim("Thinking...")
	}
	answer, err := ask(ctx, snap)
	if err != nil {
		return err
	}

	if output.IsJSON() {
		return output.JSON(map[string]string{"answer": answer})
	}
	output.Println()
	output.Println(strings.TrimSpace(answer))
	return nil
}

// snapshot gathers the live journal for the coach.
func (a *App) snapshot(ctx context.Context) (coach.Snapshot, error) {
	trades, err := a.loadTrades(ctx, false)
	if err != nil {
		return coach.Snapshot{}, err
	}
	strategies, err := a.Store.ListStrategies(ctx)
	if err != nil {
		return coach.Snapshot{}, err
	}
	settings, err := a.settings(ctx)
	if err != nil {
		return coach.Snapshot{}, err
	}
	return coach.Snapshot{Trades: trades, Strategies: strategies, Settings: settings}, nil
}
