package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/analytics"
	"trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/risk"
	"trading-journal/internal/store"
)

// recentTrades is the number of trades on the dashboard.
const recentTrades = 5

func addDashboardCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newDashboardCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newPreMarketCmd(app))
}

// DashboardView is today's snapshot.
type DashboardView struct {
	Date          string                         `json:"date"`
	DailyPnL      float64                        `json:"dailyPnl"`
	DailyDrawdown float64                        `json:"dailyDrawdown"`
	TradesToday   int                            `json:"tradesToday"`
	Settings      models.Settings                `json:"settings"`
	Guardrails    risk.GuardrailDecision         `json:"guardrails"`
	Exposure      risk.Exposure                  `json:"exposure"`
	Discipline    risk.DisciplineScore           `json:"discipline"`
	Badge         risk.Badge                     `json:"badge"`
	PreMarketDone bool                           `json:"preMarketDone"`
	BestStrategy  *analytics.StrategyPerformance `json:"bestStrategy,omitempty"`
	Recent        []models.Trade                 `json:"recent"`
}

func buildDashboard(ctx context.Context, app *App) (DashboardView, error) {
	today, err := app.todayTrades(ctx)
	if err != nil {
		return DashboardView{}, err
	}
	settings, err := app.settings(ctx)
	if err != nil {
		return DashboardView{}, err
	}
	preMarket, err := app.preMarketDone(ctx)
	if err != nil {
		return DashboardView{}, err
	}
	all, err := app.loadTrades(ctx, false)
	if err != nil {
		return DashboardView{}, err
	}
	strategies, err := app.Store.ListStrategies(ctx)
	if err != nil {
		return DashboardView{}, err
	}

	dailyPnL := risk.DailyPnL(today)
	score := risk.ScoreDiscipline(risk.DisciplineInput{
		Trades:        today,
		DailyPnL:      dailyPnL,
		Settings:      settings,
		PreMarketDone: preMarket,
	})

	view := DashboardView{
		Date:          app.Now().Format(store.PreMarketLayout),
		DailyPnL:      dailyPnL,
		DailyDrawdown: analytics.MaxDrawdown(today),
		TradesToday:   len(today),
		Settings:      settings,
		Guardrails:    risk.EvaluateGuardrails(today, settings),
		Exposure:      risk.OpenExposure(all, settings),
		Discipline:    score,
		Badge:         score.Badge(),
		PreMarketDone: preMarket,
		Recent:        all,
	}
	if len(view.Recent) > recentTrades {
		view.Recent = view.Recent[:recentTrades]
	}
	if best, ok := analytics.BestStrategy(strategies, all); ok && best.Trades > 0 {
		view.BestStrategy = &best
	}
	return view, nil
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash", "today"},
		Short:   "Today's P&L, guardrails and discipline score",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			view, err := buildDashboard(ctx, app)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(view)
			}
			displayDashboard(output, view)
			return nil
		},
	}
}

func displayDashboard(output *Output, v DashboardView) {
	output.Bold("Trading Dashboard - %s", FormatDate(startOfDayFromKey(v.Date)))
	output.Println()

	loss := v.Guardrails.Loss
	count := v.Guardrails.Trades
	lines := []string{
		fmt.Sprintf("Today's P&L:    %s", output.FormatPnL(v.DailyPnL)),
		fmt.Sprintf("Max Drawdown:   %s", FormatCurrency(v.DailyDrawdown)),
	}
	if loss.Limit > 0 {
		lines = append(lines, fmt.Sprintf("Loss Limit:     %s %s / %s", output.Bar(loss.Loss, loss.Limit, 20), FormatCurrency(loss.Loss), FormatCurrency(loss.Limit)))
	} else {
		lines = append(lines, "Loss Limit:     "+output.DimText("disabled"))
	}
	if count.Limit > 0 {
		lines = append(lines, fmt.Sprintf("Trades:         %s %d / %d", output.Bar(float64(count.Count), float64(count.Limit), 20), count.Count, count.Limit))
	} else {
		lines = append(lines, fmt.Sprintf("Trades:         %d", v.TradesToday))
	}
	output.Box("Today", lines)
	output.Println()

	switch {
	case !v.Guardrails.Allowed():
		output.Error("⛔ Trading blocked: %v", v.Guardrails.Err())
	case loss.Warning:
		output.Warning("⚠ %.0f%% of the daily loss limit used", loss.Percentage)
	case count.Warning:
		output.Warning("⚠ One trade left today")
	default:
		output.Success("✓ Guardrails clear")
	}
	output.Println()

	displayExposure(output, v.Exposure)
	output.Println()

	output.Printf("%s  %s\n", output.BoldText(fmt.Sprintf("Discipline Score: %d/100", v.Discipline.Score)), output.Badge(v.Badge))
	for _, inf := range v.Discipline.Infractions {
		output.Printf("  %s %s\n", output.Red(fmt.Sprintf("%+d", inf.Points)), inf.Reason)
	}
	for _, b := range v.Discipline.Bonuses {
		output.Printf("  %s %s\n", output.Green(fmt.Sprintf("%+d", b.Points)), b.Reason)
	}
	if !v.PreMarketDone {
		output.Dim("  Tip: 'tj premarket done' after your pre-market routine earns +%d", risk.PreMarketRoutineBonus)
	}
	output.Println()

	if v.BestStrategy != nil {
		output.Printf("Best Strategy: %s (%.1f%% win rate, %s over %d trades)\n",
			output.Cyan(v.BestStrategy.Strategy.Name), v.BestStrategy.WinRate, output.FormatPnL(v.BestStrategy.TotalPnL), v.BestStrategy.Trades)
		output.Println()
	}

	if len(v.Recent) > 0 {
		output.Bold("Recent Trades")
		table := NewTable(output, "ID", "Date", "Asset", "Result", "P&L")
		for _, t := range v.Recent {
			table.AddRow(ShortID(t.ID), FormatDateTime(t.Date), t.Asset, output.Result(string(t.Result)), output.FormatPnL(t.PnL))
		}
		table.Render()
	}
}

func displayExposure(output *Output, e risk.Exposure) {
	var status string
	switch e.Status {
	case risk.ExposureCritical:
		status = output.Red(string(e.Status))
	case risk.ExposureHigh:
		status = output.Yellow(string(e.Status))
	case risk.ExposureSafe:
		status = output.Green(string(e.Status))
	default:
		status = output.DimText(string(e.Status))
	}

	output.Printf("%s  %s\n", output.BoldText("Risk Exposure"), status)
	output.Printf("  Open Risk:      %s across %d open position(s)\n", FormatCurrency(e.OpenRisk), e.OpenPositions)
	if e.Limit > 0 {
		output.Printf("  Exposure:       %.1f%% of daily limit (%s)\n", e.Percentage, FormatCurrency(e.Limit))
	} else {
		output.Printf("  Exposure:       %s\n", output.DimText("no daily limit set"))
	}
	for _, c := range e.Concentrations {
		output.Warning("  ⚠ Multiple positions on %s (%d)", c.Asset, c.Count)
	}
}

// startOfDayFromKey parses a pre-market date key back into a time.
func startOfDayFromKey(key string) time.Time {
	t, err := time.ParseInLocation(store.PreMarketLayout, key, time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}

// StatsView is the full analytics breakdown of a trade selection.
type StatsView struct {
	Summary     analytics.Summary         `json:"summary"`
	Streaks     analytics.StreakSummary   `json:"streaks"`
	MaxDrawdown float64                   `json:"maxDrawdown"`
	Drawdown    []analytics.DrawdownPoint `json:"drawdown"`
	ByStrategy  []analytics.GroupStats    `json:"byStrategy"`
	ByEmotion   []analytics.GroupStats    `json:"byEmotion"`
	ByWeekday   [7]analytics.GroupStats   `json:"byWeekday"`
}

func buildStats(trades []models.Trade) StatsView {
	return StatsView{
		Summary:     analytics.Summarize(trades),
		Streaks:     analytics.Streaks(trades),
		MaxDrawdown: analytics.MaxDrawdown(trades),
		Drawdown:    analytics.DrawdownSeries(trades),
		ByStrategy:  analytics.ByStrategy(trades),
		ByEmotion:   analytics.ByEmotion(trades),
		ByWeekday:   analytics.ByWeekday(trades),
	}
}

func newStatsCmd(app *App) *cobra.Command {
	var filter analytics.TradeFilter
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Performance analytics",
		Long:  "Win rate, P&L, streaks, drawdown and breakdowns by strategy, emotion and weekday.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			since, ok := analytics.PeriodStart(period, app.Now())
			if !ok {
				return errors.NewValidationError("period", period, "expected 7d, 30d, year or all")
			}
			filter.Since = since

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			trades, err := app.loadTrades(ctx, filter.IncludeBacktest)
			if err != nil {
				return err
			}
			trades = analytics.Filter(trades, normalizeFilter(filter))
			view := buildStats(trades)

			if output.IsJSON() {
				return output.JSON(view)
			}
			if view.Summary.TotalTrades == 0 {
				output.Info("No closed trades match the filters.")
				return nil
			}
			displayStats(output, view, analytics.EquityCurve(trades))
			return nil
		},
	}

	filterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&filter.IncludeBacktest, "backtest", false, "include backtest-flagged trades")
	cmd.Flags().StringVar(&period, "period", analytics.All, "date range: 7d, 30d, year or all")
	return cmd
}

func displayStats(output *Output, v StatsView, curve []analytics.EquityPoint) {
	renderSummary(output, v.Summary)
	output.Printf("  Largest Win:   %s\n", output.FormatPnL(v.Summary.LargestWin))
	output.Printf("  Largest Loss:  %s\n", output.FormatPnL(v.Summary.LargestLoss))
	output.Printf("  Max Drawdown:  %s\n", output.Red(FormatCurrency(v.MaxDrawdown)))
	output.Println()

	output.Bold("Streaks")
	output.Printf("  Current:  %s   Best: W%d   Worst: L%d\n",
		FormatStreak(v.Streaks.Current), v.Streaks.MaxWinStreak, v.Streaks.MaxLoseStreak)
	runs := make([]string, len(v.Streaks.Streaks))
	for i, s := range v.Streaks.Streaks {
		if s > 0 {
			runs[i] = output.Green(FormatStreak(s))
		} else {
			runs[i] = output.Red(FormatStreak(s))
		}
	}
	output.Printf("  %s\n", strings.Join(runs, " "))
	output.Println()

	output.Bold("Equity Curve")
	drawEquityCurve(output, curve)
	output.Println()

	renderGroups(output, "By Strategy", v.ByStrategy)
	renderGroups(output, "By Emotion", v.ByEmotion)
	renderGroups(output, "By Weekday", v.ByWeekday[:])
}

func renderGroups(output *Output, title string, groups []analytics.GroupStats) {
	output.Bold(title)
	table := NewTable(output, "Group", "Trades", "Win Rate", "P&L")
	for _, g := range groups {
		if g.Count == 0 {
			continue
		}
		table.AddRow(g.Key, fmt.Sprintf("%d", g.Count), fmt.Sprintf("%.1f%%", g.WinRate()), output.FormatPnL(g.PnL))
	}
	table.Render()
	output.Println()
}

func drawEquityCurve(output *Output, curve []analytics.EquityPoint) {
	if len(curve) < 2 {
		output.Println("  Insufficient data for equity curve")
		return
	}

	minEquity, maxEquity := 0.0, 0.0
	for _, p := range curve {
		if p.Cumulative < minEquity {
			minEquity = p.Cumulative
		}
		if p.Cumulative > maxEquity {
			maxEquity = p.Cumulative
		}
	}
	if maxEquity == minEquity {
		maxEquity++
	}

	width := 40
	height := 8

	chart := make([][]rune, height)
	for i := range chart {
		chart[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range curve {
		x := i * (width - 1) / (len(curve) - 1)
		y := int((p.Cumulative - minEquity) / (maxEquity - minEquity) * float64(height-1))
		mark := '█'
		if p.Drawdown < 0 {
			mark = '▒'
		}
		chart[height-1-y][x] = mark
	}

	for i := 0; i < height; i++ {
		label := strings.Repeat(" ", 12)
		switch i {
		case 0:
			label = fmt.Sprintf("%12s", FormatCurrency(maxEquity))
		case height - 1:
			label = fmt.Sprintf("%12s", FormatCurrency(minEquity))
		}
		output.Printf("  %s │%s\n", label, string(chart[i]))
	}
	output.Printf("  %s └%s\n", strings.Repeat(" ", 12), strings.Repeat("─", width))
	output.Dim("  █ at peak  ▒ in drawdown")
}

func newPreMarketCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "premarket",
		Short: "Pre-market routine",
		Long:  "Record that today's pre-market routine is done. It earns a discipline bonus for the day.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "done",
		Short: "Mark today's pre-market routine as done",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			day := app.Now().Format(store.PreMarketLayout)
			if err := app.Store.SetMarker(ctx, store.MarkerPreMarket, day); err != nil {
				return err
			}
			app.Logger.Info().Str("date", day).Msg("Pre-market routine completed")

			if output.IsJSON() {
				return output.JSON(map[string]string{"preMarketDone": day})
			}
			output.Success("✓ Pre-market routine recorded for %s (+%d discipline)", day, risk.PreMarketRoutineBonus)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether today's routine is done",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			done, err := app.preMarketDone(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"preMarketDone": done})
			}
			if done {
				output.Success("✓ Pre-market routine done today")
			} else {
				output.Warning("Pre-market routine not done yet")
			}
			return nil
		},
	})

	return cmd
}
