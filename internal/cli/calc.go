package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/risk"
)

// calcInput holds the calculator flags.
type calcInput struct {
	Mode        string  `flag:"mode" validate:"oneof=forex crypto"`
	Symbol      string  `flag:"symbol" validate:"required"`
	Balance     float64 `flag:"balance"`
	RiskPercent float64 `flag:"risk" validate:"gte=0,lte=100"`
	Entry       float64 `flag:"entry" validate:"gt=0"`
	StopLoss    float64 `flag:"sl" validate:"gt=0"`
	TakeProfit  float64 `flag:"tp" validate:"gte=0"`
	Leverage    float64 `flag:"leverage" validate:"gte=0"`
}

// saveOptions holds the journal fields attached to a saved calculation.
type saveOptions struct {
	StrategyID int64
	Emotion    models.Emotion
	Notes      string
	// Checked lists the ticked checklist items, 1-based. Nil means the
	// checklist was not used and the trade is saved as incomplete.
	Checked []int
}

func addCalcCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newCalcCmd(app))
}

func newCalcCmd(app *App) *cobra.Command {
	var in calcInput
	var opts saveOptions
	var save bool
	var emotion string

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Position sizing calculator",
		Long: `Compute position size, monetary risk and reward:risk from your balance and
risk percent. Forex sizes in standard lots, crypto in units of the base asset.

With --save the calculation is journaled as a PENDING trade after the daily
guardrails pass.`,
		Example: `  tj calc -s EURUSD --entry 1.1000 --sl 1.0950 --tp 1.1100
  tj calc --mode crypto -s BTCUSDT --entry 64000 --sl 63000 --leverage 10
  tj calc -s GBPUSD --entry 1.27 --sl 1.265 --save --strategy 1 --checked 1,2,3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			in.Mode = strings.ToLower(in.Mode)
			if !cmd.Flags().Changed("mode") {
				in.Mode = app.Config.Calculator.DefaultMode
			}
			if !cmd.Flags().Changed("balance") {
				in.Balance = app.Config.Calculator.DefaultBalance
			}
			if !cmd.Flags().Changed("risk") {
				in.RiskPercent = app.Config.Calculator.DefaultRiskPercent
			}
			if !cmd.Flags().Changed("leverage") {
				in.Leverage = app.Config.Calculator.DefaultLeverage
			}
			if err := validateInput(in); err != nil {
				return err
			}

			res := risk.Calculate(risk.SizingInput{
				Balance:     in.Balance,
				RiskPercent: in.RiskPercent,
				Mode:        models.ParseMode(in.Mode),
				Symbol:      strings.ToUpper(in.Symbol),
				Entry:       in.Entry,
				StopLoss:    in.StopLoss,
				TakeProfit:  in.TakeProfit,
				Leverage:    in.Leverage,
			})

			if !save {
				if output.IsJSON() {
					return output.JSON(res)
				}
				displayCalculation(output, res)
				return res.Err()
			}

			if !cmd.Flags().Changed("checked") {
				opts.Checked = nil
			} else if opts.Checked == nil {
				opts.Checked = []int{}
			}
			opts.Emotion = models.ParseEmotion(emotion)

			ctx, cancel := app.commandContext(cmd, commandTimeout)
			defer cancel()

			if !output.IsJSON() {
				displayCalculation(output, res)
				output.Println()
			}

			trade, err := saveCalculation(ctx, app, output, res, opts)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"calculation": res,
					"trade":       trade,
				})
			}
			output.Success("✓ Trade saved to journal (%s)", trade.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Mode, "mode", "m", "forex", "market mode: forex or crypto")
	cmd.Flags().StringVarP(&in.Symbol, "symbol", "s", "", "currency or crypto pair (e.g. EURUSD, BTCUSDT)")
	cmd.Flags().Float64VarP(&in.Balance, "balance", "b", 0, "account balance (default from config)")
	cmd.Flags().Float64VarP(&in.RiskPercent, "risk", "r", 0, "risk per trade in percent (default from config)")
	cmd.Flags().Float64Var(&in.Entry, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&in.StopLoss, "sl", 0, "stop-loss price")
	cmd.Flags().Float64Var(&in.TakeProfit, "tp", 0, "take-profit price (optional)")
	cmd.Flags().Float64Var(&in.Leverage, "leverage", 0, "leverage, crypto only (default from config)")

	cmd.Flags().BoolVar(&save, "save", false, "save the calculation to the journal")
	cmd.Flags().Int64Var(&opts.StrategyID, "strategy", 0, "strategy id (required with --save)")
	cmd.Flags().StringVar(&emotion, "emotion", string(models.EmotionNeutral), "emotion tag")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "trade notes")
	cmd.Flags().IntSliceVar(&opts.Checked, "checked", nil, "ticked checklist items, 1-based; without it the checklist counts as skipped")

	return cmd
}

// saveCalculation journals a calculation as a PENDING trade. The checks run
// in order: trade count block, trade count warning, daily loss block, daily
// loss warning, strategy, checklist.
func saveCalculation(ctx context.Context, app *App, output *Output, res risk.SizingResult, opts saveOptions) (*models.Trade, error) {
	logger := logging.WithOperation(logging.FromContext(ctx), "save_trade")

	if err := res.Err(); err != nil {
		return nil, err
	}
	if res.NonPositiveBalance {
		return nil, errors.ErrNonPositiveBalance
	}

	today, err := app.todayTrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's trades: %w", err)
	}
	settings, err := app.settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	decision := risk.EvaluateGuardrails(today, settings)

	if !decision.Trades.Allowed {
		logging.LogGuardrail(logger, risk.RuleMaxTrades, float64(decision.Trades.Count), float64(decision.Trades.Limit), true)
		return nil, decision.Trades.Err()
	}
	if decision.Trades.Warning {
		logging.LogGuardrail(logger, risk.RuleMaxTrades, float64(decision.Trades.Count), float64(decision.Trades.Limit), false)
		if !output.Confirm("This will be trade %d of %d allowed today. Continue?", decision.Trades.Count+1, decision.Trades.Limit) {
			return nil, errors.ErrCancelled
		}
	}
	if !decision.Loss.Allowed {
		logging.LogGuardrail(logger, risk.RuleDailyLoss, decision.Loss.Loss, decision.Loss.Limit, true)
		return nil, decision.Loss.Err()
	}
	if decision.Loss.Warning {
		logging.LogGuardrail(logger, risk.RuleDailyLoss, decision.Loss.Loss, decision.Loss.Limit, false)
		if !output.Confirm("You have lost %s of your %s daily limit (%.0f%%). Continue?",
			FormatCurrency(decision.Loss.Loss), FormatCurrency(decision.Loss.Limit), decision.Loss.Percentage) {
			return nil, errors.ErrCancelled
		}
	}

	if opts.StrategyID == 0 {
		return nil, errors.NewValidationError("--strategy", 0, "select a strategy before saving")
	}
	strategy, err := app.Store.GetStrategy(ctx, opts.StrategyID)
	if err != nil {
		return nil, err
	}

	checklist := models.Bool(false)
	if opts.Checked != nil {
		complete, err := checklistComplete(strategy.Checklist(), opts.Checked)
		if err != nil {
			return nil, err
		}
		if !complete && !output.Confirm("Checklist incomplete (%d of %d items). Save anyway?", len(uniqueInts(opts.Checked)), len(strategy.Checklist())) {
			return nil, errors.ErrCancelled
		}
		checklist = models.Bool(complete)
	}

	now := app.Now()
	trade := &models.Trade{
		Date:              now,
		EntryTime:         now,
		Mode:              res.Mode,
		Asset:             res.Asset,
		Direction:         res.Direction,
		Entry:             res.Entry,
		StopLoss:          res.StopLoss,
		TakeProfit:        res.TakeProfit,
		PositionSize:      res.PositionSize(),
		Risk:              res.MaxRisk,
		RewardRisk:        res.RewardRisk,
		Result:            models.ResultPending,
		StrategyID:        strategy.ID,
		StrategyName:      strategy.Name,
		Emotion:           opts.Emotion,
		Notes:             opts.Notes,
		ChecklistComplete: checklist,
	}
	if res.Mode == models.ModeCrypto {
		trade.Leverage = res.Leverage
	}

	if err := app.Store.SaveTrade(ctx, trade); err != nil {
		return nil, errors.Wrap(err, "failed to save trade")
	}
	logging.LogTradeSaved(logger, trade.ID, trade.Asset, trade.Risk, trade.RewardRisk)
	return trade, nil
}

// checklistComplete reports whether every item was ticked. Item numbers
// are 1-based.
func checklistComplete(items []string, checked []int) (bool, error) {
	seen := uniqueInts(checked)
	for n := range seen {
		if n < 1 || n > len(items) {
			return false, errors.NewValidationError("--checked", n, fmt.Sprintf("checklist has %d items", len(items)))
		}
	}
	return len(seen) == len(items), nil
}

func uniqueInts(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func displayCalculation(output *Output, res risk.SizingResult) {
	var direction string
	switch res.Direction {
	case models.DirectionLong:
		direction = output.Green("▲ LONG")
	case models.DirectionShort:
		direction = output.Red("▼ SHORT")
	default:
		direction = output.Yellow("invalid")
	}

	lines := []string{
		fmt.Sprintf("Asset:        %s (%s)", res.Asset, res.Mode),
		fmt.Sprintf("Direction:    %s", direction),
		fmt.Sprintf("Max Risk:     %s (%.2f%% of %s)", FormatCurrency(res.MaxRisk), res.RiskPercent, FormatCurrency(res.Balance)),
		fmt.Sprintf("Entry / SL:   %s / %s", FormatPrice(res.Entry), FormatPrice(res.StopLoss)),
		fmt.Sprintf("Take Profit:  %s", FormatPrice(res.TakeProfit)),
		fmt.Sprintf("Reward:Risk:  %s", FormatRiskReward(res.RewardRisk)),
	}

	if res.Mode == models.ModeCrypto {
		lines = append(lines,
			fmt.Sprintf("Quantity:     %s", FormatSize(res.Quantity)),
			fmt.Sprintf("Exposure:     %s", FormatCurrency(res.Exposure)),
			fmt.Sprintf("Leverage:     %.0fx", res.Leverage),
			fmt.Sprintf("Margin:       %s (%.1f%% of balance)", FormatCurrency(res.MarginNeeded), res.SuggestedMarginPercent),
		)
	} else {
		lines = append(lines,
			fmt.Sprintf("Pips:         %.1f", res.Pips),
			fmt.Sprintf("Pip Value:    %s", FormatCurrency(res.PipValue)),
			fmt.Sprintf("Lot Size:     %s", output.BoldText(fmt.Sprintf("%.2f", res.LotSize))),
		)
	}

	output.Box("Position Size", lines)
	for _, w := range res.Warnings() {
		output.Warning("⚠ %v", w)
	}
}
