package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-journal/internal/analytics"
	"trading-journal/internal/models"
)

// Property: every replayed record's risk is riskPercent of the equity before
// it, and the final summary equity equals the last snapshot.
func TestProperty_BacktestCompounding(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	outcomeGen := gen.OneConstOf(models.OutcomeWin, models.OutcomeLoss, models.OutcomeBreakeven)

	properties.Property("risk compounds from prior equity", prop.ForAll(
		func(outcomes []models.Outcome, balance, riskPct, rr float64) bool {
			cfg := models.BacktestSessionConfig{Balance: balance, RiskPercent: riskPct, RewardRisk: rr, StrategyID: 1}
			trades, err := Replay(cfg, outcomes, start, time.Minute)
			if err != nil {
				return false
			}

			equity := balance
			for _, tr := range trades {
				if math.Abs(tr.Risk-equity*riskPct/100) > 1e-6*math.Max(1, equity) {
					return false
				}
				equity += tr.PnL
				if math.Abs(tr.EquityAfter-equity) > 1e-6*math.Max(1, math.Abs(equity)) {
					return false
				}
			}

			s := Summarize(cfg, trades, analytics.TradeFilter{})
			return s.TotalTrades == len(outcomes) && math.Abs(s.Equity-equity) < 1e-6*math.Max(1, math.Abs(equity))
		},
		gen.SliceOfN(20, outcomeGen),
		gen.Float64Range(100, 100000),
		gen.Float64Range(0, 5),
		gen.Float64Range(0.5, 5),
	))

	properties.TestingRun(t)
}
