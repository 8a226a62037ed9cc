package risk

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-journal/internal/models"
)

// Property: direction follows the side of the stop relative to entry, and
// equal levels are always flagged invalid.
func TestProperty_DirectionInference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("stop below entry is LONG, above is SHORT", prop.ForAll(
		func(entry, offset float64) bool {
			long := Calculate(SizingInput{Balance: 1000, RiskPercent: 1, Symbol: "EURUSD", Entry: entry, StopLoss: entry - offset})
			short := Calculate(SizingInput{Balance: 1000, RiskPercent: 1, Symbol: "EURUSD", Entry: entry, StopLoss: entry + offset})
			return long.Direction == models.DirectionLong && !long.InvalidPriceLevels &&
				short.Direction == models.DirectionShort && !short.InvalidPriceLevels
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.01, 0.9),
	))

	properties.Property("equal entry and stop is invalid", prop.ForAll(
		func(entry float64, crypto bool) bool {
			mode := models.ModeForex
			if crypto {
				mode = models.ModeCrypto
			}
			res := Calculate(SizingInput{Balance: 1000, RiskPercent: 1, Mode: mode, Entry: entry, StopLoss: entry})
			return res.Direction == models.DirectionNone && res.InvalidPriceLevels && res.PositionSize() == 0
		},
		gen.Float64Range(0, 100000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: the loss check never warns and blocks at the same time, and
// blocking is monotonic in the loss amount.
func TestProperty_GuardrailMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("larger loss never unblocks", prop.ForAll(
		func(limit, loss, extra float64) bool {
			settings := models.Settings{DailyLossLimit: limit}
			a := CheckDailyLoss([]models.Trade{{Result: models.ResultLoss, PnL: -loss}}, settings)
			b := CheckDailyLoss([]models.Trade{{Result: models.ResultLoss, PnL: -(loss + extra)}}, settings)
			if a.Warning && !a.Allowed {
				return false
			}
			return a.Allowed || !b.Allowed
		},
		gen.Float64Range(1, 10000),
		gen.Float64Range(0, 20000),
		gen.Float64Range(0, 5000),
	))

	properties.TestingRun(t)
}

// Property: the discipline score is always within [0, 100].
func TestProperty_DisciplineScoreClamped(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score stays within bounds", prop.ForAll(
		func(skipped, trades int, pnl, limit float64, maxTrades int, preMarket bool) bool {
			today := make([]models.Trade, trades)
			for i := 0; i < skipped && i < trades; i++ {
				today[i].ChecklistComplete = models.Bool(false)
			}
			got := ScoreDiscipline(DisciplineInput{
				Trades:        today,
				DailyPnL:      pnl,
				Settings:      models.Settings{DailyLossLimit: limit, MaxTradesPerDay: maxTrades},
				PreMarketDone: preMarket,
			})
			return got.Score >= 0 && got.Score <= 100
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(0, 2000),
		gen.IntRange(0, 20),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
