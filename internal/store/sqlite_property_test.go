package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-journal/internal/models"
)

// Property: For any valid trade, saving it to the database and then
// retrieving it should produce an equivalent trade (round-trip consistency).
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trades_property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	assets := []string{"EURUSD", "USDJPY", "XAUUSD", "GBPUSD", "BTCUSDT", "ETHUSDT"}
	resultGen := gen.OneConstOf(models.ResultPending, models.ResultWin, models.ResultLoss, models.ResultTPHit, models.ResultSLHit, models.ResultBreakeven)
	priceGen := gen.Float64Range(0.5, 70000.0)
	minuteGen := gen.IntRange(0, 60*24*365)

	properties.Property("Trade round-trip: save then retrieve produces equivalent data", prop.ForAll(
		func(assetIdx int, result models.Result, entry, pnl float64, minute int, checklist bool) bool {
			ctx := context.Background()
			date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)

			orig := models.Trade{
				Date:              date,
				Mode:              models.ModeForex,
				Asset:             assets[assetIdx%len(assets)],
				Direction:         models.DirectionLong,
				Entry:             roundToDecimal(entry, 5),
				StopLoss:          roundToDecimal(entry*0.99, 5),
				TakeProfit:        roundToDecimal(entry*1.02, 5),
				Risk:              100,
				RewardRisk:        2,
				Result:            result,
				PnL:               roundToDecimal(pnl, 2),
				Emotion:           models.EmotionNeutral,
				ChecklistComplete: models.Bool(checklist),
			}

			if err := store.SaveTrade(ctx, &orig); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			retrieved, err := store.GetTrade(ctx, orig.ID)
			if err != nil {
				t.Logf("Failed to get trade: %v", err)
				return false
			}

			if !tradesEqual(orig, *retrieved) {
				t.Logf("Trade mismatch: original=%+v, retrieved=%+v", orig, *retrieved)
				return false
			}
			return true
		},
		gen.IntRange(0, len(assets)-1),
		resultGen,
		priceGen,
		gen.Float64Range(-1000, 1000),
		minuteGen,
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// roundToDecimal rounds a float to specified decimal places
func roundToDecimal(val float64, places int) float64 {
	multiplier := math.Pow(10, float64(places))
	return math.Round(val*multiplier) / multiplier
}

// tradesEqual compares the persisted fields of two trades.
func tradesEqual(a, b models.Trade) bool {
	if a.ID != b.ID || !a.Date.Equal(b.Date) || !a.EntryTime.Equal(b.EntryTime) {
		return false
	}
	if a.Asset != b.Asset || a.Result != b.Result || a.Mode != b.Mode || a.Direction != b.Direction {
		return false
	}
	if a.Entry != b.Entry || a.StopLoss != b.StopLoss || a.TakeProfit != b.TakeProfit || a.PnL != b.PnL {
		return false
	}
	if (a.ChecklistComplete == nil) != (b.ChecklistComplete == nil) {
		return false
	}
	return a.ChecklistComplete == nil || *a.ChecklistComplete == *b.ChecklistComplete
}
