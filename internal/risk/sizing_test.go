package risk

import (
	"math"
	"testing"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateForexEURUSD(t *testing.T) {
	res := Calculate(SizingInput{
		Balance:     10000,
		RiskPercent: 1,
		Mode:        models.ModeForex,
		Symbol:      "EURUSD",
		Entry:       1.1000,
		StopLoss:    1.0950,
		TakeProfit:  1.1100,
	})

	if !almostEqual(res.MaxRisk, 100) {
		t.Errorf("MaxRisk = %v, want 100", res.MaxRisk)
	}
	if math.Abs(res.Pips-50) > 1e-6 {
		t.Errorf("Pips = %v, want 50", res.Pips)
	}
	if res.PipValue != 10 {
		t.Errorf("PipValue = %v, want 10", res.PipValue)
	}
	if math.Abs(res.LotSize-0.2) > 1e-6 {
		t.Errorf("LotSize = %v, want 0.2", res.LotSize)
	}
	if res.Direction != models.DirectionLong {
		t.Errorf("Direction = %q, want LONG", res.Direction)
	}
	if math.Abs(res.RewardRisk-2) > 1e-6 {
		t.Errorf("RewardRisk = %v, want 2", res.RewardRisk)
	}
	if res.Err() != nil || len(res.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings())
	}
	if res.PositionSize() != res.LotSize {
		t.Errorf("PositionSize() should return lot size for forex")
	}
}

func TestPipValue(t *testing.T) {
	tests := []struct {
		symbol string
		entry  float64
		want   float64
	}{
		{"EURUSD", 1.1, 10},
		{"GBP/USD", 1.27, 10},
		{"USDJPY", 150, 1000.0 / 150},
		{"USD/JPY", 0, 1000},
		{"USDCHF", 0.9, 10 / 0.9},
		{"USDCAD", 0, 10},
		{"EURGBP", 0.85, 10},
		{"GBPJPY", 190, 10},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := PipValue(tt.symbol, tt.entry); !almostEqual(got, tt.want) {
				t.Errorf("PipValue(%q, %v) = %v, want %v", tt.symbol, tt.entry, got, tt.want)
			}
		})
	}
}

func TestPipMultiplier(t *testing.T) {
	if PipMultiplier("USDJPY") != 100 {
		t.Error("JPY pairs should use 100")
	}
	if PipMultiplier("gbpjpy") != 100 {
		t.Error("lowercase JPY pairs should use 100")
	}
	if PipMultiplier("EURUSD") != 10000 {
		t.Error("non-JPY pairs should use 10000")
	}
}

func TestCalculateUSDJPYShort(t *testing.T) {
	res := Calculate(SizingInput{
		Balance:     5000,
		RiskPercent: 2,
		Mode:        models.ModeForex,
		Symbol:      "USDJPY",
		Entry:       150.00,
		StopLoss:    150.50,
	})

	if res.Direction != models.DirectionShort {
		t.Errorf("Direction = %q, want SHORT", res.Direction)
	}
	// 50 pips, pip value 1000/150, risk 100
	wantLots := 100 / (50 * (1000.0 / 150))
	if math.Abs(res.LotSize-wantLots) > 1e-6 {
		t.Errorf("LotSize = %v, want %v", res.LotSize, wantLots)
	}
	if res.RewardRisk != 0 {
		t.Errorf("RewardRisk without TP = %v, want 0", res.RewardRisk)
	}
}

func TestCalculateCrypto(t *testing.T) {
	res := Calculate(SizingInput{
		Balance:     1000,
		RiskPercent: 1,
		Mode:        models.ModeCrypto,
		Symbol:      "BTCUSDT",
		Entry:       50000,
		StopLoss:    49000,
		TakeProfit:  53000,
		Leverage:    10,
	})

	if !almostEqual(res.Quantity, 0.01) {
		t.Errorf("Quantity = %v, want 0.01", res.Quantity)
	}
	if !almostEqual(res.Exposure, 500) {
		t.Errorf("Exposure = %v, want 500", res.Exposure)
	}
	if !almostEqual(res.MarginNeeded, 50) {
		t.Errorf("MarginNeeded = %v, want 50", res.MarginNeeded)
	}
	if !almostEqual(res.SuggestedMarginPercent, 5) {
		t.Errorf("SuggestedMarginPercent = %v, want 5", res.SuggestedMarginPercent)
	}
	if !almostEqual(res.RewardRisk, 3) {
		t.Errorf("RewardRisk = %v, want 3", res.RewardRisk)
	}
	if res.PositionSize() != res.Quantity {
		t.Error("PositionSize() should return quantity for crypto")
	}
}

func TestCalculateCryptoLeverageDefaultsAndMarginCap(t *testing.T) {
	res := Calculate(SizingInput{
		Balance:     100,
		RiskPercent: 10,
		Mode:        models.ModeCrypto,
		Entry:       100,
		StopLoss:    99,
	})

	if res.Leverage != 1 {
		t.Errorf("Leverage = %v, want default 1", res.Leverage)
	}
	// quantity 10, exposure 1000, margin 1000 -> 1000% capped at 100
	if res.SuggestedMarginPercent != 100 {
		t.Errorf("SuggestedMarginPercent = %v, want 100", res.SuggestedMarginPercent)
	}
}

func TestCalculateInvalidPriceLevels(t *testing.T) {
	for _, mode := range []models.Mode{models.ModeForex, models.ModeCrypto} {
		res := Calculate(SizingInput{
			Balance:     1000,
			RiskPercent: 1,
			Mode:        mode,
			Symbol:      "EURUSD",
			Entry:       1.1,
			StopLoss:    1.1,
			TakeProfit:  1.2,
		})

		if res.Direction != models.DirectionNone {
			t.Errorf("%s: Direction = %q, want empty", mode, res.Direction)
		}
		if !res.InvalidPriceLevels || !errors.Is(res.Err(), errors.ErrInvalidPriceLevels) {
			t.Errorf("%s: expected InvalidPriceLevels", mode)
		}
		if math.IsInf(res.PositionSize(), 0) || math.IsNaN(res.PositionSize()) {
			t.Errorf("%s: PositionSize() = %v, want finite", mode, res.PositionSize())
		}
		if res.RewardRisk != 0 {
			t.Errorf("%s: RewardRisk = %v, want 0", mode, res.RewardRisk)
		}
	}
}

func TestCalculateNonPositiveBalanceIsAdvisory(t *testing.T) {
	res := Calculate(SizingInput{
		Balance:     0,
		RiskPercent: 1,
		Mode:        models.ModeCrypto,
		Entry:       10,
		StopLoss:    9,
	})

	if !res.NonPositiveBalance {
		t.Fatal("expected NonPositiveBalance flag")
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil for advisory warning", res.Err())
	}
	warnings := res.Warnings()
	if len(warnings) != 1 || !errors.Is(warnings[0], errors.ErrNonPositiveBalance) {
		t.Errorf("Warnings() = %v", warnings)
	}
	if res.SuggestedMarginPercent != 0 {
		t.Errorf("SuggestedMarginPercent = %v, want 0", res.SuggestedMarginPercent)
	}
}
