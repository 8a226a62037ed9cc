package analytics

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"trading-journal/internal/models"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// seq builds completed trades one hour apart from P&L values.
func seq(pnls ...float64) []models.Trade {
	trades := make([]models.Trade, len(pnls))
	for i, p := range pnls {
		result := models.ResultWin
		if p < 0 {
			result = models.ResultLoss
		}
		trades[i] = models.Trade{
			ID:     string(rune('a' + i)),
			Date:   base.Add(time.Duration(i) * time.Hour),
			Result: result,
			PnL:    p,
		}
	}
	return trades
}

func TestEquityCurveDrawdownExample(t *testing.T) {
	curve := EquityCurve(seq(100, -30, -20, 50, -80))

	wantCum := []float64{100, 70, 50, 100, 20}
	wantMag := []float64{0, 30, 50, 0, 80}
	for i, p := range curve {
		if p.Cumulative != wantCum[i] {
			t.Errorf("step %d cumulative = %v, want %v", i, p.Cumulative, wantCum[i])
		}
		if p.Peak != 100 {
			t.Errorf("step %d peak = %v, want 100", i, p.Peak)
		}
		if p.DrawdownMagnitude() != wantMag[i] {
			t.Errorf("step %d drawdown = %v, want %v", i, p.DrawdownMagnitude(), wantMag[i])
		}
		if p.Drawdown != -wantMag[i] {
			t.Errorf("step %d signed drawdown = %v, want %v", i, p.Drawdown, -wantMag[i])
		}
	}

	if got := MaxDrawdown(seq(100, -30, -20, 50, -80)); got != 80 {
		t.Errorf("MaxDrawdown() = %v, want 80", got)
	}
}

func TestEquityCurveIgnoresInputOrder(t *testing.T) {
	ordered := seq(100, -30, -20, 50, -80)
	shuffled := make([]models.Trade, len(ordered))
	copy(shuffled, ordered)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if !reflect.DeepEqual(EquityCurve(shuffled), EquityCurve(ordered)) {
		t.Error("equity curve depends on input order")
	}
	if !reflect.DeepEqual(DrawdownSeries(shuffled), DrawdownSeries(ordered)) {
		t.Error("drawdown series depends on input order")
	}

	reversed := []models.Trade{ordered[4], ordered[3], ordered[2], ordered[1], ordered[0]}
	if MaxDrawdown(reversed) != 80 {
		t.Errorf("MaxDrawdown(reversed) = %v, want 80", MaxDrawdown(reversed))
	}
}

func TestEquityCurveSkipsPending(t *testing.T) {
	trades := seq(50, -20)
	trades = append(trades, models.Trade{ID: "p", Date: base.Add(-time.Hour), Result: models.ResultPending})

	curve := EquityCurve(trades)
	if len(curve) != 2 {
		t.Fatalf("len(curve) = %d, want 2", len(curve))
	}
	if curve[1].Cumulative != 30 {
		t.Errorf("cumulative = %v, want 30", curve[1].Cumulative)
	}
}

func TestEquityCurveStartsPeakAtZero(t *testing.T) {
	curve := EquityCurve(seq(-50, 20))
	if curve[0].Peak != 0 || curve[0].Drawdown != -50 {
		t.Errorf("first point = %+v, want peak 0 drawdown -50", curve[0])
	}
	if MaxDrawdown(seq(-50, 20)) != 50 {
		t.Errorf("MaxDrawdown = %v, want 50", MaxDrawdown(seq(-50, 20)))
	}
}

func TestEquityEmpty(t *testing.T) {
	if len(EquityCurve(nil)) != 0 {
		t.Error("expected empty curve")
	}
	if len(DrawdownSeries(nil)) != 0 {
		t.Error("expected empty series")
	}
	if MaxDrawdown(nil) != 0 {
		t.Error("expected zero drawdown")
	}
}

func TestSortByDateDoesNotMutate(t *testing.T) {
	trades := seq(1, 2, 3)
	trades[0], trades[2] = trades[2], trades[0]
	before := make([]models.Trade, len(trades))
	copy(before, trades)

	sorted := SortByDate(trades)
	if !reflect.DeepEqual(trades, before) {
		t.Error("SortByDate mutated its input")
	}
	if sorted[0].PnL != 1 || sorted[2].PnL != 3 {
		t.Errorf("unexpected order: %+v", sorted)
	}
}
