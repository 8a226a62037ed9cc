package backtest

import (
	"math"
	"testing"
	"time"

	"trading-journal/internal/analytics"
	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

var start = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func session() models.BacktestSessionConfig {
	return models.BacktestSessionConfig{
		Balance:      1000,
		RiskPercent:  10,
		RewardRisk:   2,
		Asset:        "EURUSD",
		StrategyID:   1,
		StrategyName: "Breakout",
		Style:        "intraday",
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordRecomputesRiskFromEquity(t *testing.T) {
	cfg := session()
	// Equity already at 1100 from an earlier event.
	history := []models.Trade{{
		ID: "seed", Date: start, Result: models.ResultWin, PnL: 100, IsBacktest: true, StrategyID: 1,
	}}

	tests := []struct {
		risk, pnl, equity float64
	}{
		{110, 220, 1320},
		{132, 264, 1584},
	}

	for i, tt := range tests {
		tr, err := Record(cfg, history, analytics.TradeFilter{}, models.OutcomeWin, start.Add(time.Duration(i+1)*time.Minute))
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if !approx(tr.Risk, tt.risk) || !approx(tr.PnL, tt.pnl) || !approx(tr.EquityAfter, tt.equity) {
			t.Errorf("event %d = risk %v pnl %v equity %v, want %v %v %v",
				i+2, tr.Risk, tr.PnL, tr.EquityAfter, tt.risk, tt.pnl, tt.equity)
		}
		history = append(history, tr)
	}
}

func TestReplayCompounds(t *testing.T) {
	cfg := session()
	trades, err := Replay(cfg, []models.Outcome{models.OutcomeWin, models.OutcomeWin, models.OutcomeWin}, start, time.Minute)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	wantRisk := []float64{100, 120, 144}
	wantEquity := []float64{1200, 1440, 1728}
	for i, tr := range trades {
		if !approx(tr.Risk, wantRisk[i]) || !approx(tr.EquityAfter, wantEquity[i]) {
			t.Errorf("event %d = risk %v equity %v, want %v %v", i+1, tr.Risk, tr.EquityAfter, wantRisk[i], wantEquity[i])
		}
		if !tr.IsBacktest || tr.Result != models.ResultWin || tr.StrategyID != 1 {
			t.Errorf("event %d record = %+v", i+1, tr)
		}
	}
}

func TestRecordOutcomes(t *testing.T) {
	cfg := session()

	loss, _ := Record(cfg, nil, analytics.TradeFilter{}, models.OutcomeLoss, start)
	if loss.PnL != -100 || loss.EquityAfter != 900 || loss.Result != models.ResultLoss {
		t.Errorf("loss = %+v", loss)
	}

	be, _ := Record(cfg, nil, analytics.TradeFilter{}, models.OutcomeBreakeven, start)
	if be.PnL != 0 || be.EquityAfter != 1000 || be.Result != models.ResultBreakeven {
		t.Errorf("breakeven = %+v", be)
	}
}

func TestRecordRequiresStrategy(t *testing.T) {
	cfg := session()
	cfg.StrategyID = 0

	tr, err := Record(cfg, nil, analytics.TradeFilter{}, models.OutcomeWin, start)
	if !errors.Is(err, errors.ErrNoStrategySelected) {
		t.Fatalf("Record() error = %v, want ErrNoStrategySelected", err)
	}
	if tr != (models.Trade{}) {
		t.Errorf("Record() returned a record on rejection: %+v", tr)
	}

	if _, err := Replay(cfg, []models.Outcome{models.OutcomeWin}, start, time.Minute); err == nil {
		t.Error("Replay() should reject a session without a strategy")
	}
}

func TestEquityUsesFilteredSubset(t *testing.T) {
	cfg := session()
	history := []models.Trade{
		{ID: "a", Date: start, PnL: 200, Result: models.ResultWin, IsBacktest: true, StrategyID: 1, Asset: "EURUSD"},
		{ID: "b", Date: start.Add(time.Minute), PnL: -50, Result: models.ResultLoss, IsBacktest: true, StrategyID: 2, Asset: "GBPUSD"},
		{ID: "c", Date: start.Add(2 * time.Minute), PnL: 999, Result: models.ResultWin, StrategyID: 1},
	}

	if got := Equity(cfg, history, analytics.TradeFilter{}); got != 1150 {
		t.Errorf("Equity(all) = %v, want 1150", got)
	}
	if got := Equity(cfg, history, analytics.TradeFilter{Strategy: "2"}); got != 950 {
		t.Errorf("Equity(strategy 2) = %v, want 950", got)
	}

	tr, _ := Record(cfg, history, analytics.TradeFilter{Asset: "EURUSD"}, models.OutcomeLoss, start.Add(time.Hour))
	if tr.Risk != 120 || tr.EquityAfter != 1080 {
		t.Errorf("filtered record = risk %v equity %v, want 120 1080", tr.Risk, tr.EquityAfter)
	}
}

func TestSummarize(t *testing.T) {
	cfg := session()
	trades, err := Replay(cfg, []models.Outcome{
		models.OutcomeWin, models.OutcomeLoss, models.OutcomeLoss, models.OutcomeBreakeven, models.OutcomeWin,
	}, start, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	s := Summarize(cfg, trades, analytics.TradeFilter{})
	last := trades[len(trades)-1]
	if !approx(s.Equity, last.EquityAfter) {
		t.Errorf("Equity = %v, want %v", s.Equity, last.EquityAfter)
	}
	if !approx(s.GrowthPercent, (s.Equity-1000)/1000*100) {
		t.Errorf("GrowthPercent = %v", s.GrowthPercent)
	}
	if s.TotalTrades != 5 || s.WinRate != 40 {
		t.Errorf("total/winrate = %d/%v, want 5/40", s.TotalTrades, s.WinRate)
	}
	if s.MaxWinStreak != 1 || s.MaxLoseStreak != 3 {
		t.Errorf("streaks = %d/%d, want 1/3", s.MaxWinStreak, s.MaxLoseStreak)
	}
}

func TestSummarizeZeroBalance(t *testing.T) {
	cfg := session()
	cfg.Balance = 0
	s := Summarize(cfg, nil, analytics.TradeFilter{})
	if s.GrowthPercent != 0 || s.Equity != 0 || s.TotalTrades != 0 {
		t.Errorf("Summarize() = %+v, want zero", s)
	}
}

func TestSummarizeIgnoresInputOrder(t *testing.T) {
	cfg := session()
	trades, _ := Replay(cfg, []models.Outcome{models.OutcomeWin, models.OutcomeWin, models.OutcomeLoss}, start, time.Minute)
	reversed := []models.Trade{trades[2], trades[1], trades[0]}

	if Summarize(cfg, reversed, analytics.TradeFilter{}) != Summarize(cfg, trades, analytics.TradeFilter{}) {
		t.Error("summary depends on input order")
	}
}
