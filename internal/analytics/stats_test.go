package analytics

import (
	"reflect"
	"testing"
	"time"

	"trading-journal/internal/models"
)

func journal() []models.Trade {
	return []models.Trade{
		{ID: "1", Date: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), Mode: models.ModeForex, Result: models.ResultTPHit, PnL: 100, RewardRisk: 2, StrategyID: 1, StrategyName: "Breakout", Emotion: models.EmotionCalm},
		{ID: "2", Date: time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC), Mode: models.ModeForex, Result: models.ResultSLHit, PnL: -50, RewardRisk: 2, StrategyID: 1, StrategyName: "Breakout", Emotion: models.EmotionFOMO},
		{ID: "3", Date: time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC), Mode: models.ModeCrypto, Result: models.ResultWin, PnL: 30, RewardRisk: 1, StrategyID: 2, StrategyName: "Reversal", Emotion: models.EmotionCalm},
		{ID: "4", Date: time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC), Mode: models.ModeCrypto, Result: models.ResultPending, PnL: 0, RewardRisk: 3, StrategyID: 2, StrategyName: "Reversal"},
		{ID: "5", Date: time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC), Mode: models.ModeForex, Result: models.ResultBreakeven, PnL: 0, RewardRisk: 0},
		{ID: "6", Date: time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC), Mode: models.ModeForex, Result: models.ResultWin, PnL: 999, RewardRisk: 5, StrategyID: 1, IsBacktest: true},
	}
}

func TestSummarize(t *testing.T) {
	live := Filter(journal(), TradeFilter{})
	s := Summarize(live)

	if s.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", s.TotalTrades)
	}
	if s.Pending != 1 {
		t.Errorf("Pending = %d, want 1", s.Pending)
	}
	if s.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", s.WinRate)
	}
	if s.NetPnL != 80 {
		t.Errorf("NetPnL = %v, want 80", s.NetPnL)
	}
	if s.AvgRewardRisk != 1.25 {
		t.Errorf("AvgRewardRisk = %v, want 1.25", s.AvgRewardRisk)
	}
	if s.ProfitFactor() != 130.0/50 {
		t.Errorf("ProfitFactor = %v", s.ProfitFactor())
	}
	if s.LargestLoss != -50 || s.LargestWin != 100 {
		t.Errorf("largest win/loss = %v/%v", s.LargestWin, s.LargestLoss)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
	if ByStrategy(nil) != nil || ByEmotion(nil) != nil {
		t.Error("expected nil groups for empty input")
	}
	if _, ok := BestStrategy(nil, journal()); ok {
		t.Error("expected no best strategy without strategies")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter TradeFilter
		want   []string
	}{
		{"live only by default", TradeFilter{}, []string{"1", "2", "3", "4", "5"}},
		{"all keyword", TradeFilter{Mode: All, Result: All, Strategy: All, Emotion: All}, []string{"1", "2", "3", "4", "5"}},
		{"mode", TradeFilter{Mode: "CRYPTO"}, []string{"3", "4"}},
		{"result", TradeFilter{Result: "TP HIT"}, []string{"1"}},
		{"strategy", TradeFilter{Strategy: "1"}, []string{"1", "2"}},
		{"no strategy", TradeFilter{Strategy: "0"}, []string{"5"}},
		{"emotion and mode", TradeFilter{Emotion: "calm", Mode: "forex"}, []string{"1"}},
		{"include backtest", TradeFilter{Strategy: "1", IncludeBacktest: true}, []string{"1", "2", "6"}},
		{"only backtest", TradeFilter{OnlyBacktest: true}, []string{"6"}},
		{"since", TradeFilter{Since: time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)}, []string{"3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, tr := range Filter(journal(), tt.filter) {
				ids = append(ids, tr.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Filter() ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		period string
		want   time.Time
		ok     bool
	}{
		{"", time.Time{}, true},
		{All, time.Time{}, true},
		{"7d", time.Date(2026, 10, 12, 12, 0, 0, 0, time.UTC), true},
		{"30D", time.Date(2026, 9, 19, 12, 0, 0, 0, time.UTC), true},
		{"year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"quarter", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := PeriodStart(tt.period, now)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("PeriodStart(%q) = %v, %v; want %v, %v", tt.period, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGroupBreakdowns(t *testing.T) {
	live := Filter(journal(), TradeFilter{})

	byStrategy := ByStrategy(live)
	want := []GroupStats{
		{Key: "Breakout", Count: 2, Wins: 1, PnL: 50},
		{Key: "Reversal", Count: 1, Wins: 1, PnL: 30},
	}
	if !reflect.DeepEqual(byStrategy, want) {
		t.Errorf("ByStrategy() = %+v, want %+v", byStrategy, want)
	}
	if byStrategy[0].WinRate() != 50 {
		t.Errorf("WinRate = %v, want 50", byStrategy[0].WinRate())
	}

	byEmotion := ByEmotion(live)
	if len(byEmotion) != 3 || byEmotion[0].Key != "calm" || byEmotion[0].Count != 2 || byEmotion[2].Key != UnknownKey {
		t.Errorf("ByEmotion() = %+v", byEmotion)
	}

	days := ByWeekday(live)
	if days[time.Monday].Count != 2 || days[time.Monday].Wins != 1 || days[time.Monday].PnL != 50 {
		t.Errorf("Monday = %+v", days[time.Monday])
	}
	if days[time.Wednesday].Count != 1 {
		t.Errorf("Wednesday should only count the breakeven trade, got %+v", days[time.Wednesday])
	}
	if days[time.Sunday].Key != "Sunday" {
		t.Errorf("weekday keys not set: %+v", days[0])
	}
}

func TestBestStrategy(t *testing.T) {
	strategies := []models.Strategy{{ID: 1, Name: "Breakout"}, {ID: 2, Name: "Reversal"}, {ID: 3, Name: "Idle"}}
	live := Filter(journal(), TradeFilter{})

	best, ok := BestStrategy(strategies, live)
	if !ok {
		t.Fatal("expected a best strategy")
	}
	// Breakout: 50*0.5 + 50*0.5 = 50; Reversal: 100*0.5 + 30*0.5 = 65
	if best.Strategy.Name != "Reversal" || best.Score != 65 {
		t.Errorf("best = %+v, want Reversal with 65", best)
	}
}

func TestBestStrategyPnLOutweighsWinRate(t *testing.T) {
	strategies := []models.Strategy{{ID: 1, Name: "Sniper"}, {ID: 2, Name: "Grinder"}}
	trades := []models.Trade{
		{StrategyID: 1, Result: models.ResultWin, PnL: 50},
		{StrategyID: 2, Result: models.ResultLoss, PnL: -100},
		{StrategyID: 2, Result: models.ResultWin, PnL: 1100},
	}
	best, _ := BestStrategy(strategies, trades)
	if best.Strategy.Name != "Grinder" {
		t.Errorf("best = %s, want Grinder", best.Strategy.Name)
	}
}

func TestBestStrategyTieKeepsOriginalOrder(t *testing.T) {
	strategies := []models.Strategy{{ID: 7, Name: "First"}, {ID: 8, Name: "Second"}}
	best, ok := BestStrategy(strategies, nil)
	if !ok || best.Strategy.Name != "First" {
		t.Errorf("best = %+v, want First on tie", best)
	}
}
