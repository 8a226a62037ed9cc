// Package backtest simulates a compounding-equity session over a sequence of
// hypothetical WIN/LOSS/BREAKEVEN outcomes.
package backtest

import (
	"time"

	"trading-journal/internal/analytics"
	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// Summary is the session-level view, recomputed over the filtered subset.
type Summary struct {
	StartingBalance float64 `json:"startingBalance"`
	Equity          float64 `json:"equity"`
	GrowthPercent   float64 `json:"growthPercent"`
	NetPnL          float64 `json:"netPnl"`
	WinRate         float64 `json:"winRate"`
	MaxWinStreak    int     `json:"maxWinStreak"`
	MaxLoseStreak   int     `json:"maxLoseStreak"`
	TotalTrades     int     `json:"totalTrades"`
}

// scope restricts f to backtest-flagged trades.
func scope(history []models.Trade, f analytics.TradeFilter) []models.Trade {
	f.OnlyBacktest = true
	f.IncludeBacktest = false
	return analytics.SortByDate(analytics.Filter(history, f))
}

// Equity returns the starting balance plus the P&L of every filtered-in
// backtest trade.
func Equity(cfg models.BacktestSessionConfig, history []models.Trade, f analytics.TradeFilter) float64 {
	equity := cfg.Balance
	for _, t := range scope(history, f) {
		equity += t.PnL
	}
	return equity
}

// Record simulates one outcome against the current filtered equity and
// returns the resulting trade. The ID is left for the caller to assign.
// No strategy in cfg yields ErrNoStrategySelected and no record.
func Record(cfg models.BacktestSessionConfig, history []models.Trade, f analytics.TradeFilter, outcome models.Outcome, at time.Time) (models.Trade, error) {
	if cfg.StrategyID == 0 {
		return models.Trade{}, errors.ErrNoStrategySelected
	}

	equity := Equity(cfg, history, f)
	risk := equity * cfg.RiskPercent / 100

	var pnl float64
	switch outcome {
	case models.OutcomeWin:
		pnl = risk * cfg.RewardRisk
	case models.OutcomeLoss:
		pnl = -risk
	}

	return models.Trade{
		Date:         at,
		EntryTime:    at,
		Asset:        cfg.Asset,
		Risk:         risk,
		RewardRisk:   cfg.RewardRisk,
		Result:       outcome.Result(),
		PnL:          pnl,
		StrategyID:   cfg.StrategyID,
		StrategyName: cfg.StrategyName,
		Emotion:      models.EmotionNeutral,
		IsBacktest:   true,
		Style:        cfg.Style,
		EquityAfter:  equity + pnl,
	}, nil
}

// Replay folds outcomes through Record one at a time, spacing the records by
// step from start. It is the batch form of an incremental session.
func Replay(cfg models.BacktestSessionConfig, outcomes []models.Outcome, start time.Time, step time.Duration) ([]models.Trade, error) {
	history := make([]models.Trade, 0, len(outcomes))
	for i, o := range outcomes {
		t, err := Record(cfg, history, analytics.TradeFilter{}, o, start.Add(time.Duration(i)*step))
		if err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	return history, nil
}

// Summarize computes the session outputs over the filtered backtest subset.
func Summarize(cfg models.BacktestSessionConfig, history []models.Trade, f analytics.TradeFilter) Summary {
	trades := scope(history, f)
	agg := analytics.Summarize(trades)
	streaks := analytics.Streaks(trades)

	s := Summary{
		StartingBalance: cfg.Balance,
		Equity:          cfg.Balance + agg.NetPnL,
		NetPnL:          agg.NetPnL,
		WinRate:         agg.WinRate,
		MaxWinStreak:    streaks.MaxWinStreak,
		MaxLoseStreak:   streaks.MaxLoseStreak,
		TotalTrades:     len(trades),
	}
	if cfg.Balance != 0 {
		s.GrowthPercent = (s.Equity - cfg.Balance) / cfg.Balance * 100
	}
	return s
}
