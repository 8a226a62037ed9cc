// Package analytics derives equity, drawdown, streak and aggregate
// statistics from a trade collection. Inputs are never mutated.
package analytics

import (
	"sort"
	"time"

	"trading-journal/internal/models"
)

// SortByDate returns a copy of trades ordered by ascending date. Trades with
// equal dates keep their ID order so the fold is deterministic.
func SortByDate(trades []models.Trade) []models.Trade {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Completed returns the non-pending trades.
func Completed(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if !t.Result.IsPending() {
			out = append(out, t)
		}
	}
	return out
}

// EquityPoint is one step of the cumulative P&L walk.
type EquityPoint struct {
	TradeID    string    `json:"tradeId"`
	Date       time.Time `json:"date"`
	PnL        float64   `json:"pnl"`
	Cumulative float64   `json:"cumulative"`
	Peak       float64   `json:"peak"`
	Drawdown   float64   `json:"drawdown"` // cumulative - peak, always <= 0
}

// DrawdownMagnitude returns peak - cumulative, always >= 0.
func (p EquityPoint) DrawdownMagnitude() float64 {
	return -p.Drawdown
}

// EquityCurve walks the completed trades in date order, tracking the running
// total and its peak. The peak starts at zero.
func EquityCurve(trades []models.Trade) []EquityPoint {
	sorted := SortByDate(Completed(trades))
	curve := make([]EquityPoint, 0, len(sorted))

	var cumulative, peak float64
	for _, t := range sorted {
		cumulative += t.PnL
		if cumulative > peak {
			peak = cumulative
		}
		curve = append(curve, EquityPoint{
			TradeID:    t.ID,
			Date:       t.Date,
			PnL:        t.PnL,
			Cumulative: cumulative,
			Peak:       peak,
			Drawdown:   cumulative - peak,
		})
	}
	return curve
}

// MaxDrawdown returns the largest peak-to-trough decline, as a magnitude.
func MaxDrawdown(trades []models.Trade) float64 {
	var worst float64
	for _, p := range EquityCurve(trades) {
		if dd := p.DrawdownMagnitude(); dd > worst {
			worst = dd
		}
	}
	return worst
}

// DrawdownPoint is one value of the signed drawdown series.
type DrawdownPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DrawdownSeries returns the signed drawdown after each completed trade.
func DrawdownSeries(trades []models.Trade) []DrawdownPoint {
	curve := EquityCurve(trades)
	series := make([]DrawdownPoint, len(curve))
	for i, p := range curve {
		series[i] = DrawdownPoint{Date: p.Date, Value: p.Drawdown}
	}
	return series
}
