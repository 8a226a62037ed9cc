package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"trading-journal/internal/models"
)

// All disables a filter field.
const All = "all"

// UnknownKey groups trades without an emotion tag.
const UnknownKey = "unknown"

// TradeFilter selects trades for aggregation. Each field is independent and
// AND-combined; an empty value or All means no filter.
type TradeFilter struct {
	Mode     string
	Result   string
	Strategy string // strategy id
	Emotion  string
	Asset    string
	Style    string
	// Since drops trades dated before it. Zero admits every date.
	Since time.Time

	// IncludeBacktest admits backtest-flagged trades alongside live ones.
	IncludeBacktest bool
	// OnlyBacktest restricts the selection to backtest-flagged trades.
	OnlyBacktest bool
}

func matches(want, got string) bool {
	return want == "" || want == All || strings.EqualFold(want, got)
}

// Date ranges accepted by PeriodStart, besides All.
const (
	PeriodWeek  = "7d"
	PeriodMonth = "30d"
	PeriodYear  = "year"
)

// PeriodStart returns the earliest date a period admits, counted back from
// now. A year runs from January 1. All and "" return the zero time. ok is
// false for an unknown period.
func PeriodStart(period string, now time.Time) (start time.Time, ok bool) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", All:
		return time.Time{}, true
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), true
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

// Match reports whether t passes the filter.
func (f TradeFilter) Match(t models.Trade) bool {
	switch {
	case f.OnlyBacktest && !t.IsBacktest:
		return false
	case !f.OnlyBacktest && !f.IncludeBacktest && t.IsBacktest:
		return false
	case !f.Since.IsZero() && t.Date.Before(f.Since):
		return false
	}

	return matches(f.Mode, string(t.Mode)) &&
		matches(f.Result, string(t.Result)) &&
		matches(f.Strategy, strconv.FormatInt(t.StrategyID, 10)) &&
		matches(f.Emotion, string(t.Emotion)) &&
		matches(f.Asset, t.Asset) &&
		matches(f.Style, t.Style)
}

// Filter returns the trades passing f, in input order.
func Filter(trades []models.Trade, f TradeFilter) []models.Trade {
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Summary is the headline aggregate over a trade collection.
type Summary struct {
	TotalTrades   int     `json:"totalTrades"` // non-pending only
	Pending       int     `json:"pending"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"winRate"`
	NetPnL        float64 `json:"netPnl"` // includes pending trades
	GrossProfit   float64 `json:"grossProfit"`
	GrossLoss     float64 `json:"grossLoss"`
	AvgRewardRisk float64 `json:"avgRewardRisk"`
	LargestWin    float64 `json:"largestWin"`
	LargestLoss   float64 `json:"largestLoss"`
}

// Summarize reduces trades to a Summary. The caller decides inclusion; no
// trades are filtered out here beyond the pending rule for counts.
func Summarize(trades []models.Trade) Summary {
	var s Summary
	var rrSum float64

	for _, t := range trades {
		s.NetPnL += t.PnL
		if t.Result.IsPending() {
			s.Pending++
			continue
		}

		s.TotalTrades++
		rrSum += t.RewardRisk
		switch {
		case t.Result.IsWin():
			s.Wins++
		case t.Result.IsLoss():
			s.Losses++
		}

		if t.PnL > 0 {
			s.GrossProfit += t.PnL
			if t.PnL > s.LargestWin {
				s.LargestWin = t.PnL
			}
		} else if t.PnL < 0 {
			s.GrossLoss += t.PnL
			if t.PnL < s.LargestLoss {
				s.LargestLoss = t.PnL
			}
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = WinRate(s.Wins, s.TotalTrades)
		s.AvgRewardRisk = rrSum / float64(s.TotalTrades)
	}
	return s
}

// WinRate returns wins / total * 100, or 0 when total is 0.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// ProfitFactor returns gross profit over gross loss magnitude.
func (s Summary) ProfitFactor() float64 {
	if s.GrossLoss == 0 {
		return 0
	}
	return s.GrossProfit / -s.GrossLoss
}

// Expectancy returns the average P&L per completed trade.
func (s Summary) Expectancy() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return s.NetPnL / float64(s.TotalTrades)
}

// GroupStats is the breakdown for one group key.
type GroupStats struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Wins  int     `json:"wins"`
	PnL   float64 `json:"pnl"`
}

// WinRate returns the group's win percentage.
func (g GroupStats) WinRate() float64 {
	return WinRate(g.Wins, g.Count)
}

// groupBy tallies completed trades per key. An empty key leaves the trade out.
func groupBy(trades []models.Trade, key func(models.Trade) string) []GroupStats {
	index := make(map[string]int)
	var groups []GroupStats
	for _, t := range trades {
		if t.Result.IsPending() {
			continue
		}
		k := key(t)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupStats{Key: k})
		}
		groups[i].Count++
		groups[i].PnL += t.PnL
		if t.Result.IsWin() {
			groups[i].Wins++
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// ByStrategy groups completed trades by strategy name. Trades saved without
// a strategy are not grouped.
func ByStrategy(trades []models.Trade) []GroupStats {
	return groupBy(trades, func(t models.Trade) string { return t.StrategyName })
}

// ByEmotion groups completed trades by emotion tag.
func ByEmotion(trades []models.Trade) []GroupStats {
	return groupBy(trades, func(t models.Trade) string {
		if t.Emotion == "" {
			return UnknownKey
		}
		return string(t.Emotion)
	})
}

// ByWeekday groups completed trades by weekday, indexed 0=Sunday..6=Saturday.
func ByWeekday(trades []models.Trade) [7]GroupStats {
	var days [7]GroupStats
	for d := range days {
		days[d].Key = time.Weekday(d).String()
	}
	for _, t := range trades {
		if t.Result.IsPending() {
			continue
		}
		d := t.Date.Weekday()
		days[d].Count++
		days[d].PnL += t.PnL
		if t.Result.IsWin() {
			days[d].Wins++
		}
	}
	return days
}

// StrategyPerformance holds the derived figures for one strategy.
type StrategyPerformance struct {
	Strategy models.Strategy `json:"strategy"`
	Trades   int             `json:"trades"`
	Wins     int             `json:"wins"`
	WinRate  float64         `json:"winRate"`
	TotalPnL float64         `json:"totalPnl"`
	Score    float64         `json:"score"`
}

// Strategy ranking weights. The score adds a percentage to a currency
// amount; this mixing is the established ranking and is kept as-is.
const (
	WinRateWeight = 0.5
	PnLWeight     = 0.5
)

// PerformanceByStrategy derives per-strategy figures from completed trades,
// in the given strategy order.
func PerformanceByStrategy(strategies []models.Strategy, trades []models.Trade) []StrategyPerformance {
	out := make([]StrategyPerformance, len(strategies))
	for i, s := range strategies {
		p := StrategyPerformance{Strategy: s}
		for _, t := range trades {
			if t.StrategyID != s.ID || t.Result.IsPending() {
				continue
			}
			p.Trades++
			p.TotalPnL += t.PnL
			if t.Result.IsWin() {
				p.Wins++
			}
		}
		p.WinRate = WinRate(p.Wins, p.Trades)
		p.Score = p.WinRate*WinRateWeight + p.TotalPnL*PnLWeight
		out[i] = p
	}
	return out
}

// BestStrategy returns the highest scoring strategy. Ties go to the strategy
// listed first. ok is false when there are no strategies.
func BestStrategy(strategies []models.Strategy, trades []models.Trade) (best StrategyPerformance, ok bool) {
	ranked := PerformanceByStrategy(strategies, trades)
	if len(ranked) == 0 {
		return StrategyPerformance{}, false
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked[0], true
}
