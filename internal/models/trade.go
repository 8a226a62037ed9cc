package models

import "time"

// Trade represents one journal entry.
type Trade struct {
	ID        string     `json:"id"`
	Date      time.Time  `json:"date"`
	EntryTime time.Time  `json:"entryTime"`
	ExitTime  *time.Time `json:"exitTime,omitempty"`

	Mode      Mode      `json:"mode"`
	Asset     string    `json:"asset"`
	Direction Direction `json:"direction"`

	Entry        float64 `json:"entry"`
	StopLoss     float64 `json:"sl"`
	TakeProfit   float64 `json:"tp"` // 0 means no target
	PositionSize float64 `json:"positionSize"`
	Leverage     float64 `json:"leverage,omitempty"` // crypto only

	Risk       float64 `json:"risk"`
	RewardRisk float64 `json:"rrRatio"`

	Result Result  `json:"result"`
	PnL    float64 `json:"pnl"`

	StrategyID        int64   `json:"strategyId,omitempty"` // 0 means no strategy
	StrategyName      string  `json:"strategyName,omitempty"`
	Emotion           Emotion `json:"emotion"`
	Notes             string  `json:"notes,omitempty"`
	ChecklistComplete *bool   `json:"checklistComplete,omitempty"` // nil only on records that predate the field

	IsBacktest  bool    `json:"isBacktest,omitempty"`
	Style       string  `json:"style,omitempty"`
	EquityAfter float64 `json:"equityAfter,omitempty"`
}

// SkippedChecklist reports whether the checklist was left incomplete. Legacy
// records without the flag are exempt.
func (t Trade) SkippedChecklist() bool {
	return t.ChecklistComplete != nil && !*t.ChecklistComplete
}

// Bool returns a pointer to b, for optional flags.
func Bool(b bool) *bool {
	return &b
}

// Strategy represents a named trading method. Performance figures are never
// stored on it; they are derived from the trade collection on demand.
type Strategy struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	OpenChecklist      []string `json:"openChecklist,omitempty"`
	SLTPChecklist      []string `json:"slTpChecklist,omitempty"`
	IndicatorChecklist []string `json:"indicatorChecklist,omitempty"`
}

// Checklist returns every checklist item of the strategy in display order.
func (s Strategy) Checklist() []string {
	items := make([]string, 0, len(s.OpenChecklist)+len(s.SLTPChecklist)+len(s.IndicatorChecklist))
	items = append(items, s.OpenChecklist...)
	items = append(items, s.SLTPChecklist...)
	items = append(items, s.IndicatorChecklist...)
	return items
}

// Settings holds the daily guardrail limits. Zero disables a limit.
type Settings struct {
	DailyLossLimit  float64 `json:"dailyLossLimit" validate:"gte=0"`
	MaxTradesPerDay int     `json:"maxTradesPerDay" validate:"gte=0"`
}

// BacktestSessionConfig governs the backtest simulator.
type BacktestSessionConfig struct {
	Balance      float64 `json:"balance" validate:"gte=0"`
	RiskPercent  float64 `json:"riskPercent" validate:"gte=0,lte=100"`
	RewardRisk   float64 `json:"rewardRisk" validate:"gte=0"`
	Asset        string  `json:"asset"`
	StrategyID   int64   `json:"strategyId"`
	StrategyName string  `json:"strategyName,omitempty"`
	Style        string  `json:"style"`
}
