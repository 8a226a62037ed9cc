package risk

import (
	"math"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// WarningThresholdPercent is the share of the daily loss limit at which a
// warning is raised.
const WarningThresholdPercent = 80.0

// Guardrail rule names.
const (
	RuleDailyLoss = "daily_loss"
	RuleMaxTrades = "max_trades"
)

// LossCheck is the daily loss limit decision.
type LossCheck struct {
	Allowed    bool    `json:"allowed"`
	Warning    bool    `json:"warning"`
	Loss       float64 `json:"loss"`
	Limit      float64 `json:"limit"`
	Percentage float64 `json:"percentage"`
}

// TradeCountCheck is the max trades per day decision.
type TradeCountCheck struct {
	Allowed bool `json:"allowed"`
	Warning bool `json:"warning"`
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
}

// GuardrailDecision combines both daily checks. Both must pass before a
// new trade is journaled.
type GuardrailDecision struct {
	Loss   LossCheck       `json:"loss"`
	Trades TradeCountCheck `json:"trades"`
}

// Allowed reports whether a new trade may be journaled.
func (d GuardrailDecision) Allowed() bool {
	return d.Loss.Allowed && d.Trades.Allowed
}

// Err returns a GuardrailError for the blocking check. The loss limit takes
// precedence when both block.
func (d GuardrailDecision) Err() error {
	if !d.Loss.Allowed {
		return d.Loss.Err()
	}
	return d.Trades.Err()
}

// Err returns a GuardrailError when the loss limit blocks trading.
func (c LossCheck) Err() error {
	if c.Allowed {
		return nil
	}
	return errors.NewGuardrailError(RuleDailyLoss, c.Loss, c.Limit, "daily loss limit reached")
}

// Err returns a GuardrailError when the trade count blocks trading.
func (c TradeCountCheck) Err() error {
	if c.Allowed {
		return nil
	}
	return errors.NewGuardrailError(RuleMaxTrades, float64(c.Count), float64(c.Limit), "max trades per day reached")
}

// CheckDailyLoss evaluates today's realized loss against the daily limit.
// Pending trades are ignored.
func CheckDailyLoss(today []models.Trade, settings models.Settings) LossCheck {
	loss := math.Abs(math.Min(0, DailyPnL(today)))
	if settings.DailyLossLimit <= 0 {
		return LossCheck{Allowed: true, Loss: loss}
	}

	pct := loss / settings.DailyLossLimit * 100
	return LossCheck{
		Allowed:    pct < 100,
		Warning:    pct >= WarningThresholdPercent && pct < 100,
		Loss:       loss,
		Limit:      settings.DailyLossLimit,
		Percentage: pct,
	}
}

// CheckTradeCount evaluates today's trade count, pending trades included,
// against the daily cap. It warns exactly one trade before the cap.
func CheckTradeCount(today []models.Trade, settings models.Settings) TradeCountCheck {
	count := len(today)
	if settings.MaxTradesPerDay <= 0 {
		return TradeCountCheck{Allowed: true, Count: count}
	}

	limit := settings.MaxTradesPerDay
	return TradeCountCheck{
		Allowed: count < limit,
		Warning: count >= limit-1 && count < limit,
		Count:   count,
		Limit:   limit,
	}
}

// EvaluateGuardrails runs both daily checks.
func EvaluateGuardrails(today []models.Trade, settings models.Settings) GuardrailDecision {
	return GuardrailDecision{
		Loss:   CheckDailyLoss(today, settings),
		Trades: CheckTradeCount(today, settings),
	}
}

// DailyPnL sums the P&L of the non-pending trades.
func DailyPnL(trades []models.Trade) float64 {
	var sum float64
	for _, t := range trades {
		if t.Result.IsPending() {
			continue
		}
		sum += t.PnL
	}
	return sum
}
