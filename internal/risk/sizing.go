// Package risk implements position sizing, outcome resolution, daily
// guardrails and discipline scoring. Every function is pure.
package risk

import (
	"math"
	"strings"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// Fallback constants. Changing them changes P&L for historical records.
const (
	// DefaultPipValue is the USD value of one pip on a standard lot when the
	// quote currency is USD or the pair is not otherwise recognised.
	DefaultPipValue = 10.0
	// JPYLotPipValue is the JPY value of one pip on a standard USD/JPY lot.
	JPYLotPipValue = 1000.0
	// JPYPipMultiplier converts a JPY-quoted price difference to pips.
	JPYPipMultiplier = 100.0
	// StandardPipMultiplier converts a price difference to pips.
	StandardPipMultiplier = 10000.0
	// DefaultLeverage applies when no usable leverage was given.
	DefaultLeverage = 1.0
)

// SizingInput holds the raw calculator fields.
type SizingInput struct {
	Balance     float64
	RiskPercent float64
	Mode        models.Mode
	Symbol      string
	Entry       float64
	StopLoss    float64
	TakeProfit  float64
	Leverage    float64 // crypto only
}

// SizingResult is the output of the position sizing calculator.
type SizingResult struct {
	Mode        models.Mode      `json:"mode"`
	Asset       string           `json:"asset"`
	Direction   models.Direction `json:"direction"`
	Balance     float64          `json:"balance"`
	RiskPercent float64          `json:"riskPercent"`
	MaxRisk     float64          `json:"maxRisk"`
	Entry       float64          `json:"entry"`
	StopLoss    float64          `json:"sl"`
	TakeProfit  float64          `json:"tp"`
	RewardRisk  float64          `json:"rrRatio"`

	// Forex
	Pips     float64 `json:"pips,omitempty"`
	PipValue float64 `json:"pipValue,omitempty"`
	LotSize  float64 `json:"lotSize,omitempty"`

	// Crypto
	Leverage               float64 `json:"leverage,omitempty"`
	Quantity               float64 `json:"quantity,omitempty"`
	Exposure               float64 `json:"exposure,omitempty"`
	MarginNeeded           float64 `json:"marginNeeded,omitempty"`
	SuggestedMarginPercent float64 `json:"suggestedMarginPercent,omitempty"`

	InvalidPriceLevels bool `json:"invalidPriceLevels,omitempty"`
	NonPositiveBalance bool `json:"nonPositiveBalance,omitempty"`
}

// PositionSize returns the lot size for forex and the quantity for crypto.
func (r SizingResult) PositionSize() float64 {
	if r.Mode == models.ModeCrypto {
		return r.Quantity
	}
	return r.LotSize
}

// Warnings returns the advisory conditions raised by the calculation.
func (r SizingResult) Warnings() []error {
	var warnings []error
	if r.NonPositiveBalance {
		warnings = append(warnings, errors.ErrNonPositiveBalance)
	}
	if r.InvalidPriceLevels {
		warnings = append(warnings, errors.ErrInvalidPriceLevels)
	}
	return warnings
}

// Err returns ErrInvalidPriceLevels when the result must not be journaled.
// A non-positive balance is advisory only and does not produce an error.
func (r SizingResult) Err() error {
	if r.InvalidPriceLevels {
		return errors.ErrInvalidPriceLevels
	}
	return nil
}

// Calculate computes position size, monetary risk and reward:risk.
func Calculate(in SizingInput) SizingResult {
	res := SizingResult{
		Mode:        in.Mode,
		Asset:       in.Symbol,
		Balance:     in.Balance,
		RiskPercent: in.RiskPercent,
		MaxRisk:     in.Balance * in.RiskPercent / 100,
		Entry:       in.Entry,
		StopLoss:    in.StopLoss,
		TakeProfit:  in.TakeProfit,
	}
	if res.Mode == "" {
		res.Mode = models.ModeForex
	}

	res.NonPositiveBalance = in.Balance <= 0
	res.Direction = InferDirection(in.Entry, in.StopLoss)
	res.InvalidPriceLevels = res.Direction == models.DirectionNone
	res.RewardRisk = RewardRisk(in.Entry, in.StopLoss, in.TakeProfit)

	distance := math.Abs(in.Entry - in.StopLoss)

	switch res.Mode {
	case models.ModeCrypto:
		res.Leverage = in.Leverage
		if res.Leverage < DefaultLeverage {
			res.Leverage = DefaultLeverage
		}
		res.Quantity = safeDiv(res.MaxRisk, distance)
		res.Exposure = res.Quantity * in.Entry
		res.MarginNeeded = res.Exposure / res.Leverage
		if in.Balance > 0 {
			res.SuggestedMarginPercent = math.Min(res.MarginNeeded/in.Balance*100, 100)
		}
	default:
		res.Pips = distance * PipMultiplier(in.Symbol)
		res.PipValue = PipValue(in.Symbol, in.Entry)
		res.LotSize = safeDiv(res.MaxRisk, res.Pips*res.PipValue)
	}

	return res
}

// InferDirection returns LONG when the stop is below entry, SHORT when it is
// above, and DirectionNone when they are equal.
func InferDirection(entry, sl float64) models.Direction {
	switch {
	case sl < entry:
		return models.DirectionLong
	case sl > entry:
		return models.DirectionShort
	default:
		return models.DirectionNone
	}
}

// RewardRisk returns |tp-entry| / |entry-sl|, or 0 without a target.
func RewardRisk(entry, sl, tp float64) float64 {
	if tp <= 0 {
		return 0
	}
	return safeDiv(math.Abs(tp-entry), math.Abs(entry-sl))
}

// PipMultiplier returns 100 for JPY pairs and 10000 otherwise.
func PipMultiplier(symbol string) float64 {
	if strings.Contains(normalizePair(symbol), "JPY") {
		return JPYPipMultiplier
	}
	return StandardPipMultiplier
}

// PipValue returns the USD value of one pip on a standard lot. A zero entry
// is replaced by 1 in the rate conversions, which under-computes on purpose.
func PipValue(symbol string, entry float64) float64 {
	pair := normalizePair(symbol)
	rate := entry
	if rate == 0 {
		rate = 1
	}

	switch {
	case strings.HasSuffix(pair, "USD"):
		return DefaultPipValue
	case strings.HasPrefix(pair, "USD") && strings.Contains(pair, "JPY"):
		return JPYLotPipValue / rate
	case strings.HasPrefix(pair, "USD"):
		return DefaultPipValue / rate
	default:
		return DefaultPipValue
	}
}

func normalizePair(symbol string) string {
	return strings.NewReplacer("/", "", "_", "", "-", "", " ", "").Replace(strings.ToUpper(symbol))
}

// safeDiv returns 0 instead of Inf or NaN.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
