package risk

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"trading-journal/internal/models"
)

// DefaultRewardRisk is used when a trade's reward:risk is missing or unparseable.
const DefaultRewardRisk = 2.0

// Resolution is the derived effect of changing a trade's result.
type Resolution struct {
	Result    models.Result
	PnL       float64
	StampExit bool // true only on the first transition out of PENDING
}

// ResolveOutcome derives the realized P&L for a new result label. It is the
// default derivation only: callers may still override PnL manually.
func ResolveOutcome(t models.Trade, result models.Result) Resolution {
	risk := math.Abs(t.Risk)
	rr := EffectiveRewardRisk(t.RewardRisk)

	res := Resolution{
		Result:    result,
		StampExit: t.Result.IsPending() && !result.IsPending() && t.ExitTime == nil,
	}

	switch result {
	case models.ResultTPHit:
		res.PnL = risk * rr
	case models.ResultSLHit:
		res.PnL = -risk
	case models.ResultWin:
		if t.PnL != 0 {
			res.PnL = math.Abs(t.PnL)
		} else {
			res.PnL = risk * rr
		}
	case models.ResultLoss:
		if t.PnL != 0 {
			res.PnL = -math.Abs(t.PnL)
		} else {
			res.PnL = -risk
		}
	default:
		res.PnL = 0
	}

	return res
}

// ApplyOutcome returns a copy of t with the resolution applied. The exit
// time is stamped with now only on the first close.
func ApplyOutcome(t models.Trade, result models.Result, now time.Time) models.Trade {
	res := ResolveOutcome(t, result)
	out := t
	out.Result = res.Result
	out.PnL = res.PnL
	if res.StampExit {
		exit := now
		out.ExitTime = &exit
	}
	return out
}

// EffectiveRewardRisk substitutes DefaultRewardRisk for zero, negative or
// non-finite ratios.
func EffectiveRewardRisk(rr float64) float64 {
	if rr <= 0 || math.IsNaN(rr) || math.IsInf(rr, 0) {
		return DefaultRewardRisk
	}
	return rr
}

// ParseAmount coerces a stored numeric value to a float. Strings may carry a
// thousands separator ("1,250.00"). Unparseable values become 0.
func ParseAmount(v interface{}) float64 {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
