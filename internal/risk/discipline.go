package risk

import "trading-journal/internal/models"

// Discipline score adjustments.
const (
	MaxDisciplineScore      = 100
	DailyLossLimitPenalty   = 50
	MaxTradesPenalty        = 30
	SkippedChecklistPenalty = 5
	ProfitableDayBonus      = 5
	PreMarketRoutineBonus   = 5
)

// Infraction reasons.
const (
	ReasonDailyLossLimit   = "Daily Loss Limit Hit"
	ReasonMaxTrades        = "Max Trades Exceeded"
	ReasonSkippedChecklist = "Skipped Checklist"
	ReasonProfitableDay    = "Profitable Day"
	ReasonPreMarket        = "Pre-Market Routine"
)

// Badge is the presentation band of a discipline score.
type Badge string

const (
	BadgeElite Badge = "Elite"
	BadgeSolid Badge = "Solid"
	BadgeRisk  Badge = "Risk"
)

// Infraction is one itemized score adjustment. Points are signed.
type Infraction struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// DisciplineInput holds what the scorer needs about today.
type DisciplineInput struct {
	Trades        []models.Trade // today's trades, all statuses
	DailyPnL      float64
	Settings      models.Settings
	PreMarketDone bool
}

// DisciplineScore is the scorer's output.
type DisciplineScore struct {
	Score       int          `json:"score"`
	Infractions []Infraction `json:"infractions"`
	Bonuses     []Infraction `json:"bonuses,omitempty"`
}

// Badge classifies the score.
func (s DisciplineScore) Badge() Badge {
	return BadgeFor(s.Score)
}

// BadgeFor returns Elite for 90 and above, Solid for 70-89, Risk below 70.
func BadgeFor(score int) Badge {
	switch {
	case score >= 90:
		return BadgeElite
	case score >= 70:
		return BadgeSolid
	default:
		return BadgeRisk
	}
}

// ScoreDiscipline computes today's 0-100 discipline score.
func ScoreDiscipline(in DisciplineInput) DisciplineScore {
	out := DisciplineScore{Infractions: []Infraction{}}
	score := MaxDisciplineScore

	penalize := func(reason string, points int) {
		score -= points
		out.Infractions = append(out.Infractions, Infraction{Reason: reason, Points: -points})
	}
	reward := func(reason string, points int) {
		score += points
		out.Bonuses = append(out.Bonuses, Infraction{Reason: reason, Points: points})
	}

	if in.Settings.DailyLossLimit > 0 && in.DailyPnL <= -in.Settings.DailyLossLimit {
		penalize(ReasonDailyLossLimit, DailyLossLimitPenalty)
	}
	if in.Settings.MaxTradesPerDay > 0 && len(in.Trades) > in.Settings.MaxTradesPerDay {
		penalize(ReasonMaxTrades, MaxTradesPenalty)
	}
	for _, t := range in.Trades {
		if t.SkippedChecklist() {
			penalize(ReasonSkippedChecklist, SkippedChecklistPenalty)
		}
	}

	if in.DailyPnL > 0 {
		reward(ReasonProfitableDay, ProfitableDayBonus)
	}
	if in.PreMarketDone {
		reward(ReasonPreMarket, PreMarketRoutineBonus)
	}

	out.Score = clamp(score, 0, MaxDisciplineScore)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
