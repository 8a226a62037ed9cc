// Package models provides domain models for the trading journal.
package models

import "strings"

// Mode represents the instrument class a trade was sized for.
type Mode string

const (
	ModeForex  Mode = "forex"
	ModeCrypto Mode = "crypto"
)

// ParseMode normalizes a user supplied mode. Unknown values fall back to forex.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crypto":
		return ModeCrypto
	default:
		return ModeForex
	}
}

// Direction represents the side of a position.
type Direction string

const (
	DirectionNone  Direction = ""
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Result represents the status of a journaled trade.
type Result string

const (
	ResultPending   Result = "PENDING"
	ResultWin       Result = "WIN"
	ResultLoss      Result = "LOSS"
	ResultTPHit     Result = "TP HIT"
	ResultSLHit     Result = "SL HIT"
	ResultBreakeven Result = "BREAKEVEN"
)

// Results lists every known result in display order.
var Results = []Result{ResultPending, ResultWin, ResultLoss, ResultTPHit, ResultSLHit, ResultBreakeven}

// IsWin reports whether the result counts as a winning trade.
func (r Result) IsWin() bool {
	return r == ResultWin || r == ResultTPHit
}

// IsLoss reports whether the result counts as a losing trade.
func (r Result) IsLoss() bool {
	return r == ResultLoss || r == ResultSLHit
}

// IsPending reports whether the trade is still open.
func (r Result) IsPending() bool {
	return r == ResultPending
}

// ParseResult accepts the canonical labels case-insensitively, with
// underscores or dashes in place of the space ("tp_hit", "sl-hit").
func ParseResult(s string) (Result, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	for _, r := range Results {
		if string(r) == norm {
			return r, true
		}
	}
	return "", false
}

// Emotion represents the trader's emotional state when the trade was taken.
type Emotion string

const (
	EmotionConfident  Emotion = "confident"
	EmotionCalm       Emotion = "calm"
	EmotionNeutral    Emotion = "neutral"
	EmotionExcited    Emotion = "excited"
	EmotionAnxious    Emotion = "anxious"
	EmotionFearful    Emotion = "fearful"
	EmotionFrustrated Emotion = "frustrated"
	EmotionGreedy     Emotion = "greedy"
	EmotionFOMO       Emotion = "fomo"
)

// Emotions lists the fixed emotion tags.
var Emotions = []Emotion{
	EmotionConfident, EmotionCalm, EmotionNeutral, EmotionExcited, EmotionAnxious,
	EmotionFearful, EmotionFrustrated, EmotionGreedy, EmotionFOMO,
}

// ParseEmotion maps a tag onto the enumerated set, defaulting to neutral.
func ParseEmotion(s string) Emotion {
	norm := Emotion(strings.ToLower(strings.TrimSpace(s)))
	for _, e := range Emotions {
		if e == norm {
			return e
		}
	}
	return EmotionNeutral
}

// Outcome is a simulated backtest event.
type Outcome string

const (
	OutcomeWin       Outcome = "WIN"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeBreakeven Outcome = "BREAKEVEN"
)

// ParseOutcome parses a backtest outcome label.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WIN", "W":
		return OutcomeWin, true
	case "LOSS", "L":
		return OutcomeLoss, true
	case "BREAKEVEN", "BE":
		return OutcomeBreakeven, true
	}
	return "", false
}

// Result converts the outcome to the journal result vocabulary.
func (o Outcome) Result() Result {
	switch o {
	case OutcomeWin:
		return ResultWin
	case OutcomeLoss:
		return ResultLoss
	default:
		return ResultBreakeven
	}
}
