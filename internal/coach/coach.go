package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trading-journal/internal/analytics"
	"trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
)

// MinPatternTrades is the journal size required for pattern analysis.
const MinPatternTrades = 5

// RecentTrades is how many of the latest trades go into the context.
const RecentTrades = 10

// ReportDays is the look-back window of the weekly report.
const ReportDays = 7

const systemPrompt = "You are an AI trading coach. You review a trader's journal statistics, " +
	"point out what is working and what is leaking money, and give concrete, actionable advice. " +
	"Be direct and professional. Use Markdown for emphasis and lists."

// Snapshot is the journal data the coach reasons over.
type Snapshot struct {
	Trades     []models.Trade
	Strategies []models.Strategy
	Settings   models.Settings
}

// Coach builds trading context from the journal and queries an LLM.
type Coach struct {
	llm     LLMClient
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a coach. A nil client yields a coach whose every request fails
// with ErrCoachUnavailable.
func New(llm LLMClient, timeout time.Duration, logger zerolog.Logger) *Coach {
	return &Coach{
		llm:     llm,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Available reports whether an LLM client is configured.
func (c *Coach) Available() bool {
	return c.llm != nil
}

// Ask answers a free-form question with the journal context attached.
func (c *Coach) Ask(ctx context.Context, snap Snapshot, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.NewValidationError("question", question, "must not be empty")
	}

	prompt := BuildTradingContext(snap) + "\nUser question: " + question
	return c.complete(ctx, "ask", prompt)
}

// WeeklyReport asks for a structured review of the last seven days.
func (c *Coach) WeeklyReport(ctx context.Context, snap Snapshot) (string, error) {
	now := c.now()
	y, m, d := now.AddDate(0, 0, -ReportDays).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var weekly []models.Trade
	for _, t := range snap.Trades {
		if !t.Date.Before(from) {
			weekly = append(weekly, t)
		}
	}
	if len(weekly) == 0 {
		return "", fmt.Errorf("%w: no trades in the last %d days", errors.ErrInsufficientTrades, ReportDays)
	}

	prompt := WeeklyContext(weekly, from, now) + `
Act as a senior trading coach. Based on the weekly data above, write a structured weekly performance report.

Format (Markdown):
# Weekly Report
## Executive Summary
**Grade:** [A-E based on profitability and discipline]
[Short summary paragraph]
## Strengths
- [point]
## Mistakes
- [point]
## Focus For Next Week
[Specific, actionable advice]
`
	return c.complete(ctx, "weekly_report", prompt)
}

// Patterns asks for hidden mistake patterns across emotion, strategy and
// weekday breakdowns.
func (c *Coach) Patterns(ctx context.Context, snap Snapshot) (string, error) {
	if len(snap.Trades) < MinPatternTrades {
		return "", fmt.Errorf("%w: pattern analysis needs at least %d trades, have %d",
			errors.ErrInsufficientTrades, MinPatternTrades, len(snap.Trades))
	}

	prompt := PatternContext(snap.Trades) + `
Act as a trading psychologist. Analyse the statistics above and find the profit leaks the trader may not notice:
a high win rate with negative P&L, emotions that precede large losses, weekdays that consistently lose,
strategies that actually cost money.

Format (Markdown):
## Profit Leak Diagnosis
[One paragraph on the main problem]
## Psychology & Patterns
- **[Pattern]:** [Explanation]
## Three Concrete Fixes
1. [Step]
2. [Step]
3. [Step]
`
	return c.complete(ctx, "patterns", prompt)
}

func (c *Coach) complete(ctx context.Context, operation, prompt string) (string, error) {
	if c.llm == nil {
		return "", errors.ErrCoachUnavailable
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := c.llm.CompleteWithSystem(ctx, systemPrompt, prompt)
	logging.LogAPICall(logging.WithOperation(c.logger, operation), "POST", "chat/completions", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("coach %s: %w", operation, err)
	}
	return strings.TrimSpace(answer), nil
}

// BuildTradingContext renders the headline statistics, limits, strategies and
// the most recent trades as plain text.
func BuildTradingContext(snap Snapshot) string {
	summary := analytics.Summarize(snap.Trades)

	names := make([]string, len(snap.Strategies))
	for i, s := range snap.Strategies {
		names[i] = s.Name
	}

	var b strings.Builder
	b.WriteString("TRADER CONTEXT:\n")
	fmt.Fprintf(&b, "- Total Trades: %d\n", summary.TotalTrades)
	fmt.Fprintf(&b, "- Win Rate: %.1f%%\n", summary.WinRate)
	fmt.Fprintf(&b, "- Net P&L: $%.2f\n", summary.NetPnL)
	fmt.Fprintf(&b, "- Strategies: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "- Daily Loss Limit: $%.2f\n", snap.Settings.DailyLossLimit)
	fmt.Fprintf(&b, "- Max Trades/Day: %d\n", snap.Settings.MaxTradesPerDay)
	b.WriteString("\nRECENT TRADES (last 10):\n")
	for _, t := range newestFirst(snap.Trades, RecentTrades) {
		b.WriteString(tradeLine(t))
	}
	return b.String()
}

// WeeklyContext renders the figures for trades within [from, to].
func WeeklyContext(trades []models.Trade, from, to time.Time) string {
	summary := analytics.Summarize(trades)

	var b strings.Builder
	fmt.Fprintf(&b, "WEEKLY DATA (%s - %s):\n", from.Format("02 Jan"), to.Format("02 Jan"))
	fmt.Fprintf(&b, "- Total Trades: %d\n", len(trades))
	fmt.Fprintf(&b, "- Wins: %d\n", summary.Wins)
	fmt.Fprintf(&b, "- Losses: %d\n", summary.Losses)
	fmt.Fprintf(&b, "- Win Rate: %.1f%%\n", summary.WinRate)
	fmt.Fprintf(&b, "- Net P&L: $%.2f\n", summary.NetPnL)
	b.WriteString("\nTRADE DETAIL:\n")
	for _, t := range newestFirst(trades, 0) {
		b.WriteString(tradeLine(t))
	}
	return b.String()
}

type groupFigures struct {
	Count int     `json:"count"`
	Wins  int     `json:"wins"`
	PnL   float64 `json:"pnl"`
}

// PatternContext renders the grouped breakdowns as indented JSON blocks.
func PatternContext(trades []models.Trade) string {
	summary := analytics.Summarize(trades)

	byDay := make(map[string]groupFigures)
	for _, g := range analytics.ByWeekday(trades) {
		if g.Count > 0 {
			byDay[g.Key] = groupFigures{Count: g.Count, Wins: g.Wins, PnL: g.PnL}
		}
	}

	var b strings.Builder
	b.WriteString("TRADER STATISTICS:\n")
	fmt.Fprintf(&b, "- Total Trades: %d\n", len(trades))
	fmt.Fprintf(&b, "- Global Win Rate: %.1f%%\n", summary.WinRate)
	fmt.Fprintf(&b, "\nPERFORMANCE BY EMOTION:\n%s\n", groupJSON(analytics.ByEmotion(trades)))
	fmt.Fprintf(&b, "\nPERFORMANCE BY STRATEGY:\n%s\n", groupJSON(analytics.ByStrategy(trades)))
	fmt.Fprintf(&b, "\nPERFORMANCE BY WEEKDAY:\n%s\n", indentJSON(byDay))
	return b.String()
}

func groupJSON(groups []analytics.GroupStats) string {
	m := make(map[string]groupFigures, len(groups))
	for _, g := range groups {
		m[g.Key] = groupFigures{Count: g.Count, Wins: g.Wins, PnL: g.PnL}
	}
	return indentJSON(m)
}

func indentJSON(v interface{}) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

func newestFirst(trades []models.Trade, limit int) []models.Trade {
	sorted := analytics.SortByDate(trades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func tradeLine(t models.Trade) string {
	emotion := string(t.Emotion)
	if emotion == "" {
		emotion = "N/A"
	}
	return fmt.Sprintf("- %s: %s (%s) $%.2f [Emotion: %s]\n", t.Date.Format("2006-01-02"), t.Asset, t.Result, t.PnL, emotion)
}
