package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/risk"
	"trading-journal/pkg/id"
)

// BackupVersion is the version written into every backup document.
const BackupVersion = "1.0"

// Backup is the JSON export document.
type Backup struct {
	Version     string            `json:"version"`
	ExportDate  time.Time         `json:"exportDate"`
	JournalData []models.Trade    `json:"journalData"`
	Strategies  []models.Strategy `json:"strategies"`
}

// ExportJSON writes the live journal and strategies as an indented backup.
func ExportJSON(ctx context.Context, s JournalStore, w io.Writer) error {
	trades, err := s.ListTrades(ctx, TradeQuery{IncludeBacktest: true})
	if err != nil {
		return err
	}
	strategies, err := s.ListStrategies(ctx)
	if err != nil {
		return err
	}
	if len(trades) == 0 && len(strategies) == 0 {
		return errors.ErrNothingToExport
	}

	doc := Backup{
		Version:     BackupVersion,
		ExportDate:  time.Now().UTC(),
		JournalData: nonNilTrades(trades),
		Strategies:  strategies,
	}
	if doc.Strategies == nil {
		doc.Strategies = []models.Strategy{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func nonNilTrades(trades []models.Trade) []models.Trade {
	if trades == nil {
		return []models.Trade{}
	}
	return trades
}

// ParseBackup decodes a backup document. Both lists must be present; values
// written by older versions (numeric ids, "50.00" risk strings, "-" for an
// absent size) are coerced.
func ParseBackup(r io.Reader) (*Backup, error) {
	var raw struct {
		Version     string                   `json:"version"`
		ExportDate  interface{}              `json:"exportDate"`
		JournalData []map[string]interface{} `json:"journalData"`
		Strategies  []map[string]interface{} `json:"strategies"`
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrImportInvalid, err)
	}
	if raw.JournalData == nil || raw.Strategies == nil {
		return nil, fmt.Errorf("%w: journalData and strategies are required", errors.ErrImportInvalid)
	}

	doc := &Backup{
		Version:     raw.Version,
		JournalData: make([]models.Trade, 0, len(raw.JournalData)),
		Strategies:  make([]models.Strategy, 0, len(raw.Strategies)),
	}
	doc.ExportDate, _ = cast.ToTimeE(raw.ExportDate)

	for _, m := range raw.JournalData {
		doc.JournalData = append(doc.JournalData, decodeTrade(m))
	}
	for _, m := range raw.Strategies {
		doc.Strategies = append(doc.Strategies, decodeStrategy(m))
	}
	return doc, nil
}

// ImportJSON replaces the journal and strategies with the backup's contents.
func ImportJSON(ctx context.Context, s JournalStore, r io.Reader) (*Backup, error) {
	doc, err := ParseBackup(r)
	if err != nil {
		return nil, err
	}
	if err := s.ReplaceJournal(ctx, doc.JournalData, doc.Strategies); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeTrade(m map[string]interface{}) models.Trade {
	t := models.Trade{
		ID:           idString(m["id"]),
		Mode:         models.ParseMode(cast.ToString(m["mode"])),
		Asset:        cast.ToString(m["asset"]),
		Direction:    models.Direction(strings.ToUpper(cast.ToString(m["direction"]))),
		Entry:        amount(m["entry"]),
		StopLoss:     amount(m["sl"]),
		TakeProfit:   amount(m["tp"]),
		PositionSize: amount(m["positionSize"]),
		Leverage:     amount(m["leverage"]),
		Risk:         amount(m["risk"]),
		RewardRisk:   amount(m["rrRatio"]),
		PnL:          amount(m["pnl"]),
		StrategyID:   cast.ToInt64(numberish(m["strategyId"])),
		StrategyName: cast.ToString(m["strategyName"]),
		Emotion:      models.ParseEmotion(cast.ToString(m["emotion"])),
		Notes:        cast.ToString(m["notes"]),
		IsBacktest:   cast.ToBool(m["isBacktest"]),
		Style:        cast.ToString(m["style"]),
		EquityAfter:  amount(m["equityAfter"]),
	}

	if r, ok := models.ParseResult(cast.ToString(m["result"])); ok {
		t.Result = r
	} else {
		t.Result = models.ResultPending
	}

	t.Date = parseTime(m["date"])
	if t.Date.IsZero() {
		// Ids carry their creation time.
		if at, ok := id.Time(t.ID); ok {
			t.Date = at
		}
	}
	t.EntryTime = parseTime(m["entryTime"])
	if t.EntryTime.IsZero() {
		t.EntryTime = t.Date
	}
	if exit := parseTime(m["exitTime"]); !exit.IsZero() {
		t.ExitTime = &exit
	}
	if v, ok := m["checklistComplete"]; ok && v != nil {
		if b, err := cast.ToBoolE(v); err == nil {
			t.ChecklistComplete = models.Bool(b)
		}
	}
	return t
}

func decodeStrategy(m map[string]interface{}) models.Strategy {
	return models.Strategy{
		ID:                 cast.ToInt64(numberish(m["id"])),
		Name:               cast.ToString(m["name"]),
		Description:        cast.ToString(m["description"]),
		OpenChecklist:      cast.ToStringSlice(m["openChecklist"]),
		SLTPChecklist:      cast.ToStringSlice(m["slTpChecklist"]),
		IndicatorChecklist: cast.ToStringSlice(m["indicatorChecklist"]),
	}
}

func amount(v interface{}) float64 {
	return risk.ParseAmount(numberish(v))
}

// numberish unwraps json.Number so cast sees a plain string.
func numberish(v interface{}) interface{} {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return v
}

func idString(v interface{}) string {
	return strings.TrimSpace(cast.ToString(numberish(v)))
}

func parseTime(v interface{}) time.Time {
	if v == nil {
		return time.Time{}
	}
	if n, ok := v.(json.Number); ok {
		if ms, err := n.Int64(); err == nil {
			return time.UnixMilli(ms)
		}
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}
	}
	return t
}
