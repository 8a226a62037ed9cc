package store

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// csvRow is one line of the journal CSV export.
type csvRow struct {
	Date         string `csv:"Date"`
	Mode         string `csv:"Mode"`
	Asset        string `csv:"Asset"`
	Entry        string `csv:"Entry"`
	SL           string `csv:"SL"`
	TP           string `csv:"TP"`
	PositionSize string `csv:"Position Size"`
	Leverage     string `csv:"Leverage"`
	Risk         string `csv:"Risk"`
	RewardRisk   string `csv:"RR Ratio"`
	Strategy     string `csv:"Strategy"`
	Result       string `csv:"Result"`
	PnL          string `csv:"P&L"`
	Notes        string `csv:"Notes"`
}

// CSVTimeLayout is the layout of the Date column.
const CSVTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes trades in the export column layout. Absent targets and
// ratios are written as empty cells.
func WriteCSV(trades []models.Trade, w io.Writer) error {
	rows := make([]*csvRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &csvRow{
			Date:         t.Date.Local().Format(CSVTimeLayout),
			Mode:         string(t.Mode),
			Asset:        t.Asset,
			Entry:        formatNumber(t.Entry),
			SL:           formatNumber(t.StopLoss),
			TP:           optionalNumber(t.TakeProfit),
			PositionSize: formatNumber(t.PositionSize),
			Leverage:     optionalNumber(t.Leverage),
			Risk:         strconv.FormatFloat(t.Risk, 'f', 2, 64),
			RewardRisk:   optionalNumber(t.RewardRisk),
			Strategy:     t.StrategyName,
			Result:       string(t.Result),
			PnL:          strconv.FormatFloat(t.PnL, 'f', 2, 64),
			Notes:        t.Notes,
		})
	}
	return gocsv.Marshal(rows, w)
}

// ExportCSV writes the live journal, newest first.
func ExportCSV(ctx context.Context, s JournalStore, w io.Writer) error {
	trades, err := s.ListTrades(ctx, TradeQuery{})
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return errors.ErrNothingToExport
	}
	return WriteCSV(trades, w)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return formatNumber(v)
}

// BackupFileName returns the default backup file name for day.
func BackupFileName(day time.Time) string {
	return "trading-journal-backup-" + day.Format("2006-01-02") + ".json"
}
