package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
)

const legacyBackup = `{
  "version": "1.0",
  "exportDate": "2024-05-07T08:00:00.000Z",
  "journalData": [
    {
      "id": 1715072400000,
      "date": "2024-05-07T09:00:00.000Z",
      "entryTime": "2024-05-07T09:00:00.000Z",
      "exitTime": null,
      "mode": "forex",
      "asset": "GBPUSD",
      "direction": "SHORT",
      "entry": 1.25,
      "sl": 1.255,
      "tp": "",
      "positionSize": "-",
      "leverage": "-",
      "risk": "50.00",
      "rrRatio": "2.00",
      "strategyId": "2",
      "strategyName": "EMA Crossover + Support/Resistance",
      "emotion": "fomo",
      "result": "SL HIT",
      "pnl": -50,
      "notes": "chased",
      "checklistComplete": false
    }
  ],
  "strategies": [
    {"id": 2, "name": "EMA Crossover + Support/Resistance", "openChecklist": ["EMA 20 cross EMA 50"], "trades": 4, "wins": 1, "totalPnL": 10}
  ]
}`

func TestParseBackupCoercesLegacyValues(t *testing.T) {
	doc, err := ParseBackup(strings.NewReader(legacyBackup))
	require.NoError(t, err)
	require.Len(t, doc.JournalData, 1)
	require.Len(t, doc.Strategies, 1)

	tr := doc.JournalData[0]
	assert.Equal(t, "1715072400000", tr.ID)
	assert.True(t, tr.Date.Equal(time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC)))
	assert.Nil(t, tr.ExitTime)
	assert.Equal(t, models.DirectionShort, tr.Direction)
	assert.Equal(t, 0.0, tr.TakeProfit)
	assert.Equal(t, 0.0, tr.PositionSize)
	assert.Equal(t, 50.0, tr.Risk)
	assert.Equal(t, 2.0, tr.RewardRisk)
	assert.Equal(t, int64(2), tr.StrategyID)
	assert.Equal(t, models.ResultSLHit, tr.Result)
	assert.Equal(t, -50.0, tr.PnL)
	assert.Equal(t, models.EmotionFOMO, tr.Emotion)
	require.NotNil(t, tr.ChecklistComplete)
	assert.False(t, *tr.ChecklistComplete)

	st := doc.Strategies[0]
	assert.Equal(t, int64(2), st.ID)
	assert.Equal(t, []string{"EMA 20 cross EMA 50"}, st.OpenChecklist)
}

func TestParseBackupRecoversDateFromID(t *testing.T) {
	body := `{"journalData":[{"id":1715072400000,"result":"WIN","pnl":"20"}],"strategies":[]}`

	doc, err := ParseBackup(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, doc.JournalData, 1)

	tr := doc.JournalData[0]
	assert.True(t, tr.Date.Equal(time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC)), tr.Date)
	assert.True(t, tr.EntryTime.Equal(tr.Date))
	assert.Nil(t, tr.ChecklistComplete)
}

func TestParseBackupRejectsMissingLists(t *testing.T) {
	for _, body := range []string{
		`{"version":"1.0","strategies":[]}`,
		`{"version":"1.0","journalData":[]}`,
		`not json`,
	} {
		_, err := ParseBackup(strings.NewReader(body))
		assert.True(t, errors.Is(err, errors.ErrImportInvalid), body)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	trade := sampleTrade(time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC))
	require.NoError(t, src.SaveTrade(ctx, &trade))

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(ctx, src, &buf))
	assert.Contains(t, buf.String(), `"version": "1.0"`)

	dst := newTestStore(t)
	extra := sampleTrade(time.Now())
	require.NoError(t, dst.SaveTrade(ctx, &extra))

	doc, err := ImportJSON(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Len(t, doc.JournalData, 1)

	trades, err := dst.ListTrades(ctx, TradeQuery{IncludeBacktest: true})
	require.NoError(t, err)
	require.Len(t, trades, 1, "import replaces existing trades")
	assert.Equal(t, trade.ID, trades[0].ID)
	assert.True(t, trades[0].Date.Equal(trade.Date))
	assert.Equal(t, trade.Risk, trades[0].Risk)
	require.NotNil(t, trades[0].ChecklistComplete)

	strategies, err := dst.ListStrategies(ctx)
	require.NoError(t, err)
	assert.Len(t, strategies, 2)
}

func TestExportRequiresData(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.DeleteStrategy(ctx, 1))
	require.NoError(t, s.DeleteStrategy(ctx, 2))

	var buf bytes.Buffer
	assert.True(t, errors.Is(ExportJSON(ctx, s, &buf), errors.ErrNothingToExport))
	assert.True(t, errors.Is(ExportCSV(ctx, s, &buf), errors.ErrNothingToExport))
}

func TestWriteCSV(t *testing.T) {
	trade := sampleTrade(time.Date(2024, 5, 6, 9, 30, 0, 0, time.Local))
	trade.TakeProfit = 0
	trade.Notes = "late, but clean"
	trade.PnL = -12.5

	var buf bytes.Buffer
	require.NoError(t, WriteCSV([]models.Trade{trade}, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Date", "Mode", "Asset", "Entry", "SL", "TP", "Position Size", "Leverage", "Risk", "RR Ratio", "Strategy", "Result", "P&L", "Notes"}, records[0])

	row := records[1]
	assert.Equal(t, "2024-05-06 09:30:00", row[0])
	assert.Equal(t, "EURUSD", row[2])
	assert.Equal(t, "", row[5])
	assert.Equal(t, "100.00", row[8])
	assert.Equal(t, "-12.50", row[12])
	assert.Equal(t, "late, but clean", row[13])
}
