package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/pkg/id"
)

// SQLiteStore implements JournalStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger zerolog.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *SQLiteStore) {
		s.logger = logger
	}
}

// NewSQLiteStore opens or creates the journal database at dbPath and seeds
// the default strategies on first use.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The CLI is a single process; one writer avoids SQLITE_BUSY on WAL upgrades.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:     db,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.seedStrategies(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed strategies: %w", err)
	}

	return store, nil
}

const tradeColumnsDDL = `
		id TEXT PRIMARY KEY,
		date_ms INTEGER NOT NULL,
		entry_ms INTEGER NOT NULL,
		exit_ms INTEGER,
		mode TEXT NOT NULL,
		asset TEXT NOT NULL,
		direction TEXT NOT NULL DEFAULT '',
		entry REAL NOT NULL,
		sl REAL NOT NULL,
		tp REAL NOT NULL DEFAULT 0,
		position_size REAL NOT NULL DEFAULT 0,
		leverage REAL NOT NULL DEFAULT 0,
		risk REAL NOT NULL DEFAULT 0,
		rr_ratio REAL NOT NULL DEFAULT 0,
		result TEXT NOT NULL DEFAULT 'PENDING',
		pnl REAL NOT NULL DEFAULT 0,
		strategy_id INTEGER NOT NULL DEFAULT 0,
		strategy_name TEXT NOT NULL DEFAULT '',
		emotion TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		checklist_complete INTEGER,
		is_backtest INTEGER NOT NULL DEFAULT 0,
		style TEXT NOT NULL DEFAULT '',
		equity_after REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
`

const tradeColumns = `id, date_ms, entry_ms, exit_ms, mode, asset, direction, entry, sl, tp, position_size, leverage,
	risk, rr_ratio, result, pnl, strategy_id, strategy_name, emotion, notes, checklist_complete, is_backtest, style, equity_after`

const (
	tableTrades         = "trades"
	tableBacktestTrades = "backtest_trades"
)

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Journal trades
	CREATE TABLE IF NOT EXISTS trades (` + tradeColumnsDDL + `);

	-- Backtest session trades, kept apart from the live journal
	CREATE TABLE IF NOT EXISTS backtest_trades (` + tradeColumnsDDL + `);

	-- Strategies with their checklists as JSON arrays
	CREATE TABLE IF NOT EXISTS strategies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		open_checklist TEXT NOT NULL DEFAULT '[]',
		sltp_checklist TEXT NOT NULL DEFAULT '[]',
		indicator_checklist TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Guardrail settings (single row)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		daily_loss_limit REAL NOT NULL DEFAULT 0,
		max_trades_per_day INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Backtest session configuration (single row)
	CREATE TABLE IF NOT EXISTS backtest_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		balance REAL NOT NULL,
		risk_percent REAL NOT NULL,
		reward_risk REAL NOT NULL,
		asset TEXT NOT NULL DEFAULT '',
		strategy_id INTEGER NOT NULL DEFAULT 0,
		strategy_name TEXT NOT NULL DEFAULT '',
		style TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Key/value markers (pre-market routine date, seeding)
	CREATE TABLE IF NOT EXISTS markers (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date_ms);
	CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy_id);
	CREATE INDEX IF NOT EXISTS idx_backtest_trades_date ON backtest_trades(date_ms);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ============================================================================
// Trades Methods
// ============================================================================

// SaveTrade inserts a journal trade, assigning an id when none is set.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := insertTrade(ctx, s.db, tableTrades, trade); err != nil {
		return errors.NewStoreError("insert", "trade", err)
	}
	return nil
}

// UpdateTrade overwrites every field of an existing journal trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exit, checklist := nullableTradeFields(trade)
	result, err := s.db.ExecContext(ctx, `
		UPDATE trades SET date_ms = ?, entry_ms = ?, exit_ms = ?, mode = ?, asset = ?, direction = ?, entry = ?, sl = ?,
			tp = ?, position_size = ?, leverage = ?, risk = ?, rr_ratio = ?, result = ?, pnl = ?, strategy_id = ?,
			strategy_name = ?, emotion = ?, notes = ?, checklist_complete = ?, is_backtest = ?, style = ?, equity_after = ?
		WHERE id = ?
	`, trade.Date.UnixMilli(), trade.EntryTime.UnixMilli(), exit, trade.Mode, trade.Asset, trade.Direction, trade.Entry,
		trade.StopLoss, trade.TakeProfit, trade.PositionSize, trade.Leverage, trade.Risk, trade.RewardRisk, trade.Result,
		trade.PnL, trade.StrategyID, trade.StrategyName, trade.Emotion, trade.Notes, checklist, boolToInt(trade.IsBacktest),
		trade.Style, trade.EquityAfter, trade.ID)
	if err != nil {
		return errors.NewStoreError("update", "trade", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", errors.ErrTradeNotFound, trade.ID)
	}
	return nil
}

// GetTrade retrieves a journal trade by id.
func (s *SQLiteStore) GetTrade(ctx context.Context, tradeID string) (*models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades, err := queryTrades(ctx, s.db, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", tradeID)
	if err != nil {
		return nil, errors.NewStoreError("get", "trade", err)
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrTradeNotFound, tradeID)
	}
	return &trades[0], nil
}

// DeleteTrade removes a journal trade.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, tradeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", tradeID)
	if err != nil {
		return errors.NewStoreError("delete", "trade", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", errors.ErrTradeNotFound, tradeID)
	}
	return nil
}

// ListTrades retrieves journal trades newest first.
func (s *SQLiteStore) ListTrades(ctx context.Context, q TradeQuery) ([]models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if !q.From.IsZero() {
		query += " AND date_ms >= ?"
		args = append(args, q.From.UnixMilli())
	}
	if !q.To.IsZero() {
		query += " AND date_ms < ?"
		args = append(args, q.To.UnixMilli())
	}
	if q.Mode != "" {
		query += " AND mode = ?"
		args = append(args, q.Mode)
	}
	if q.Result != "" {
		query += " AND result = ?"
		args = append(args, q.Result)
	}
	if q.StrategyID > 0 {
		query += " AND strategy_id = ?"
		args = append(args, q.StrategyID)
	}
	if !q.IncludeBacktest {
		query += " AND is_backtest = 0"
	}

	query += " ORDER BY date_ms DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	trades, err := queryTrades(ctx, s.db, query, args...)
	if err != nil {
		return nil, errors.NewStoreError("list", "trades", err)
	}
	return trades, nil
}

func insertTrade(ctx context.Context, db execer, table string, trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = id.At(trade.Date)
	}
	if trade.EntryTime.IsZero() {
		trade.EntryTime = trade.Date
	}

	exit, checklist := nullableTradeFields(trade)
	_, err := db.ExecContext(ctx, `
		INSERT INTO `+table+` (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.Date.UnixMilli(), trade.EntryTime.UnixMilli(), exit, trade.Mode, trade.Asset, trade.Direction,
		trade.Entry, trade.StopLoss, trade.TakeProfit, trade.PositionSize, trade.Leverage, trade.Risk, trade.RewardRisk,
		trade.Result, trade.PnL, trade.StrategyID, trade.StrategyName, trade.Emotion, trade.Notes, checklist,
		boolToInt(trade.IsBacktest), trade.Style, trade.EquityAfter)
	return err
}

func nullableTradeFields(trade *models.Trade) (exit sql.NullInt64, checklist sql.NullBool) {
	if trade.ExitTime != nil {
		exit = sql.NullInt64{Int64: trade.ExitTime.UnixMilli(), Valid: true}
	}
	if trade.ChecklistComplete != nil {
		checklist = sql.NullBool{Bool: *trade.ChecklistComplete, Valid: true}
	}
	return exit, checklist
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func queryTrades(ctx context.Context, db querier, query string, args ...interface{}) ([]models.Trade, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		var dateMs, entryMs int64
		var exitMs sql.NullInt64
		var checklist sql.NullBool
		var isBacktest int

		if err := rows.Scan(&t.ID, &dateMs, &entryMs, &exitMs, &t.Mode, &t.Asset, &t.Direction, &t.Entry, &t.StopLoss,
			&t.TakeProfit, &t.PositionSize, &t.Leverage, &t.Risk, &t.RewardRisk, &t.Result, &t.PnL, &t.StrategyID,
			&t.StrategyName, &t.Emotion, &t.Notes, &checklist, &isBacktest, &t.Style, &t.EquityAfter); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		t.Date = time.UnixMilli(dateMs)
		t.EntryTime = time.UnixMilli(entryMs)
		if exitMs.Valid {
			exit := time.UnixMilli(exitMs.Int64)
			t.ExitTime = &exit
		}
		if checklist.Valid {
			t.ChecklistComplete = models.Bool(checklist.Bool)
		}
		t.IsBacktest = isBacktest == 1
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Strategy Methods
// ============================================================================

// SaveStrategy inserts a strategy when its ID is zero, otherwise replaces it.
func (s *SQLiteStore) SaveStrategy(ctx context.Context, strategy *models.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := saveStrategy(ctx, s.db, strategy); err != nil {
		return errors.NewStoreError("save", "strategy", err)
	}
	return nil
}

func saveStrategy(ctx context.Context, db execer, strategy *models.Strategy) error {
	open, _ := json.Marshal(nonNil(strategy.OpenChecklist))
	sltp, _ := json.Marshal(nonNil(strategy.SLTPChecklist))
	indicator, _ := json.Marshal(nonNil(strategy.IndicatorChecklist))

	if strategy.ID == 0 {
		result, err := db.ExecContext(ctx, `
			INSERT INTO strategies (name, description, open_checklist, sltp_checklist, indicator_checklist)
			VALUES (?, ?, ?, ?, ?)
		`, strategy.Name, strategy.Description, string(open), string(sltp), string(indicator))
		if err != nil {
			return err
		}
		strategy.ID, err = result.LastInsertId()
		return err
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO strategies (id, name, description, open_checklist, sltp_checklist, indicator_checklist)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strategy.ID, strategy.Name, strategy.Description, string(open), string(sltp), string(indicator))
	return err
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// GetStrategy retrieves a strategy by id.
func (s *SQLiteStore) GetStrategy(ctx context.Context, strategyID int64) (*models.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategies, err := s.queryStrategies(ctx, "WHERE id = ?", strategyID)
	if err != nil {
		return nil, errors.NewStoreError("get", "strategy", err)
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: %d", errors.ErrStrategyNotFound, strategyID)
	}
	return &strategies[0], nil
}

// DeleteStrategy removes a strategy. Trades keep their strategy name.
func (s *SQLiteStore) DeleteStrategy(ctx context.Context, strategyID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM strategies WHERE id = ?", strategyID)
	if err != nil {
		return errors.NewStoreError("delete", "strategy", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %d", errors.ErrStrategyNotFound, strategyID)
	}
	return nil
}

// ListStrategies returns every strategy in creation order.
func (s *SQLiteStore) ListStrategies(ctx context.Context) ([]models.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategies, err := s.queryStrategies(ctx, "")
	if err != nil {
		return nil, errors.NewStoreError("list", "strategies", err)
	}
	return strategies, nil
}

func (s *SQLiteStore) queryStrategies(ctx context.Context, where string, args ...interface{}) ([]models.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, open_checklist, sltp_checklist, indicator_checklist
		FROM strategies `+where+` ORDER BY id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var strategies []models.Strategy
	for rows.Next() {
		var st models.Strategy
		var open, sltp, indicator string
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &open, &sltp, &indicator); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		json.Unmarshal([]byte(open), &st.OpenChecklist)
		json.Unmarshal([]byte(sltp), &st.SLTPChecklist)
		json.Unmarshal([]byte(indicator), &st.IndicatorChecklist)
		strategies = append(strategies, st)
	}

	return strategies, rows.Err()
}

func (s *SQLiteStore) seedStrategies(ctx context.Context) error {
	seeded, err := s.GetMarker(ctx, markerSeeded)
	if err != nil {
		return err
	}
	if seeded != "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	defaults := DefaultStrategies()
	for i := range defaults {
		if err := saveStrategy(ctx, tx, &defaults[i]); err != nil {
			return fmt.Errorf("failed to insert strategy: %w", err)
		}
	}
	if err := setMarker(ctx, tx, markerSeeded, time.Now().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Int("count", len(defaults)).Msg("Seeded default strategies")
	return nil
}

// ============================================================================
// Settings Methods
// ============================================================================

// GetSettings returns the persisted guardrail settings, or nil when the user
// has never saved any.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st models.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT daily_loss_limit, max_trades_per_day FROM settings WHERE id = 1
	`).Scan(&st.DailyLossLimit, &st.MaxTradesPerDay)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("get", "settings", err)
	}
	return &st, nil
}

// SaveSettings persists the guardrail settings.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (id, daily_loss_limit, max_trades_per_day, updated_at)
		VALUES (1, ?, ?, ?)
	`, settings.DailyLossLimit, settings.MaxTradesPerDay, time.Now())
	if err != nil {
		return errors.NewStoreError("save", "settings", err)
	}
	return nil
}

// ============================================================================
// Backtest Methods
// ============================================================================

// SaveBacktestConfig persists the backtest session configuration.
func (s *SQLiteStore) SaveBacktestConfig(ctx context.Context, cfg models.BacktestSessionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO backtest_config (id, balance, risk_percent, reward_risk, asset, strategy_id, strategy_name, style, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cfg.Balance, cfg.RiskPercent, cfg.RewardRisk, cfg.Asset, cfg.StrategyID, cfg.StrategyName, cfg.Style, time.Now())
	if err != nil {
		return errors.NewStoreError("save", "backtest config", err)
	}
	return nil
}

// GetBacktestConfig returns the backtest session configuration, or nil when
// none has been saved.
func (s *SQLiteStore) GetBacktestConfig(ctx context.Context) (*models.BacktestSessionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cfg models.BacktestSessionConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT balance, risk_percent, reward_risk, asset, strategy_id, strategy_name, style
		FROM backtest_config WHERE id = 1
	`).Scan(&cfg.Balance, &cfg.RiskPercent, &cfg.RewardRisk, &cfg.Asset, &cfg.StrategyID, &cfg.StrategyName, &cfg.Style)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("get", "backtest config", err)
	}
	return &cfg, nil
}

// SaveBacktestTrade appends a simulated trade to the session.
func (s *SQLiteStore) SaveBacktestTrade(ctx context.Context, trade *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade.IsBacktest = true
	if err := insertTrade(ctx, s.db, tableBacktestTrades, trade); err != nil {
		return errors.NewStoreError("insert", "backtest trade", err)
	}
	return nil
}

// ListBacktestTrades returns the session's trades oldest first.
func (s *SQLiteStore) ListBacktestTrades(ctx context.Context) ([]models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades, err := queryTrades(ctx, s.db, "SELECT "+tradeColumns+" FROM backtest_trades ORDER BY date_ms ASC, id ASC")
	if err != nil {
		return nil, errors.NewStoreError("list", "backtest trades", err)
	}
	return trades, nil
}

// ClearBacktestTrades removes every simulated trade.
func (s *SQLiteStore) ClearBacktestTrades(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM backtest_trades"); err != nil {
		return errors.NewStoreError("clear", "backtest trades", err)
	}
	return nil
}

// ============================================================================
// Marker Methods
// ============================================================================

// GetMarker returns the value stored under key, or "" when unset.
func (s *SQLiteStore) GetMarker(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM markers WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewStoreError("get", "marker", err)
	}
	return value, nil
}

// SetMarker stores value under key.
func (s *SQLiteStore) SetMarker(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := setMarker(ctx, s.db, key, value); err != nil {
		return errors.NewStoreError("set", "marker", err)
	}
	return nil
}

func setMarker(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO markers (key, value, updated_at) VALUES (?, ?, ?)
	`, key, value, time.Now())
	return err
}

// ============================================================================
// Bulk Methods
// ============================================================================

// ReplaceJournal swaps the whole journal and strategy list in one transaction.
func (s *SQLiteStore) ReplaceJournal(ctx context.Context, trades []models.Trade, strategies []models.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("begin", "import", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM trades", "DELETE FROM strategies"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.NewStoreError("clear", "journal", err)
		}
	}

	for i := range strategies {
		if err := saveStrategy(ctx, tx, &strategies[i]); err != nil {
			return errors.NewStoreError("insert", "strategy", err)
		}
	}
	for i := range trades {
		if err := insertTrade(ctx, tx, tableTrades, &trades[i]); err != nil {
			return errors.NewStoreError("insert", "trade "+trades[i].ID, err)
		}
	}
	if err := setMarker(ctx, tx, markerSeeded, time.Now().Format(time.RFC3339)); err != nil {
		return errors.NewStoreError("set", "marker", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("commit", "import", err)
	}

	s.logger.Info().Int("trades", len(trades)).Int("strategies", len(strategies)).Msg("Journal replaced")
	return nil
}

// ResetAll wipes every table and reseeds the default strategies.
func (s *SQLiteStore) ResetAll(ctx context.Context) error {
	tables := []string{tableTrades, tableBacktestTrades, "strategies", "settings", "backtest_config", "markers"}

	s.mu.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.mu.Unlock()
		return errors.NewStoreError("begin", "reset", err)
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			tx.Rollback()
			s.mu.Unlock()
			return errors.NewStoreError("clear", table, err)
		}
	}
	// Restart strategy ids so the seeded defaults get 1 and 2 again.
	if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'strategies'"); err != nil && !strings.Contains(err.Error(), "no such table") {
		tx.Rollback()
		s.mu.Unlock()
		return errors.NewStoreError("clear", "sqlite_sequence", err)
	}
	if err := tx.Commit(); err != nil {
		s.mu.Unlock()
		return errors.NewStoreError("commit", "reset", err)
	}
	s.mu.Unlock()

	s.logger.Warn().Msg("All journal data reset")
	return s.seedStrategies(ctx)
}
