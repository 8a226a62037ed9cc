// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trading-journal/internal/models"
)

// JournalStore defines the interface for journal persistence.
type JournalStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	DeleteTrade(ctx context.Context, id string) error
	ListTrades(ctx context.Context, query TradeQuery) ([]models.Trade, error)

	// Strategies
	SaveStrategy(ctx context.Context, strategy *models.Strategy) error
	GetStrategy(ctx context.Context, id int64) (*models.Strategy, error)
	DeleteStrategy(ctx context.Context, id int64) error
	ListStrategies(ctx context.Context) ([]models.Strategy, error)

	// Settings
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Backtest session
	SaveBacktestConfig(ctx context.Context, cfg models.BacktestSessionConfig) error
	GetBacktestConfig(ctx context.Context) (*models.BacktestSessionConfig, error)
	SaveBacktestTrade(ctx context.Context, trade *models.Trade) error
	ListBacktestTrades(ctx context.Context) ([]models.Trade, error)
	ClearBacktestTrades(ctx context.Context) error

	// Markers
	GetMarker(ctx context.Context, key string) (string, error)
	SetMarker(ctx context.Context, key, value string) error

	// Bulk
	ReplaceJournal(ctx context.Context, trades []models.Trade, strategies []models.Strategy) error
	ResetAll(ctx context.Context) error

	// Lifecycle
	Close() error
}

// Marker keys.
const (
	MarkerPreMarket = "premarket_date"
	markerSeeded    = "strategies_seeded"
)

// PreMarketLayout is the date layout of the pre-market marker.
const PreMarketLayout = "2006-01-02"

// TradeQuery represents filters for querying journal trades.
type TradeQuery struct {
	From            time.Time
	To              time.Time
	Mode            models.Mode
	Result          models.Result
	StrategyID      int64
	IncludeBacktest bool
	Limit           int
}

// DefaultStrategies returns the strategies seeded into a fresh journal.
func DefaultStrategies() []models.Strategy {
	return []models.Strategy{
		{
			Name:        "Stochastic Divergence",
			Description: "Stochastic divergence confirmed by a candlestick pattern",
			OpenChecklist: []string{
				"Stochastic in overbought/oversold zone",
				"Clear divergence (at least 2 swings)",
				"Confirming candlestick pattern (engulfing/pinbar)",
				"Rising volume",
				"Clear support/resistance level",
			},
			SLTPChecklist: []string{
				"SL beyond the last swing high/low",
				"TP at least 1:2 risk:reward",
				"TP at the next resistance/support level",
			},
			IndicatorChecklist: []string{
				"EMA 20 & 50 alignment",
				"RSI confirmation (oversold/overbought)",
				"MACD histogram turning",
			},
		},
		{
			Name:        "EMA Crossover + Support/Resistance",
			Description: "EMA 20/50 crossover confirmed at an S/R level",
			OpenChecklist: []string{
				"EMA 20 crosses EMA 50",
				"Price at a support/resistance level",
				"Rejection candle at the S/R level",
				"Volume confirmation",
			},
			SLTPChecklist: []string{
				"SL 10-20 pips from the S/R level",
				"TP at the next S/R level",
				"Trailing stop after 1:1 RR",
			},
			IndicatorChecklist: []string{
				"Bollinger Bands not too wide",
				"ADX > 25 (trending)",
				"Stochastic confirms direction",
			},
		},
	}
}
