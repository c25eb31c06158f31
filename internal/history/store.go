package history

import (
	"context"
	"fmt"
	"math"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/backtest"
	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

// Store persists analysis recommendations and backtest runs to
// ClickHouse for later review. Entirely optional: the pipeline works
// without it, this is an append-only audit trail.
type Store struct {
	db *sqlx.DB
}

// Connect opens the ClickHouse connection and verifies it
func Connect(cfg config.HistoryConfig) (*Store, error) {
	db, err := sqlx.Connect("clickhouse", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("history store connected", zap.String("dsn", cfg.DSN))

	return &Store{db: db}, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureSchema creates the history tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recommendations (
			timestamp     DateTime,
			symbol        String,
			decision      String,
			confidence    UInt8,
			risk_level    String,
			rsi           Float64,
			volume_trend  String,
			model         String,
			reasoning     String
		) ENGINE = MergeTree()
		ORDER BY (symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS backtest_runs (
			run_at          DateTime,
			symbol          String,
			start_date      DateTime,
			end_date        DateTime,
			initial_capital Float64,
			final_capital   Float64,
			total_trades    UInt32,
			win_rate        Float64,
			total_pnl       Float64,
			max_drawdown    Float64,
			sharpe_ratio    Float64,
			profit_factor   Float64
		) ENGINE = MergeTree()
		ORDER BY (symbol, run_at)`,

		`CREATE TABLE IF NOT EXISTS backtest_trades (
			run_at      DateTime,
			symbol      String,
			entry_time  DateTime,
			exit_time   DateTime,
			entry_price Float64,
			exit_price  Float64,
			size        Float64,
			pnl         Float64,
			fees        Float64,
			exit_reason String
		) ENGINE = MergeTree()
		ORDER BY (symbol, entry_time)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create history schema: %w", err)
		}
	}
	return nil
}

// SaveRecommendation appends one analysis result
func (s *Store) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	volumeTrend := ""
	rsi := 0.0
	if rec.Indicators != nil {
		volumeTrend = string(rec.Indicators.VolumeTrend)
		rsi = rec.Indicators.RSI
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations
		(timestamp, symbol, decision, confidence, risk_level, rsi, volume_trend, model, reasoning)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Timestamp,
		rec.Symbol,
		string(rec.Decision),
		uint8(rec.Confidence),
		string(rec.RiskLevel),
		rsi,
		volumeTrend,
		rec.Model,
		rec.Reasoning,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}

	logger.Debug("recommendation saved",
		zap.String("symbol", rec.Symbol),
		zap.String("decision", string(rec.Decision)),
	)
	return nil
}

// SaveBacktest appends one backtest run with its trades
func (s *Store) SaveBacktest(ctx context.Context, result *backtest.Result) error {
	runAt := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(run_at, symbol, start_date, end_date, initial_capital, final_capital,
		 total_trades, win_rate, total_pnl, max_drawdown, sharpe_ratio, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runAt,
		result.Symbol,
		result.StartDate,
		result.EndDate,
		result.InitialCapital,
		result.FinalCapital,
		uint32(result.TotalTrades),
		result.WinRate,
		result.TotalPnL,
		result.MaxDrawdown,
		result.SharpeRatio,
		finiteOrZero(result.ProfitFactor),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert backtest run: %w", err)
	}

	if len(result.Trades) > 0 {
		stmt, err := tx.Preparex(`
			INSERT INTO backtest_trades
			(run_at, symbol, entry_time, exit_time, entry_price, exit_price, size, pnl, fees, exit_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, trade := range result.Trades {
			_, err = stmt.ExecContext(ctx,
				runAt,
				trade.Symbol,
				trade.EntryTime,
				trade.ExitTime,
				trade.EntryPrice,
				trade.ExitPrice,
				trade.Size,
				trade.PnL,
				trade.Fees,
				trade.ExitReason,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert backtest trade: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("backtest run saved",
		zap.String("symbol", result.Symbol),
		zap.Int("trades", len(result.Trades)),
	)
	return nil
}

// finiteOrZero maps the +Inf profit-factor sentinel to 0 for storage;
// the zero-loss case is recoverable from win_rate == 100.
func finiteOrZero(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// Publish satisfies the scanner's recommendation sink interface
func (s *Store) Publish(ctx context.Context, rec *models.Recommendation) error {
	return s.SaveRecommendation(ctx, rec)
}
