package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

// MarketSource supplies the scan loop with market data
type MarketSource interface {
	Snapshot(ctx context.Context, symbol string) (*models.TokenSnapshot, error)
	OHLCV(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// RecommendationSink receives finished recommendations. Both the
// Telegram notifier and the ClickHouse history store satisfy it via
// thin adapters; sink failures never abort a scan.
type RecommendationSink interface {
	Publish(ctx context.Context, rec *models.Recommendation) error
}

// Scanner runs the analysis pipeline across a list of symbols
// sequentially, spacing requests to respect provider rate limits.
type Scanner struct {
	analyzer *Analyzer
	market   MarketSource
	sinks    []RecommendationSink
	cfg      config.ScanConfig
}

// NewScanner creates new batch scanner
func NewScanner(a *Analyzer, market MarketSource, cfg config.ScanConfig, sinks ...RecommendationSink) *Scanner {
	return &Scanner{
		analyzer: a,
		market:   market,
		sinks:    sinks,
		cfg:      cfg,
	}
}

// Scan analyzes every configured symbol in order. Per-symbol failures
// are logged and skipped; cancellation stops between symbols. Returns
// the recommendations produced so far.
func (s *Scanner) Scan(ctx context.Context) []*models.Recommendation {
	recs := make([]*models.Recommendation, 0, len(s.cfg.Symbols))

	for i, symbol := range s.cfg.Symbols {
		if i > 0 {
			if !sleepCtx(ctx, s.cfg.InterRequestDelay) {
				logger.Warn("scan cancelled", zap.Int("completed", len(recs)))
				return recs
			}
		}
		if ctx.Err() != nil {
			logger.Warn("scan cancelled", zap.Int("completed", len(recs)))
			return recs
		}

		rec, err := s.scanOne(ctx, symbol)
		if err != nil {
			logger.Error("symbol scan failed, skipping",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}
		recs = append(recs, rec)
	}

	logger.Info("scan complete",
		zap.Int("symbols", len(s.cfg.Symbols)),
		zap.Int("recommendations", len(recs)),
	)
	return recs
}

func (s *Scanner) scanOne(ctx context.Context, symbol string) (*models.Recommendation, error) {
	snap, err := s.market.Snapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	candles, err := s.market.OHLCV(ctx, symbol, s.cfg.Interval, s.cfg.CandleLimit)
	if err != nil {
		return nil, err
	}

	rec, err := s.analyzer.Analyze(ctx, snap, candles)
	if err != nil {
		return nil, err
	}

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, rec); err != nil {
			logger.Warn("recommendation sink failed",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
		}
	}

	return rec, nil
}

// sleepCtx waits for d or until the context is cancelled. Reports
// whether the full delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
