package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/ai"
	"github.com/selivandex/memescan/internal/analyzer"
	"github.com/selivandex/memescan/internal/backtest"
	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/internal/history"
	"github.com/selivandex/memescan/internal/marketdata"
	"github.com/selivandex/memescan/pkg/logger"
)

func main() {
	var (
		symbol   = flag.String("symbol", "", "Token address to backtest (required)")
		interval = flag.String("interval", "1h", "Candle interval")
		limit    = flag.Int("limit", 500, "Number of historical candles")
		useAI    = flag.Bool("ai", false, "Replay the full AI pipeline instead of the rule strategy")
	)
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "Usage: backtest -symbol <address> [-interval 1h] [-limit 500] [-ai]")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *symbol, *interval, *limit, *useAI); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, symbol, interval string, limit int, useAI bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	market := marketdata.NewBirdeyeProvider(cfg.Market)

	snap, err := market.Snapshot(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to fetch token snapshot: %w", err)
	}

	candles, err := market.OHLCV(ctx, symbol, interval, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch candles: %w", err)
	}

	logger.Info("historical data loaded",
		zap.String("symbol", symbol),
		zap.Int("candles", len(candles)),
	)

	var decisionFn backtest.DecisionFunc
	if useAI {
		decisionFn = analyzer.New(cfg).DecisionFunc(snap)
	} else {
		decisionFn = analyzer.NewWithProviders(cfg, []ai.Provider{ai.NewRuleProvider()}).DecisionFunc(snap)
	}

	result, err := backtest.NewEngine(cfg.Backtest).Run(ctx, symbol, candles, decisionFn)
	if err != nil {
		return err
	}

	result.Print()

	if cfg.History.Enabled {
		store, err := history.Connect(cfg.History)
		if err != nil {
			logger.Warn("history store unavailable, result not persisted", zap.Error(err))
			return nil
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare history schema: %w", err)
		}
		if err := store.SaveBacktest(ctx, result); err != nil {
			logger.Warn("failed to persist backtest result", zap.Error(err))
		}
	}

	return nil
}
