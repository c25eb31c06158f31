package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/alerts"
	"github.com/selivandex/memescan/internal/analyzer"
	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/internal/history"
	"github.com/selivandex/memescan/internal/marketdata"
	"github.com/selivandex/memescan/pkg/logger"
)

func main() {
	var (
		symbols = flag.String("symbols", "", "Comma-separated token addresses (overrides SCAN_SYMBOLS)")
		asJSON  = flag.Bool("json", false, "Print recommendations as JSON")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *symbols, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, symbolsFlag string, asJSON bool) error {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if symbolsFlag != "" {
		cfg.Scan.Symbols = strings.Split(symbolsFlag, ",")
	}

	logger.Info("memescan starting",
		zap.Strings("symbols", cfg.Scan.Symbols),
		zap.String("interval", cfg.Scan.Interval),
	)

	market := marketdata.NewBirdeyeProvider(cfg.Market)

	var sinks []analyzer.RecommendationSink

	if cfg.Alerts.Enabled {
		notifier, err := alerts.NewNotifier(cfg.Alerts)
		if err != nil {
			return fmt.Errorf("failed to initialize alerts: %w", err)
		}
		sinks = append(sinks, notifier)
	}

	if cfg.History.Enabled {
		store, err := history.Connect(cfg.History)
		if err != nil {
			logger.Warn("history store unavailable, continuing without it", zap.Error(err))
		} else {
			defer store.Close()
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to prepare history schema: %w", err)
			}
			sinks = append(sinks, store)
		}
	}

	scanner := analyzer.NewScanner(analyzer.New(cfg), market, cfg.Scan, sinks...)

	recs := scanner.Scan(ctx)
	if len(recs) == 0 {
		return fmt.Errorf("scan produced no recommendations")
	}

	printRecommendations(recs, asJSON)
	return nil
}
