package backtest

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

// SymbolData pairs a symbol with its historical candles and the
// decision function to replay over them.
type SymbolData struct {
	Symbol     string
	Candles    []models.Candle
	DecisionFn DecisionFunc
}

// RunAll backtests each symbol sequentially with the same engine
// configuration. Failures are logged and skipped so one bad series does
// not sink the whole batch. Cancellation stops between symbols.
func RunAll(ctx context.Context, cfg config.BacktestConfig, batch []SymbolData) map[string]*Result {
	engine := NewEngine(cfg)
	results := make(map[string]*Result, len(batch))

	for _, item := range batch {
		if ctx.Err() != nil {
			logger.Warn("multi-symbol backtest cancelled", zap.Int("completed", len(results)))
			return results
		}

		result, err := engine.Run(ctx, item.Symbol, item.Candles, item.DecisionFn)
		if err != nil {
			logger.Error("backtest failed, skipping symbol",
				zap.String("symbol", item.Symbol),
				zap.Error(err),
			)
			continue
		}
		results[item.Symbol] = result

		logger.Info("symbol backtest done",
			zap.String("symbol", item.Symbol),
			zap.Int("trades", result.TotalTrades),
			zap.Float64("pnl", result.TotalPnL),
		)
	}

	return results
}

// StrategyVariant names one stop/profit configuration for comparison
type StrategyVariant struct {
	Name   string
	Config config.BacktestConfig
}

// VariantResult pairs a variant with its backtest outcome
type VariantResult struct {
	Name   string
	Result *Result
}

// CompareStrategies runs the same symbol and decision function under
// several engine configurations and returns results ordered by total
// PnL, best first.
func CompareStrategies(ctx context.Context, symbol string, candles []models.Candle, decisionFn DecisionFunc, variants []StrategyVariant) ([]VariantResult, error) {
	results := make([]VariantResult, 0, len(variants))

	for _, variant := range variants {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := NewEngine(variant.Config).Run(ctx, symbol, candles, decisionFn)
		if err != nil {
			return nil, err
		}
		results = append(results, VariantResult{Name: variant.Name, Result: result})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.TotalPnL > results[j].Result.TotalPnL
	})

	return results, nil
}
