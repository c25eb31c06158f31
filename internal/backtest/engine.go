package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

// DecisionFunc produces a decision from a candle window. The engine
// only ever passes candles up to and including the current simulated
// step, so implementations cannot look ahead.
type DecisionFunc func(ctx context.Context, window []models.Candle) (models.Decision, error)

// Exit reasons recorded on closed trades
const (
	ExitStopLoss   = "stop_loss"
	ExitTakeProfit = "take_profit"
	ExitSellSignal = "sell_signal"
	ExitForceClose = "backtest_end"
)

// Engine replays a decision function candle-by-candle over historical
// data, simulating long entries with stop-loss/take-profit exits, fees
// and slippage. Each Run is independent; the engine holds no state
// between runs, so distinct symbols can be backtested in parallel.
type Engine struct {
	cfg config.BacktestConfig
}

// NewEngine creates new backtest engine
func NewEngine(cfg config.BacktestConfig) *Engine {
	return &Engine{cfg: cfg}
}

// runState holds per-run simulation state
type runState struct {
	capital      float64
	position     *openPosition
	pendingEntry bool
	trades       []Trade
	equityCurve  []float64
}

type openPosition struct {
	entryTime  time.Time
	entryPrice float64
	size       float64
	stopPrice  float64
	takePrice  float64
}

// Run executes a backtest over the candle series. Candle processing is
// strictly chronological. Cancellation is checked between iterations so
// a user stop takes effect within one step.
//
// Intrabar resolution: the stop-loss (checked against the candle low)
// takes priority over the take-profit (checked against the high) when
// both would trigger within the same candle. This is a deliberate
// conservative tie-break, not an oversight.
func (e *Engine) Run(ctx context.Context, symbol string, candles []models.Candle, decisionFn DecisionFunc) (*Result, error) {
	if err := models.ValidateCandles(candles); err != nil {
		return nil, err
	}
	if len(candles) < e.cfg.MinLookback+2 {
		return nil, fmt.Errorf("%w: backtest needs at least %d candles, got %d",
			models.ErrInsufficientData, e.cfg.MinLookback+2, len(candles))
	}

	logger.Info("starting backtest",
		zap.String("symbol", symbol),
		zap.Int("candles", len(candles)),
		zap.Float64("initial_capital", e.cfg.InitialCapital),
	)

	state := &runState{
		capital:     e.cfg.InitialCapital,
		equityCurve: []float64{e.cfg.InitialCapital},
	}

	for i := e.cfg.MinLookback; i < len(candles); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest cancelled: %w", err)
		}

		candle := candles[i]

		// Entry decided on the previous candle fills at this candle's open.
		if state.pendingEntry {
			e.enter(state, symbol, candle)
		}

		if state.position != nil {
			e.checkExits(state, symbol, candle)
		}

		decision, err := decisionFn(ctx, candles[:i+1])
		if err != nil {
			return nil, fmt.Errorf("decision function failed at step %d: %w", i, err)
		}

		switch {
		case state.position == nil && !state.pendingEntry && decision == models.DecisionBuy:
			state.pendingEntry = true
		case state.position != nil && decision == models.DecisionSell:
			exitPrice := candle.Close.InexactFloat64() * (1 - e.cfg.SlippageRate)
			e.closePosition(state, symbol, exitPrice, candle.Timestamp, ExitSellSignal)
		}

		state.equityCurve = append(state.equityCurve, e.equity(state, candle.Close.InexactFloat64()))
	}

	// No unrealized P&L in the final report.
	if state.position != nil {
		last := candles[len(candles)-1]
		exitPrice := last.Close.InexactFloat64() * (1 - e.cfg.SlippageRate)
		e.closePosition(state, symbol, exitPrice, last.Timestamp, ExitForceClose)
		state.equityCurve[len(state.equityCurve)-1] = state.capital
	}

	result := e.buildResult(symbol, candles, state)

	logger.Info("backtest completed",
		zap.String("symbol", symbol),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("total_pnl", result.TotalPnL),
		zap.Float64("win_rate", result.WinRate),
	)

	return result, nil
}

func (e *Engine) enter(state *runState, symbol string, candle models.Candle) {
	state.pendingEntry = false

	size := state.capital * e.cfg.PositionFraction
	if size <= 0 {
		return
	}

	entryPrice := candle.Open.InexactFloat64() * (1 + e.cfg.SlippageRate)
	state.position = &openPosition{
		entryTime:  candle.Timestamp,
		entryPrice: entryPrice,
		size:       size,
		stopPrice:  entryPrice * (1 - e.cfg.StopLossPct),
		takePrice:  entryPrice * (1 + e.cfg.TakeProfitPct),
	}
	state.capital -= size

	logger.Debug("position opened",
		zap.String("symbol", symbol),
		zap.Float64("entry_price", entryPrice),
		zap.Float64("size", size),
	)
}

// checkExits resolves stop-loss and take-profit intrabar. Stop first.
func (e *Engine) checkExits(state *runState, symbol string, candle models.Candle) {
	pos := state.position

	if candle.Low.InexactFloat64() <= pos.stopPrice {
		e.closePosition(state, symbol, pos.stopPrice, candle.Timestamp, ExitStopLoss)
		return
	}
	if candle.High.InexactFloat64() >= pos.takePrice {
		e.closePosition(state, symbol, pos.takePrice, candle.Timestamp, ExitTakeProfit)
	}
}

func (e *Engine) closePosition(state *runState, symbol string, exitPrice float64, exitTime time.Time, reason string) {
	pos := state.position

	priceChange := (exitPrice - pos.entryPrice) / pos.entryPrice
	grossPnL := pos.size * priceChange
	fees := pos.size * e.cfg.FeeRate * 2
	pnl := grossPnL - fees

	trade := Trade{
		Symbol:     symbol,
		Direction:  "LONG",
		EntryTime:  pos.entryTime,
		ExitTime:   exitTime,
		EntryPrice: pos.entryPrice,
		ExitPrice:  exitPrice,
		Size:       pos.size,
		PnL:        pnl,
		PnLPercent: pnl / pos.size * 100,
		Fees:       fees,
		ExitReason: reason,
	}

	state.capital += pos.size + pnl
	state.trades = append(state.trades, trade)
	state.position = nil

	logger.Debug("position closed",
		zap.String("symbol", symbol),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("pnl", pnl),
		zap.String("reason", reason),
	)
}

func (e *Engine) equity(state *runState, closePrice float64) float64 {
	equity := state.capital
	if state.position != nil {
		equity += state.position.size * (closePrice / state.position.entryPrice)
	}
	return equity
}

func (e *Engine) buildResult(symbol string, candles []models.Candle, state *runState) *Result {
	result := &Result{
		Symbol:         symbol,
		StartDate:      candles[e.cfg.MinLookback].Timestamp,
		EndDate:        candles[len(candles)-1].Timestamp,
		InitialCapital: e.cfg.InitialCapital,
		FinalCapital:   state.equityCurve[len(state.equityCurve)-1],
		Trades:         state.trades,
		EquityCurve:    state.equityCurve,
	}

	result.TotalTrades = len(state.trades)
	if result.TotalTrades == 0 {
		// Convention: zero trades means winRate 0 and profitFactor 0,
		// not NaN.
		return result
	}

	grossProfit := 0.0
	grossLoss := 0.0
	for _, t := range state.trades {
		result.TotalPnL += t.PnL
		if t.PnL > 0 {
			result.WinningTrades++
			grossProfit += t.PnL
		} else if t.PnL < 0 {
			result.LosingTrades++
			grossLoss += -t.PnL
		}
		if t.PnL > result.LargestWinner {
			result.LargestWinner = t.PnL
		}
		if t.PnL < result.LargestLoser {
			result.LargestLoser = t.PnL
		}
	}

	result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	result.TotalPnLPercent = result.TotalPnL / e.cfg.InitialCapital * 100
	result.AvgTradePnL = result.TotalPnL / float64(result.TotalTrades)

	if result.WinningTrades > 0 {
		result.AvgWin = grossProfit / float64(result.WinningTrades)
	}
	if result.LosingTrades > 0 {
		result.AvgLoss = -grossLoss / float64(result.LosingTrades)
	}

	if grossLoss > 0 {
		result.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		result.ProfitFactor = math.Inf(1)
	}

	result.MaxDrawdown, result.MaxDrawdownPercent = maxDrawdown(state.equityCurve)
	result.SharpeRatio = e.sharpeRatio(state.equityCurve)

	return result
}

// maxDrawdown returns the largest peak-to-trough decline in the equity
// curve, absolute and as a percentage of the peak.
func maxDrawdown(equityCurve []float64) (float64, float64) {
	peak := equityCurve[0]
	maxDD := 0.0
	maxDDPct := 0.0

	for _, equity := range equityCurve {
		if equity > peak {
			peak = equity
		}
		dd := peak - equity
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}
	return maxDD, maxDDPct
}

// sharpeRatio computes mean period return over its standard deviation,
// annualized by sqrt(PeriodsPerYear). The annualization factor is
// configuration, defaulting to hourly candles.
func (e *Engine) sharpeRatio(equityCurve []float64) float64 {
	if len(equityCurve) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		if equityCurve[i-1] != 0 {
			returns = append(returns, (equityCurve[i]-equityCurve[i-1])/equityCurve[i-1])
		}
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(float64(e.cfg.PeriodsPerYear))
}
