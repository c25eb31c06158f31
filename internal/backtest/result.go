package backtest

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Trade represents a single closed simulated trade
type Trade struct {
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Size       float64   `json:"size"`
	PnL        float64   `json:"pnl"`
	PnLPercent float64   `json:"pnl_percent"`
	Fees       float64   `json:"fees"`
	ExitReason string    `json:"exit_reason"`
}

// Result represents complete backtest results for one symbol.
// Immutable after computation.
type Result struct {
	Symbol             string    `json:"symbol"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	InitialCapital     float64   `json:"initial_capital"`
	FinalCapital       float64   `json:"final_capital"`
	TotalTrades        int       `json:"total_trades"`
	WinningTrades      int       `json:"winning_trades"`
	LosingTrades       int       `json:"losing_trades"`
	WinRate            float64   `json:"win_rate_percent"`
	TotalPnL           float64   `json:"total_pnl"`
	TotalPnLPercent    float64   `json:"total_pnl_percent"`
	MaxDrawdown        float64   `json:"max_drawdown"`
	MaxDrawdownPercent float64   `json:"max_drawdown_percent"`
	SharpeRatio        float64   `json:"sharpe_ratio"`
	AvgTradePnL        float64   `json:"avg_trade_pnl"`
	AvgWin             float64   `json:"avg_winning_trade"`
	AvgLoss            float64   `json:"avg_losing_trade"`
	LargestWinner      float64   `json:"largest_winner"`
	LargestLoser       float64   `json:"largest_loser"`
	ProfitFactor       float64   `json:"profit_factor"`
	Trades             []Trade   `json:"trades"`
	EquityCurve        []float64 `json:"equity_curve"`
}

// Print prints backtest results to stdout
func (r *Result) Print() {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("BACKTEST RESULTS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\nSymbol: %s\n", r.Symbol)
	fmt.Printf("Period: %s to %s\n",
		r.StartDate.Format("2006-01-02 15:04"),
		r.EndDate.Format("2006-01-02 15:04"),
	)

	fmt.Println("\nPERFORMANCE:")
	fmt.Printf("  Initial Capital: $%.2f\n", r.InitialCapital)
	fmt.Printf("  Final Capital:   $%.2f\n", r.FinalCapital)
	fmt.Printf("  Total PnL:       $%.2f (%.2f%%)\n", r.TotalPnL, r.TotalPnLPercent)
	fmt.Printf("  Max Drawdown:    $%.2f (%.2f%%)\n", r.MaxDrawdown, r.MaxDrawdownPercent)
	fmt.Printf("  Sharpe Ratio:    %.2f\n", r.SharpeRatio)

	fmt.Println("\nTRADING STATS:")
	fmt.Printf("  Total Trades:    %d\n", r.TotalTrades)
	fmt.Printf("  Winning Trades:  %d (%.1f%%)\n", r.WinningTrades, r.WinRate)
	fmt.Printf("  Losing Trades:   %d\n", r.LosingTrades)
	fmt.Printf("  Average Win:     $%.2f\n", r.AvgWin)
	fmt.Printf("  Average Loss:    $%.2f\n", r.AvgLoss)
	fmt.Printf("  Largest Winner:  $%.2f\n", r.LargestWinner)
	fmt.Printf("  Largest Loser:   $%.2f\n", r.LargestLoser)
	if math.IsInf(r.ProfitFactor, 1) {
		fmt.Println("  Profit Factor:   inf (no losing trades)")
	} else {
		fmt.Printf("  Profit Factor:   %.2f\n", r.ProfitFactor)
	}

	fmt.Println(strings.Repeat("=", 60))
}
