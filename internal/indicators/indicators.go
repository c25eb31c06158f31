package indicators

import (
	"fmt"
	"math"
	"strings"

	"github.com/cinar/indicator"

	"github.com/selivandex/memescan/pkg/models"
)

const (
	rsiPeriod         = 14
	volumeTrendPeriod = 7
	smaPeriod         = 20
	macdSlowPeriod    = 26
	macdSignalPeriod  = 9

	// Volume trend threshold: mean volume change beyond ±5% between the
	// two most recent windows flips the trend off STABLE.
	volumeTrendThresholdPct = 5.0
)

// Calculator computes technical indicators from candle data. All methods
// are pure functions of their inputs; the same series always yields the
// same IndicatorSet.
type Calculator struct {
	volumePeriod int
}

// NewCalculator creates new indicator calculator
func NewCalculator() *Calculator {
	return &Calculator{volumePeriod: volumeTrendPeriod}
}

// NewCalculatorWithVolumePeriod creates a calculator with a custom volume
// trend window.
func NewCalculatorWithVolumePeriod(period int) *Calculator {
	if period < 2 {
		period = volumeTrendPeriod
	}
	return &Calculator{volumePeriod: period}
}

// Compute calculates the full indicator set for one candle series.
// Requires at least lookback+1 candles.
func (c *Calculator) Compute(candles []models.Candle, lookback int) (*models.IndicatorSet, error) {
	if lookback < rsiPeriod {
		lookback = rsiPeriod
	}
	if len(candles) < lookback+1 {
		return nil, fmt.Errorf("%w: need at least %d candles, got %d",
			models.ErrInsufficientData, lookback+1, len(candles))
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	volumes := make([]float64, len(candles))

	for i, candle := range candles {
		closes[i] = candle.Close.InexactFloat64()
		highs[i] = candle.High.InexactFloat64()
		lows[i] = candle.Low.InexactFloat64()
		volumes[i] = candle.Volume.InexactFloat64()
	}

	rsi := RSI(closes, rsiPeriod)
	volumeTrend := c.VolumeTrend(volumes)

	set := &models.IndicatorSet{
		RSI:         rsi,
		VolumeTrend: volumeTrend,
	}

	// MACD needs the slow EMA plus the signal line to settle before the
	// crossover state means anything.
	if len(closes) >= macdSlowPeriod+macdSignalPeriod {
		macdLine, signalLine := indicator.Macd(closes)
		last := len(macdLine) - 1
		set.MACD = &models.MACDIndicator{
			MACD:      macdLine[last],
			Signal:    signalLine[last],
			Histogram: macdLine[last] - signalLine[last],
		}
		set.MACDSignal = macdCrossSignal(macdLine, signalLine)
	}

	if len(closes) >= smaPeriod {
		sma := indicator.Sma(smaPeriod, closes)
		last := sma[len(sma)-1]
		set.SMA20 = &last
	}

	support, resistance := pivotLevels(highs, lows, lookback)
	set.SupportLevel = support
	set.ResistanceLevel = resistance

	set.PriceAction = priceActionSummary(closes, rsi, volumeTrend)

	return set, nil
}

// RSI calculates the relative strength index over the closing-price
// series using a rolling mean of gains and losses. When the window has no
// losing periods the result is exactly 100, never NaN.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// VolumeTrend compares the mean volume of the most recent window against
// the preceding window.
func (c *Calculator) VolumeTrend(volumes []float64) models.VolumeTrend {
	n := c.volumePeriod
	if len(volumes) < n {
		return models.VolumeStable
	}

	recent := mean(volumes[len(volumes)-n:])

	var older float64
	if len(volumes) >= 2*n {
		older = mean(volumes[len(volumes)-2*n : len(volumes)-n])
	} else {
		older = mean(volumes[:n])
	}

	if older == 0 {
		return models.VolumeStable
	}

	changePct := (recent - older) / older * 100
	switch {
	case changePct > volumeTrendThresholdPct:
		return models.VolumeIncreasing
	case changePct < -volumeTrendThresholdPct:
		return models.VolumeDecreasing
	default:
		return models.VolumeStable
	}
}

// CalculateEMA calculates Exponential Moving Average of closes
func (c *Calculator) CalculateEMA(candles []models.Candle, period int) (float64, error) {
	if len(candles) < period {
		return 0, fmt.Errorf("%w: need %d candles for EMA", models.ErrInsufficientData, period)
	}

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close.InexactFloat64()
	}

	ema := indicator.Ema(period, closes)
	return ema[len(ema)-1], nil
}

// CalculateSMA calculates Simple Moving Average of closes
func (c *Calculator) CalculateSMA(candles []models.Candle, period int) (float64, error) {
	if len(candles) < period {
		return 0, fmt.Errorf("%w: need %d candles for SMA", models.ErrInsufficientData, period)
	}

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close.InexactFloat64()
	}

	sma := indicator.Sma(period, closes)
	return sma[len(sma)-1], nil
}

// macdCrossSignal detects a crossover at the most recent candle
func macdCrossSignal(macdLine, signalLine []float64) models.MACDSignal {
	n := len(macdLine)
	if n < 2 {
		return models.MACDNeutral
	}

	curr := macdLine[n-1] - signalLine[n-1]
	prev := macdLine[n-2] - signalLine[n-2]

	switch {
	case curr > 0 && prev <= 0:
		return models.MACDBullish
	case curr < 0 && prev >= 0:
		return models.MACDBearish
	default:
		return models.MACDNeutral
	}
}

// pivotLevels finds the most recent local low and high within the lookback
// window. A pivot is a bar whose low (high) is below (above) both
// neighbors. Falls back to the window extremes when no pivot exists.
func pivotLevels(highs, lows []float64, lookback int) (support, resistance *float64) {
	n := len(lows)
	start := n - lookback
	if start < 1 {
		start = 1
	}

	for i := n - 2; i >= start; i-- {
		if support == nil && lows[i] < lows[i-1] && lows[i] < lows[i+1] {
			v := lows[i]
			support = &v
		}
		if resistance == nil && highs[i] > highs[i-1] && highs[i] > highs[i+1] {
			v := highs[i]
			resistance = &v
		}
		if support != nil && resistance != nil {
			return support, resistance
		}
	}

	if support == nil {
		v := lows[start]
		for i := start; i < n; i++ {
			if lows[i] < v {
				v = lows[i]
			}
		}
		support = &v
	}
	if resistance == nil {
		v := highs[start]
		for i := start; i < n; i++ {
			if highs[i] > v {
				v = highs[i]
			}
		}
		resistance = &v
	}

	return support, resistance
}

// priceActionSummary produces a short human-readable description of recent
// price behavior from momentum, RSI and volume context.
func priceActionSummary(closes []float64, rsi float64, volumeTrend models.VolumeTrend) string {
	if len(closes) < 2 {
		return "Insufficient data for analysis"
	}

	var recentChange float64
	if len(closes) >= 7 && closes[len(closes)-7] != 0 {
		recentChange = (closes[len(closes)-1] - closes[len(closes)-7]) / closes[len(closes)-7] * 100
	}

	var trend string
	switch {
	case recentChange > 10:
		trend = "Strong uptrend"
	case recentChange > 5:
		trend = "Moderate uptrend"
	case recentChange > 1:
		trend = "Slight uptrend"
	case recentChange > -1:
		trend = "Consolidating"
	case recentChange > -5:
		trend = "Slight downtrend"
	case recentChange > -10:
		trend = "Moderate downtrend"
	default:
		trend = "Strong downtrend"
	}

	var rsiContext string
	if rsi > 70 {
		rsiContext = ", overbought conditions"
	} else if rsi < 30 {
		rsiContext = ", oversold conditions"
	}

	volContext := fmt.Sprintf(" with %s volume", strings.ToLower(string(volumeTrend)))

	return trend + rsiContext + volContext
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Volatility calculates ATR-based price volatility over the given period
func (c *Calculator) Volatility(candles []models.Candle, period int) (float64, error) {
	if len(candles) < period+1 {
		return 0, fmt.Errorf("%w: need %d candles for ATR", models.ErrInsufficientData, period+1)
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))

	for i, candle := range candles {
		highs[i] = candle.High.InexactFloat64()
		lows[i] = candle.Low.InexactFloat64()
		closes[i] = candle.Close.InexactFloat64()
	}

	_, atr := indicator.Atr(period, highs, lows, closes)
	v := atr[len(atr)-1]
	if math.IsNaN(v) {
		return 0, fmt.Errorf("ATR returned no data")
	}
	return v, nil
}
