package indicators

import (
	"errors"
	"testing"
	"time"

	"github.com/selivandex/memescan/pkg/models"
)

// generateTestCandles builds a candle series starting at startPrice with a
// fixed per-candle drift (positive = uptrend, negative = downtrend).
func generateTestCandles(count int, startPrice, drift float64) []models.Candle {
	candles := make([]models.Candle, count)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	price := startPrice

	for i := 0; i < count; i++ {
		open := price
		price = price * (1 + drift)
		high := open
		if price > high {
			high = price
		}
		low := open
		if price < low {
			low = price
		}

		candles[i] = models.Candle{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      models.NewDecimal(open),
			High:      models.NewDecimal(high * 1.001),
			Low:       models.NewDecimal(low * 0.999),
			Close:     models.NewDecimal(price),
			Volume:    models.NewDecimal(1000 + float64(i)*50),
		}
	}

	return candles
}

func TestCalculator_Compute(t *testing.T) {
	calc := NewCalculator()

	candles := generateTestCandles(60, 0.0001, 0.01)

	set, err := calc.Compute(candles, 30)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if set.RSI < 0 || set.RSI > 100 {
		t.Errorf("RSI should be between 0-100, got %.2f", set.RSI)
	}

	// Steady uptrend: all closing deltas are gains
	if set.RSI != 100 {
		t.Errorf("RSI of pure uptrend should be 100, got %.2f", set.RSI)
	}

	if set.VolumeTrend != models.VolumeIncreasing {
		t.Errorf("Expected INCREASING volume trend, got %s", set.VolumeTrend)
	}

	if set.MACD == nil {
		t.Error("MACD should be calculated for 60 candles")
	}

	if set.SupportLevel == nil || set.ResistanceLevel == nil {
		t.Error("Support and resistance should be set")
	}

	if set.SMA20 == nil {
		t.Fatal("SMA20 should be set for 60 candles")
	}
	if *set.SMA20 <= 0 {
		t.Errorf("SMA20 should be positive, got %f", *set.SMA20)
	}

	if set.PriceAction == "" {
		t.Error("Price action summary should not be empty")
	}
}

func TestCalculator_InsufficientData(t *testing.T) {
	calc := NewCalculator()

	candles := generateTestCandles(10, 1.0, 0.01)

	_, err := calc.Compute(candles, 30)
	if err == nil {
		t.Fatal("Should error with insufficient data")
	}
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestRSI_FlatSeries(t *testing.T) {
	// All closes identical: no gains, no losses. Must return exactly 100
	// without dividing by zero.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 5.0
	}

	rsi := RSI(closes, 14)
	if rsi != 100 {
		t.Errorf("RSI of flat series should be exactly 100, got %.4f", rsi)
	}
}

func TestRSI_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		drift float64
	}{
		{"uptrend", 0.02},
		{"downtrend", -0.02},
		{"flat", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := generateTestCandles(40, 100, tt.drift)
			closes := make([]float64, len(candles))
			for i, c := range candles {
				closes[i] = c.Close.InexactFloat64()
			}

			rsi := RSI(closes, 14)
			if rsi < 0 || rsi > 100 {
				t.Errorf("RSI out of bounds: %.4f", rsi)
			}
		})
	}
}

func TestRSI_PureDowntrend(t *testing.T) {
	candles := generateTestCandles(40, 100, -0.02)
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close.InexactFloat64()
	}

	rsi := RSI(closes, 14)
	if rsi != 0 {
		t.Errorf("RSI of pure downtrend should be 0, got %.4f", rsi)
	}
}

func TestCalculator_VolumeTrend(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name     string
		volumes  []float64
		expected models.VolumeTrend
	}{
		{
			name:     "increasing",
			volumes:  []float64{100, 100, 100, 100, 100, 100, 100, 200, 200, 200, 200, 200, 200, 200},
			expected: models.VolumeIncreasing,
		},
		{
			name:     "decreasing",
			volumes:  []float64{200, 200, 200, 200, 200, 200, 200, 100, 100, 100, 100, 100, 100, 100},
			expected: models.VolumeDecreasing,
		},
		{
			name:     "stable",
			volumes:  []float64{100, 100, 100, 100, 100, 100, 100, 102, 102, 102, 102, 102, 102, 102},
			expected: models.VolumeStable,
		},
		{
			name:     "too short",
			volumes:  []float64{100, 200},
			expected: models.VolumeStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.VolumeTrend(tt.volumes)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCalculator_Determinism(t *testing.T) {
	calc := NewCalculator()
	candles := generateTestCandles(80, 0.5, 0.005)

	first, err := calc.Compute(candles, 30)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := calc.Compute(candles, 30)
		if err != nil {
			t.Fatalf("Compute failed on repeat: %v", err)
		}
		if again.RSI != first.RSI || again.VolumeTrend != first.VolumeTrend ||
			again.PriceAction != first.PriceAction || again.MACDSignal != first.MACDSignal {
			t.Fatal("Compute is not deterministic for identical input")
		}
	}
}

func TestPivotLevels(t *testing.T) {
	highs := []float64{10, 11, 12, 11, 10, 11, 13, 12, 11}
	lows := []float64{9, 10, 11, 10, 8, 9, 11, 10, 9}

	support, resistance := pivotLevels(highs, lows, len(lows))
	if support == nil || resistance == nil {
		t.Fatal("Expected pivot levels to be found")
	}

	if *support != 8 {
		t.Errorf("Expected support at local low 8, got %.2f", *support)
	}
	if *resistance != 13 {
		t.Errorf("Expected resistance at local high 13, got %.2f", *resistance)
	}
}
