package risk

import (
	"testing"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/models"
)

func testRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		LiquidityFloor:      10000,
		LiquidityCaution:    50000,
		VolumeToMcapCaution: 0.02,
		VolumeToMcapFloor:   0.005,
		RSIOverbought:       70,
		RSIExtreme:          80,
		HolderFloor:         500,
		PumpThreshold7d:     100,
		BaseSlippagePct:     0.3,
		MaxPositionUSD:      1000,
		MinPositionUSD:      50,
		DefaultPosition:     100,
	}
}

func snapshot(liquidity, volume, marketCap float64, holders int, change7d float64) *models.TokenSnapshot {
	return &models.TokenSnapshot{
		Symbol:        "WIF",
		Price:         models.NewDecimal(1.5),
		Liquidity:     models.NewDecimal(liquidity),
		Volume24h:     models.NewDecimal(volume),
		MarketCap:     models.NewDecimal(marketCap),
		Holders:       holders,
		PriceChange7d: change7d,
	}
}

func indicators(rsi float64, vt models.VolumeTrend) *models.IndicatorSet {
	return &models.IndicatorSet{RSI: rsi, VolumeTrend: vt}
}

func hasFactor(assessment *models.RiskAssessment, name string) bool {
	for _, f := range assessment.Factors {
		if f.Name == name {
			return true
		}
	}
	return false
}

func TestAssessor_LowLiquidityNeverLow(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())

	// Boundary regression: liquidity below $10k must never classify LOW,
	// whatever the other inputs look like.
	for _, liquidity := range []float64{0, 100, 5000, 9999} {
		snap := snapshot(liquidity, 5000000, 10000000, 100000, 0)
		ind := indicators(50, models.VolumeStable)

		assessment := assessor.Classify(snap, ind, 100)
		if assessment.RiskLevel == models.RiskLow {
			t.Errorf("liquidity $%.0f classified LOW", liquidity)
		}
	}
}

func TestAssessor_ScenarioLowLiquidityOverbought(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())

	// $5k liquidity, $1k volume, RSI 85: HIGH with low-liquidity and
	// overbought among the factors.
	snap := snapshot(5000, 1000, 100000, 2000, 0)
	ind := indicators(85, models.VolumeStable)

	assessment := assessor.Classify(snap, ind, 100)

	if assessment.RiskLevel != models.RiskHigh {
		t.Errorf("expected HIGH, got %s", assessment.RiskLevel)
	}
	if !hasFactor(assessment, FactorLowLiquidity) {
		t.Error("expected LOW_LIQUIDITY factor")
	}
	if !hasFactor(assessment, FactorOverbought) {
		t.Error("expected OVERBOUGHT factor")
	}
}

func TestAssessor_CleanTokenIsLow(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())

	snap := snapshot(2000000, 1000000, 10000000, 50000, 10)
	ind := indicators(55, models.VolumeIncreasing)

	assessment := assessor.Classify(snap, ind, 100)

	if assessment.RiskLevel != models.RiskLow {
		t.Errorf("expected LOW, got %s (factors: %v)", assessment.RiskLevel, assessment.Factors)
	}
	if len(assessment.Factors) != 0 {
		t.Errorf("expected no factors, got %v", assessment.Factors)
	}
}

func TestAssessor_SeverityEscalation(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())

	tests := []struct {
		name     string
		rsi      float64
		expected models.RiskLevel
	}{
		{"neutral RSI", 50, models.RiskLow},
		{"overbought", 72, models.RiskMedium},
		{"extreme overbought", 85, models.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot(2000000, 1000000, 10000000, 50000, 10)
			assessment := assessor.Classify(snap, indicators(tt.rsi, models.VolumeIncreasing), 100)
			if assessment.RiskLevel != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, assessment.RiskLevel)
			}
		})
	}
}

func TestAssessor_RecentPump(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())

	snap := snapshot(2000000, 1000000, 10000000, 50000, 150)
	assessment := assessor.Classify(snap, indicators(50, models.VolumeStable), 100)

	if assessment.RiskLevel != models.RiskHigh {
		t.Errorf("expected HIGH after 150%% 7d pump, got %s", assessment.RiskLevel)
	}
	if !hasFactor(assessment, FactorRecentPump) {
		t.Error("expected RECENT_PUMP factor")
	}
}

func TestAssessor_PositionSizeScalesRisk(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())
	snap := snapshot(100000, 1000000, 10000000, 50000, 10)
	ind := indicators(50, models.VolumeStable)

	small := assessor.Classify(snap, ind, 100)  // 0.1% of liquidity
	large := assessor.Classify(snap, ind, 2500) // 2.5% of liquidity

	if hasFactor(small, FactorPositionSize) {
		t.Error("small position should not trigger size factor")
	}
	if !hasFactor(large, FactorPositionSize) {
		t.Error("large position should trigger size factor")
	}
	if large.RiskLevel != models.RiskHigh {
		t.Errorf("oversized position should be HIGH, got %s", large.RiskLevel)
	}
	if large.EstimatedSlippage <= small.EstimatedSlippage {
		t.Error("slippage estimate should grow with position size")
	}
}

func TestAssessor_MaxPositionInverseToRisk(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())
	snap := snapshot(100000, 1000000, 10000000, 50000, 10)

	low := assessor.Classify(snap, indicators(50, models.VolumeStable), 100)
	high := assessor.Classify(snap, indicators(85, models.VolumeStable), 100)

	if high.MaxPositionSize >= low.MaxPositionSize {
		t.Errorf("HIGH risk max position (%.0f) should be below LOW risk (%.0f)",
			high.MaxPositionSize, low.MaxPositionSize)
	}
}

func TestAssessor_NilInputs(t *testing.T) {
	assessor := NewAssessor(testRiskConfig())

	assessment := assessor.Classify(nil, nil, 0)
	if assessment == nil {
		t.Fatal("assessment should never be nil")
	}
	// No data means no liquidity, which is the worst case.
	if assessment.RiskLevel != models.RiskHigh {
		t.Errorf("missing data should classify HIGH, got %s", assessment.RiskLevel)
	}
}
