package confidence

import (
	"testing"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/models"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		LLMWeight:          0.40,
		TechnicalWeight:    0.35,
		FundamentalsWeight: 0.25,
		GoodLiquidity:      500000,
		GoodVolume:         1000000,
		GoodHolders:        10000,
	}
}

func testSnapshot(liquidity, volume float64, holders int) *models.TokenSnapshot {
	return &models.TokenSnapshot{
		Symbol:    "BONK",
		Price:     models.NewDecimal(0.00002),
		Liquidity: models.NewDecimal(liquidity),
		Volume24h: models.NewDecimal(volume),
		MarketCap: models.NewDecimal(1000000),
		Holders:   holders,
	}
}

func testIndicators(rsi float64, vt models.VolumeTrend, macd models.MACDSignal) *models.IndicatorSet {
	return &models.IndicatorSet{
		RSI:         rsi,
		VolumeTrend: vt,
		MACDSignal:  macd,
		PriceAction: "Consolidating with stable volume",
	}
}

func TestScorer_Bounds(t *testing.T) {
	scorer := NewScorer(testScoringConfig())

	cases := []struct {
		llm      int
		rsi      float64
		decision models.Decision
	}{
		{0, 0, models.DecisionBuy},
		{100, 100, models.DecisionBuy},
		{100, 0, models.DecisionSell},
		{-50, 200, models.DecisionHold}, // out-of-range inputs get clamped
		{150, -10, models.DecisionNoBuy},
	}

	for _, tc := range cases {
		ind := testIndicators(tc.rsi, models.VolumeIncreasing, models.MACDBullish)
		snap := testSnapshot(1e9, 1e9, 1000000)

		score := scorer.Score(tc.llm, tc.decision, ind, snap)
		if score < 0 || score > 100 {
			t.Errorf("score out of bounds: %d (llm=%d rsi=%.0f)", score, tc.llm, tc.rsi)
		}
	}
}

func TestScorer_MonotonicInLiquidity(t *testing.T) {
	scorer := NewScorer(testScoringConfig())
	ind := testIndicators(45, models.VolumeStable, models.MACDNeutral)

	prev := -1
	for _, liquidity := range []float64{0, 1000, 10000, 50000, 200000, 500000, 5000000} {
		snap := testSnapshot(liquidity, 100000, 2000)
		score := scorer.Score(60, models.DecisionBuy, ind, snap)

		if score < prev {
			t.Errorf("score decreased with more liquidity: %d -> %d at liquidity %.0f", prev, score, liquidity)
		}
		prev = score
	}
}

func TestScorer_MonotonicInVolume(t *testing.T) {
	scorer := NewScorer(testScoringConfig())
	ind := testIndicators(45, models.VolumeStable, models.MACDNeutral)

	prev := -1
	for _, volume := range []float64{0, 1000, 50000, 250000, 1000000, 10000000} {
		snap := testSnapshot(200000, volume, 2000)
		score := scorer.Score(60, models.DecisionBuy, ind, snap)

		if score < prev {
			t.Errorf("score decreased with more volume: %d -> %d at volume %.0f", prev, score, volume)
		}
		prev = score
	}
}

func TestScorer_OversoldFavorsBuy(t *testing.T) {
	scorer := NewScorer(testScoringConfig())
	snap := testSnapshot(200000, 500000, 5000)

	oversold := scorer.Score(60, models.DecisionBuy, testIndicators(25, models.VolumeIncreasing, models.MACDBullish), snap)
	overbought := scorer.Score(60, models.DecisionBuy, testIndicators(85, models.VolumeIncreasing, models.MACDBullish), snap)

	if oversold <= overbought {
		t.Errorf("oversold BUY should score above overbought BUY: %d vs %d", oversold, overbought)
	}
}

func TestScorer_Determinism(t *testing.T) {
	scorer := NewScorer(testScoringConfig())
	ind := testIndicators(55, models.VolumeIncreasing, models.MACDBullish)
	snap := testSnapshot(300000, 800000, 7500)

	first := scorer.Score(72, models.DecisionBuy, ind, snap)
	for i := 0; i < 10; i++ {
		if got := scorer.Score(72, models.DecisionBuy, ind, snap); got != first {
			t.Fatalf("score not deterministic: %d vs %d", first, got)
		}
	}
}

func TestScorer_NilInputsNeutral(t *testing.T) {
	scorer := NewScorer(testScoringConfig())

	score := scorer.Score(50, models.DecisionHold, nil, nil)
	if score < 0 || score > 100 {
		t.Errorf("score with nil inputs out of bounds: %d", score)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{95, "VERY_HIGH"},
		{80, "VERY_HIGH"},
		{72, "HIGH"},
		{60, "MODERATE"},
		{45, "LOW"},
		{10, "VERY_LOW"},
	}

	for _, tt := range tests {
		if got := Level(tt.score); got != tt.expected {
			t.Errorf("Level(%d) = %s, want %s", tt.score, got, tt.expected)
		}
	}
}
