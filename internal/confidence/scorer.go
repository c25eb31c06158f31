package confidence

import (
	"math"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/models"
)

// Scorer blends LLM-reported confidence with technical and fundamental
// signals into a single 0-100 score. The blend weights come from config
// and must sum to 1.0 (validated at load time).
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates new confidence scorer
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Breakdown exposes the component scores for transparency and debugging
type Breakdown struct {
	LLMScore         float64 `json:"llmScore"`
	TechnicalScore   float64 `json:"technicalScore"`
	FundamentalScore float64 `json:"fundamentalScore"`
	FinalScore       int     `json:"finalScore"`
}

// Score calculates the blended confidence score, clamped to [0, 100].
// Deterministic, bounded, and monotonically non-decreasing in liquidity,
// volume and holder count.
func (s *Scorer) Score(llmConfidence int, decision models.Decision, ind *models.IndicatorSet, snap *models.TokenSnapshot) int {
	return s.ScoreBreakdown(llmConfidence, decision, ind, snap).FinalScore
}

// ScoreBreakdown calculates the blended score along with its components
func (s *Scorer) ScoreBreakdown(llmConfidence int, decision models.Decision, ind *models.IndicatorSet, snap *models.TokenSnapshot) *Breakdown {
	llm := clamp(float64(llmConfidence), 0, 100)
	technical := s.technicalScore(decision, ind)
	fundamental := s.fundamentalScore(snap)

	final := llm*s.cfg.LLMWeight + technical*s.cfg.TechnicalWeight + fundamental*s.cfg.FundamentalsWeight

	return &Breakdown{
		LLMScore:         llm,
		TechnicalScore:   technical,
		FundamentalScore: fundamental,
		FinalScore:       int(math.Round(clamp(final, 0, 100))),
	}
}

// technicalScore averages three sub-scores in [0,100]: RSI distance from
// the neutral midpoint aligned with the decision, MACD alignment, and
// volume trend direction.
func (s *Scorer) technicalScore(decision models.Decision, ind *models.IndicatorSet) float64 {
	if ind == nil {
		return 50
	}

	return (rsiAlignment(decision, ind.RSI) +
		macdAlignment(decision, ind.MACDSignal) +
		volumeScore(ind.VolumeTrend)) / 3
}

// rsiAlignment scores how well the RSI supports the decision. Oversold
// favors BUY, overbought favors SELL/NO_BUY, proximity to the midpoint
// favors HOLD.
func rsiAlignment(decision models.Decision, rsi float64) float64 {
	rsi = clamp(rsi, 0, 100)

	switch decision {
	case models.DecisionBuy:
		return clamp(50+(50-rsi), 0, 100)
	case models.DecisionSell, models.DecisionNoBuy:
		return clamp(50+(rsi-50), 0, 100)
	default:
		return clamp(100-math.Abs(rsi-50)*2, 0, 100)
	}
}

func macdAlignment(decision models.Decision, signal models.MACDSignal) float64 {
	switch signal {
	case models.MACDBullish:
		if decision == models.DecisionBuy {
			return 100
		}
		if decision == models.DecisionSell || decision == models.DecisionNoBuy {
			return 20
		}
	case models.MACDBearish:
		if decision == models.DecisionSell || decision == models.DecisionNoBuy {
			return 100
		}
		if decision == models.DecisionBuy {
			return 20
		}
	}
	return 50
}

// volumeScore rewards volume confirmation. A move on rising volume is
// more trustworthy regardless of direction.
func volumeScore(trend models.VolumeTrend) float64 {
	switch trend {
	case models.VolumeIncreasing:
		return 75
	case models.VolumeDecreasing:
		return 25
	default:
		return 50
	}
}

// fundamentalScore averages sub-scores for liquidity, 24h volume and
// holder count. Each uses a log scale with diminishing returns, capped at
// 100 once the "good" threshold is reached.
func (s *Scorer) fundamentalScore(snap *models.TokenSnapshot) float64 {
	if snap == nil {
		return 50
	}

	liquidity := logScale(snap.Liquidity.InexactFloat64(), s.cfg.GoodLiquidity)
	volume := logScale(snap.Volume24h.InexactFloat64(), s.cfg.GoodVolume)
	holders := logScale(float64(snap.Holders), float64(s.cfg.GoodHolders))

	return (liquidity + volume + holders) / 3
}

// logScale maps value to [0,100]: 0 at zero, 100 at ideal and above,
// logarithmic in between. Strictly non-decreasing in value.
func logScale(value, ideal float64) float64 {
	if value <= 0 || ideal <= 0 {
		return 0
	}
	if value >= ideal {
		return 100
	}
	return 100 * math.Log10(1+value) / math.Log10(1+ideal)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Level labels a confidence score for display
func Level(score int) string {
	switch {
	case score >= 80:
		return "VERY_HIGH"
	case score >= 70:
		return "HIGH"
	case score >= 55:
		return "MODERATE"
	case score >= 40:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}
