package ai

import (
	"context"

	"github.com/selivandex/memescan/pkg/models"
)

// RuleProvider is the terminal link in the fallback chain: a
// deterministic decision derived purely from indicators. It has no
// external dependency and never fails, guaranteeing the analyzer can
// always produce a recommendation.
type RuleProvider struct{}

// NewRuleProvider creates the rule-based fallback provider
func NewRuleProvider() *RuleProvider {
	return &RuleProvider{}
}

func (r *RuleProvider) Name() string {
	return "rule-based"
}

func (r *RuleProvider) IsEnabled() bool {
	return true
}

func (r *RuleProvider) Decide(ctx context.Context, req *Request) (*RawDecision, error) {
	ind := req.Indicators

	switch {
	case ind.RSI <= 30 && ind.VolumeTrend == models.VolumeIncreasing:
		return &RawDecision{
			Decision:   models.DecisionBuy,
			Confidence: 75,
			Reasoning:  "RSI indicates oversold conditions with increasing volume, suggesting potential reversal.",
			RiskLevel:  models.RiskMedium,
		}, nil

	case ind.RSI >= 70:
		return &RawDecision{
			Decision:   models.DecisionNoBuy,
			Confidence: 70,
			Reasoning:  "RSI indicates overbought conditions. Wait for pullback to better entry.",
			RiskLevel:  models.RiskHigh,
		}, nil

	case ind.VolumeTrend == models.VolumeDecreasing:
		return &RawDecision{
			Decision:   models.DecisionNoBuy,
			Confidence: 60,
			Reasoning:  "Declining volume suggests weakening momentum. Not ideal for entry.",
			RiskLevel:  models.RiskMedium,
		}, nil

	default:
		return &RawDecision{
			Decision:   models.DecisionHold,
			Confidence: 50,
			Reasoning:  "No clear trading signal. Neutral market conditions.",
			RiskLevel:  models.RiskLow,
		}, nil
	}
}
