package ai

import (
	"context"

	"github.com/selivandex/memescan/pkg/models"
)

// Request carries everything a provider needs to form a decision.
// Providers build their own prompts from it; the rule-based provider
// reads the indicators directly.
type Request struct {
	Snapshot   *models.TokenSnapshot
	Indicators *models.IndicatorSet
	Candles    []models.Candle
}

// RawDecision is a provider's unprocessed verdict. Confidence here is
// the provider's self-reported number; the scorer blends it with
// technical and fundamental signals before anything reaches the caller.
type RawDecision struct {
	Decision    models.Decision
	Confidence  int
	Reasoning   string
	RiskLevel   models.RiskLevel
	RiskFactors []string
}

// Provider represents a decision source: an LLM, a local model, or the
// rule-based fallback. Implementations must wrap transport failures in
// models.ErrAIUnavailable and malformed output in models.ErrParse so the
// analyzer can fall through the chain.
type Provider interface {
	// Decide analyzes the request and returns a raw trading decision
	Decide(ctx context.Context, req *Request) (*RawDecision, error)

	// Name returns provider name for logging and model attribution
	Name() string

	// IsEnabled returns whether provider is configured and usable
	IsEnabled() bool
}
