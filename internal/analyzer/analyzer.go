package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/ai"
	"github.com/selivandex/memescan/internal/confidence"
	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/internal/indicators"
	"github.com/selivandex/memescan/internal/risk"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

// fallbackPrefix marks recommendations produced after every LLM in the
// chain failed. Callers surface it to the user so a degraded answer is
// never mistaken for a model one.
const fallbackPrefix = "Fallback rule-based analysis: LLM unavailable. "

// Analyzer orchestrates the decision pipeline: indicators, the provider
// fallback chain, then confidence blending and risk classification.
// It always returns a recommendation for valid input; LLM failures are
// absorbed internally.
type Analyzer struct {
	providers  []ai.Provider
	calculator *indicators.Calculator
	scorer     *confidence.Scorer
	assessor   *risk.Assessor
	timeout    time.Duration
	lookback   int
}

// New wires the full provider chain from configuration: Groq, then the
// local model, then the rule-based terminal provider.
func New(cfg *config.Config) *Analyzer {
	providers := []ai.Provider{
		ai.NewGroqProvider(cfg.AI.Groq, cfg.AI),
		ai.NewLocalProvider(cfg.AI.Local, cfg.AI),
		ai.NewRuleProvider(),
	}
	return NewWithProviders(cfg, providers)
}

// NewWithProviders builds an analyzer with an explicit provider chain.
// The chain is tried in order; the last provider must never fail.
func NewWithProviders(cfg *config.Config, providers []ai.Provider) *Analyzer {
	return &Analyzer{
		providers:  providers,
		calculator: indicators.NewCalculator(),
		scorer:     confidence.NewScorer(cfg.Scoring),
		assessor:   risk.NewAssessor(cfg.Risk),
		timeout:    cfg.AI.RequestTimeout,
		lookback:   cfg.Scan.Lookback,
	}
}

// Analyze produces a recommendation for a token. Hard failures are only
// models.ErrInvalidInput (bad snapshot or candles) and
// models.ErrInsufficientData (too few candles); every LLM-side failure
// degrades through the chain instead of surfacing.
func (a *Analyzer) Analyze(ctx context.Context, snap *models.TokenSnapshot, candles []models.Candle) (*models.Recommendation, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", models.ErrInvalidInput)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidateCandles(candles); err != nil {
		return nil, err
	}

	ind, err := a.calculator.Compute(candles, a.lookback)
	if err != nil {
		return nil, err
	}

	req := &ai.Request{
		Snapshot:   snap,
		Indicators: ind,
		Candles:    candles,
	}

	raw, providerName, degraded := a.decide(ctx, req)

	reasoning := raw.Reasoning
	if degraded {
		reasoning = fallbackPrefix + reasoning
	}

	score := a.scorer.Score(raw.Confidence, raw.Decision, ind, snap)
	assessment := a.assessor.Classify(snap, ind, 0)

	rec := &models.Recommendation{
		Symbol:     snap.Symbol,
		Decision:   raw.Decision,
		Confidence: score,
		Reasoning:  reasoning,
		RiskLevel:  assessment.RiskLevel,
		Indicators: ind,
		Risk:       assessment,
		Model:      providerName,
		Timestamp:  time.Now().UTC(),
	}

	logger.Info("analysis complete",
		zap.String("symbol", snap.Symbol),
		zap.String("decision", string(rec.Decision)),
		zap.Int("confidence", rec.Confidence),
		zap.String("risk", string(rec.RiskLevel)),
		zap.String("model", providerName),
	)

	return rec, nil
}

// decide walks the provider chain in order. degraded reports that at
// least one LLM provider was attempted and failed before the rule-based
// terminal provider answered.
func (a *Analyzer) decide(ctx context.Context, req *ai.Request) (raw *ai.RawDecision, providerName string, degraded bool) {
	llmFailed := false

	for _, provider := range a.providers {
		if !provider.IsEnabled() {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		decision, err := provider.Decide(callCtx, req)
		cancel()

		if err != nil {
			llmFailed = true
			logger.Warn("provider failed, falling through",
				zap.String("provider", provider.Name()),
				zap.String("symbol", req.Snapshot.Symbol),
				zap.Error(err),
			)
			continue
		}

		_, isRule := provider.(*ai.RuleProvider)
		return decision, provider.Name(), isRule && llmFailed
	}

	// Unreachable with a properly constructed chain, but a chain of
	// disabled providers must still yield an answer.
	rule := ai.NewRuleProvider()
	decision, _ := rule.Decide(ctx, req)
	return decision, rule.Name(), llmFailed
}

// DecisionFunc adapts the analyzer for the backtest engine: given a
// snapshot, returns a function that decides on a candle window.
func (a *Analyzer) DecisionFunc(snap *models.TokenSnapshot) func(ctx context.Context, candles []models.Candle) (models.Decision, error) {
	return func(ctx context.Context, candles []models.Candle) (models.Decision, error) {
		rec, err := a.Analyze(ctx, snap, candles)
		if err != nil {
			return "", err
		}
		return rec.Decision, nil
	}
}
