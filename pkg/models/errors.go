package models

import "errors"

// Sentinel errors for the analysis pipeline. Callers match them with
// errors.Is; components wrap them with fmt.Errorf and %w to add context.
var (
	// ErrInsufficientData means the candle series is shorter than the
	// requested indicator lookback. Surfaced to the caller, not retried.
	ErrInsufficientData = errors.New("insufficient candle data")

	// ErrInvalidInput means snapshot or candle data violates basic
	// invariants (non-positive price, non-monotonic timestamps).
	// Surfaced to the caller immediately, no fallback.
	ErrInvalidInput = errors.New("invalid input data")

	// ErrAIUnavailable means an LLM call timed out or failed at the
	// transport level. Absorbed by the analyzer's fallback chain.
	ErrAIUnavailable = errors.New("AI provider unavailable")

	// ErrParse means an LLM response could not be parsed into a valid
	// decision. Absorbed by the analyzer's fallback chain.
	ErrParse = errors.New("failed to parse AI response")
)
