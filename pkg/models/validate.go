package models

import "fmt"

// ValidateCandles checks basic OHLCV invariants: ascending timestamps,
// positive prices, high/low bracketing open and close, non-negative volume.
// Violations are reported as ErrInvalidInput.
func ValidateCandles(candles []Candle) error {
	if len(candles) == 0 {
		return fmt.Errorf("%w: empty candle series", ErrInvalidInput)
	}

	for i, c := range candles {
		open := c.Open.InexactFloat64()
		high := c.High.InexactFloat64()
		low := c.Low.InexactFloat64()
		close := c.Close.InexactFloat64()

		if open <= 0 || high <= 0 || low <= 0 || close <= 0 {
			return fmt.Errorf("%w: non-positive price at candle %d", ErrInvalidInput, i)
		}
		if high < open || high < close {
			return fmt.Errorf("%w: high below open/close at candle %d", ErrInvalidInput, i)
		}
		if low > open || low > close {
			return fmt.Errorf("%w: low above open/close at candle %d", ErrInvalidInput, i)
		}
		if c.Volume.IsNegative() {
			return fmt.Errorf("%w: negative volume at candle %d", ErrInvalidInput, i)
		}
		if i > 0 && !c.Timestamp.After(candles[i-1].Timestamp) {
			return fmt.Errorf("%w: non-ascending timestamp at candle %d", ErrInvalidInput, i)
		}
	}

	return nil
}

// Validate checks snapshot invariants. Zero or negative price is an error
// to propagate, never silently coerced.
func (s *TokenSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	}
	if s.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidInput)
	}
	if !s.Price.IsPositive() {
		return fmt.Errorf("%w: non-positive price for %s", ErrInvalidInput, s.Symbol)
	}
	if s.Volume24h.IsNegative() || s.Liquidity.IsNegative() || s.MarketCap.IsNegative() {
		return fmt.Errorf("%w: negative market metric for %s", ErrInvalidInput, s.Symbol)
	}
	if s.Holders < 0 {
		return fmt.Errorf("%w: negative holder count for %s", ErrInvalidInput, s.Symbol)
	}
	return nil
}
