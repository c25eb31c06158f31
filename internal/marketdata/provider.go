package marketdata

import (
	"context"

	"github.com/selivandex/memescan/pkg/models"
)

// Provider supplies the market data the analysis pipeline consumes:
// a current token snapshot and historical OHLCV candles.
type Provider interface {
	// Snapshot returns the current state of a token
	Snapshot(ctx context.Context, symbol string) (*models.TokenSnapshot, error)

	// OHLCV returns historical candles, oldest first
	OHLCV(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)

	// GetName returns provider name
	GetName() string
}
