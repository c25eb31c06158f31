package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/models"
)

// BirdeyeProvider fetches Solana token data from the Birdeye public
// API. Responses are cached in memory with a configurable TTL to stay
// under the free-tier rate limits during batch scans.
type BirdeyeProvider struct {
	apiKey  string
	baseURL string
	ttl     time.Duration
	client  *http.Client

	mu          sync.RWMutex
	snapCache   map[string]cachedSnapshot
	candleCache map[string]cachedCandles
}

type cachedSnapshot struct {
	fetchedAt time.Time
	snapshot  *models.TokenSnapshot
}

type cachedCandles struct {
	fetchedAt time.Time
	candles   []models.Candle
}

// NewBirdeyeProvider creates new Birdeye market data provider
func NewBirdeyeProvider(cfg config.MarketConfig) *BirdeyeProvider {
	return &BirdeyeProvider{
		apiKey:      cfg.BirdeyeAPIKey,
		baseURL:     strings.TrimSuffix(cfg.BirdeyeBaseURL, "/"),
		ttl:         cfg.CacheTTL,
		client:      &http.Client{Timeout: cfg.RequestTimeout},
		snapCache:   make(map[string]cachedSnapshot),
		candleCache: make(map[string]cachedCandles),
	}
}

func (b *BirdeyeProvider) GetName() string {
	return "Birdeye"
}

// Snapshot returns the current token overview. Validated before return
// so downstream code can rely on snapshot invariants.
func (b *BirdeyeProvider) Snapshot(ctx context.Context, symbol string) (*models.TokenSnapshot, error) {
	b.mu.RLock()
	if cached, ok := b.snapCache[symbol]; ok && time.Since(cached.fetchedAt) < b.ttl {
		b.mu.RUnlock()
		return cached.snapshot, nil
	}
	b.mu.RUnlock()

	url := fmt.Sprintf("%s/defi/token_overview?address=%s", b.baseURL, symbol)

	var payload struct {
		Data struct {
			Symbol    string  `json:"symbol"`
			Name      string  `json:"name"`
			Price     float64 `json:"price"`
			Volume24h float64 `json:"v24hUSD"`
			Liquidity float64 `json:"liquidity"`
			MarketCap float64 `json:"mc"`
			Holders   int     `json:"holder"`
			Change24h float64 `json:"priceChange24hPercent"`
			Change7d  float64 `json:"priceChange7dPercent"`
		} `json:"data"`
		Success bool `json:"success"`
	}

	if err := b.get(ctx, url, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("birdeye: token overview failed for %s", symbol)
	}

	snap := &models.TokenSnapshot{
		Symbol:         symbol,
		Name:           payload.Data.Name,
		Price:          models.NewDecimal(payload.Data.Price),
		Volume24h:      models.NewDecimal(payload.Data.Volume24h),
		Liquidity:      models.NewDecimal(payload.Data.Liquidity),
		MarketCap:      models.NewDecimal(payload.Data.MarketCap),
		Holders:        payload.Data.Holders,
		PriceChange24h: payload.Data.Change24h,
		PriceChange7d:  payload.Data.Change7d,
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("birdeye returned invalid snapshot for %s: %w", symbol, err)
	}

	b.mu.Lock()
	b.snapCache[symbol] = cachedSnapshot{fetchedAt: time.Now(), snapshot: snap}
	b.mu.Unlock()

	return snap, nil
}

// OHLCV returns up to limit historical candles for the symbol, oldest
// first, validated against candle-series invariants.
func (b *BirdeyeProvider) OHLCV(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	cacheKey := fmt.Sprintf("%s|%s|%d", symbol, interval, limit)

	b.mu.RLock()
	if cached, ok := b.candleCache[cacheKey]; ok && time.Since(cached.fetchedAt) < b.ttl {
		b.mu.RUnlock()
		return cached.candles, nil
	}
	b.mu.RUnlock()

	now := time.Now().Unix()
	from := now - int64(limit)*intervalSeconds(interval)
	url := fmt.Sprintf("%s/defi/ohlcv?address=%s&type=%s&time_from=%d&time_to=%d",
		b.baseURL, symbol, interval, from, now)

	var payload struct {
		Data struct {
			Items []struct {
				UnixTime int64   `json:"unixTime"`
				Open     float64 `json:"o"`
				High     float64 `json:"h"`
				Low      float64 `json:"l"`
				Close    float64 `json:"c"`
				Volume   float64 `json:"v"`
			} `json:"items"`
		} `json:"data"`
		Success bool `json:"success"`
	}

	if err := b.get(ctx, url, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("birdeye: ohlcv fetch failed for %s", symbol)
	}

	candles := make([]models.Candle, 0, len(payload.Data.Items))
	for _, item := range payload.Data.Items {
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(item.UnixTime, 0).UTC(),
			Open:      models.NewDecimal(item.Open),
			High:      models.NewDecimal(item.High),
			Low:       models.NewDecimal(item.Low),
			Close:     models.NewDecimal(item.Close),
			Volume:    models.NewDecimal(item.Volume),
		})
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	if err := models.ValidateCandles(candles); err != nil {
		return nil, fmt.Errorf("birdeye returned invalid candles for %s: %w", symbol, err)
	}

	b.mu.Lock()
	b.candleCache[cacheKey] = cachedCandles{fetchedAt: time.Now(), candles: candles}
	b.mu.Unlock()

	return candles, nil
}

func (b *BirdeyeProvider) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-chain", "solana")
	if b.apiKey != "" {
		req.Header.Set("X-API-KEY", b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("birdeye API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func intervalSeconds(interval string) int64 {
	switch interval {
	case "1m":
		return 60
	case "5m":
		return 300
	case "15m":
		return 900
	case "1H", "1h":
		return 3600
	case "4H", "4h":
		return 14400
	case "1D", "1d":
		return 86400
	default:
		return 3600
	}
}
