package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/selivandex/memescan/internal/config"
)

func birdeyeTestServer(t *testing.T, hits *int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasPrefix(r.URL.Path, "/defi/token_overview"):
			w.Write([]byte(`{
				"success": true,
				"data": {
					"symbol": "WIF",
					"name": "dogwifhat",
					"price": 1.5,
					"v24hUSD": 2000000,
					"liquidity": 800000,
					"mc": 15000000,
					"holder": 42000,
					"priceChange24hPercent": 3.2,
					"priceChange7dPercent": -1.1
				}
			}`))
		case strings.HasPrefix(r.URL.Path, "/defi/ohlcv"):
			w.Write([]byte(`{
				"success": true,
				"data": {
					"items": [
						{"unixTime": 1717200000, "o": 1.0, "h": 1.1, "l": 0.9, "c": 1.05, "v": 1000},
						{"unixTime": 1717203600, "o": 1.05, "h": 1.15, "l": 1.0, "c": 1.1, "v": 1200}
					]
				}
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testMarketConfig(baseURL string) config.MarketConfig {
	return config.MarketConfig{
		BirdeyeBaseURL: baseURL,
		RequestTimeout: 5 * time.Second,
		CacheTTL:       time.Minute,
	}
}

func TestBirdeye_Snapshot(t *testing.T) {
	hits := 0
	srv := birdeyeTestServer(t, &hits)
	defer srv.Close()

	provider := NewBirdeyeProvider(testMarketConfig(srv.URL))

	snap, err := provider.Snapshot(context.Background(), "WIF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Name != "dogwifhat" {
		t.Errorf("expected name dogwifhat, got %s", snap.Name)
	}
	if snap.Holders != 42000 {
		t.Errorf("expected 42000 holders, got %d", snap.Holders)
	}
	if snap.Price.InexactFloat64() != 1.5 {
		t.Errorf("expected price 1.5, got %s", snap.Price)
	}
}

func TestBirdeye_SnapshotCached(t *testing.T) {
	hits := 0
	srv := birdeyeTestServer(t, &hits)
	defer srv.Close()

	provider := NewBirdeyeProvider(testMarketConfig(srv.URL))

	for i := 0; i < 3; i++ {
		if _, err := provider.Snapshot(context.Background(), "WIF"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream hit with warm cache, got %d", hits)
	}
}

func TestBirdeye_OHLCV(t *testing.T) {
	hits := 0
	srv := birdeyeTestServer(t, &hits)
	defer srv.Close()

	provider := NewBirdeyeProvider(testMarketConfig(srv.URL))

	candles, err := provider.OHLCV(context.Background(), "WIF", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Error("candles must be ordered oldest first")
	}
	if candles[1].Close.InexactFloat64() != 1.1 {
		t.Errorf("unexpected close %s", candles[1].Close)
	}
}

func TestBirdeye_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	provider := NewBirdeyeProvider(testMarketConfig(srv.URL))

	if _, err := provider.Snapshot(context.Background(), "WIF"); err == nil {
		t.Error("expected error on upstream failure")
	}
	if _, err := provider.OHLCV(context.Background(), "WIF", "1h", 10); err == nil {
		t.Error("expected error on upstream failure")
	}
}
