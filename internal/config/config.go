package config

import (
	"fmt"
	"math"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	AI       AIConfig       `envconfig:"AI"`
	Scoring  ScoringConfig  `envconfig:"SCORING"`
	Risk     RiskConfig     `envconfig:"RISK"`
	Backtest BacktestConfig `envconfig:"BACKTEST"`
	Scan     ScanConfig     `envconfig:"SCAN"`
	Alerts   AlertsConfig   `envconfig:"ALERTS"`
	History  HistoryConfig  `envconfig:"HISTORY"`
	Market   MarketConfig   `envconfig:"MARKET"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
}

// AIProviderConfig represents a single LLM provider configuration
type AIProviderConfig struct {
	APIKey  string `envconfig:"API_KEY" required:"false"`
	BaseURL string `envconfig:"BASE_URL" required:"false"`
	Model   string `envconfig:"MODEL" required:"false"`
	Enabled bool   `envconfig:"ENABLED" default:"false"`
}

// AIConfig represents LLM provider configurations and call policy
type AIConfig struct {
	Groq  AIProviderConfig `envconfig:"GROQ"`
	Local AIProviderConfig `envconfig:"LOCAL"`

	RequestTimeout    time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"15s"`
	RetryOnParseError bool          `envconfig:"AI_RETRY_ON_PARSE_ERROR" default:"true"`
	Temperature       float64       `envconfig:"AI_TEMPERATURE" default:"0.3"`
	MaxTokens         int           `envconfig:"AI_MAX_TOKENS" default:"1024"`
}

// ScoringConfig represents confidence blend weights. The 40/35/25 split is
// a heuristic default, not load-bearing business logic.
type ScoringConfig struct {
	LLMWeight          float64 `envconfig:"SCORING_LLM_WEIGHT" default:"0.40"`
	TechnicalWeight    float64 `envconfig:"SCORING_TECHNICAL_WEIGHT" default:"0.35"`
	FundamentalsWeight float64 `envconfig:"SCORING_FUNDAMENTALS_WEIGHT" default:"0.25"`

	GoodLiquidity float64 `envconfig:"SCORING_GOOD_LIQUIDITY" default:"500000"`
	GoodVolume    float64 `envconfig:"SCORING_GOOD_VOLUME" default:"1000000"`
	GoodHolders   int     `envconfig:"SCORING_GOOD_HOLDERS" default:"10000"`
}

// RiskConfig represents risk classification thresholds
type RiskConfig struct {
	LiquidityFloor   float64 `envconfig:"RISK_LIQUIDITY_FLOOR" default:"10000"`
	LiquidityCaution float64 `envconfig:"RISK_LIQUIDITY_CAUTION" default:"50000"`

	VolumeToMcapCaution float64 `envconfig:"RISK_VOLUME_MCAP_CAUTION" default:"0.02"`
	VolumeToMcapFloor   float64 `envconfig:"RISK_VOLUME_MCAP_FLOOR" default:"0.005"`

	RSIOverbought float64 `envconfig:"RISK_RSI_OVERBOUGHT" default:"70"`
	RSIExtreme    float64 `envconfig:"RISK_RSI_EXTREME" default:"80"`

	HolderFloor     int     `envconfig:"RISK_HOLDER_FLOOR" default:"500"`
	PumpThreshold7d float64 `envconfig:"RISK_PUMP_THRESHOLD_7D" default:"100"`
	BaseSlippagePct float64 `envconfig:"RISK_BASE_SLIPPAGE_PCT" default:"0.3"`
	MaxPositionUSD  float64 `envconfig:"RISK_MAX_POSITION_USD" default:"1000"`
	MinPositionUSD  float64 `envconfig:"RISK_MIN_POSITION_USD" default:"50"`
	DefaultPosition float64 `envconfig:"RISK_DEFAULT_POSITION_USD" default:"100"`
}

// BacktestConfig represents backtest simulation parameters
type BacktestConfig struct {
	InitialCapital   float64 `envconfig:"BACKTEST_INITIAL_CAPITAL" default:"1000"`
	PositionFraction float64 `envconfig:"BACKTEST_POSITION_FRACTION" default:"0.25"`
	StopLossPct      float64 `envconfig:"BACKTEST_STOP_LOSS_PCT" default:"0.10"`
	TakeProfitPct    float64 `envconfig:"BACKTEST_TAKE_PROFIT_PCT" default:"0.20"`
	FeeRate          float64 `envconfig:"BACKTEST_FEE_RATE" default:"0.003"`
	SlippageRate     float64 `envconfig:"BACKTEST_SLIPPAGE_RATE" default:"0.001"`
	MinLookback      int     `envconfig:"BACKTEST_MIN_LOOKBACK" default:"30"`
	PeriodsPerYear   int     `envconfig:"BACKTEST_PERIODS_PER_YEAR" default:"8760"`
}

// ScanConfig represents batch token scanning parameters
type ScanConfig struct {
	Symbols           []string      `envconfig:"SCAN_SYMBOLS" default:"BONK,WIF,POPCAT"`
	Interval          string        `envconfig:"SCAN_INTERVAL" default:"1h"`
	CandleLimit       int           `envconfig:"SCAN_CANDLE_LIMIT" default:"100"`
	Lookback          int           `envconfig:"SCAN_LOOKBACK" default:"30"`
	InterRequestDelay time.Duration `envconfig:"SCAN_INTER_REQUEST_DELAY" default:"2s"`
}

// AlertsConfig represents Telegram alerting configuration
type AlertsConfig struct {
	Enabled       bool   `envconfig:"ALERTS_ENABLED" default:"false"`
	BotToken      string `envconfig:"ALERTS_BOT_TOKEN" required:"false"`
	ChatID        int64  `envconfig:"ALERTS_CHAT_ID" required:"false"`
	MinConfidence int    `envconfig:"ALERTS_MIN_CONFIDENCE" default:"75"`
}

// HistoryConfig represents the optional ClickHouse backtest-run sink
type HistoryConfig struct {
	Enabled bool   `envconfig:"HISTORY_ENABLED" default:"false"`
	DSN     string `envconfig:"HISTORY_DSN" default:"clickhouse://localhost:9000/memescan"`
}

// MarketConfig represents the market data provider configuration
type MarketConfig struct {
	BirdeyeAPIKey  string        `envconfig:"BIRDEYE_API_KEY" required:"false"`
	BirdeyeBaseURL string        `envconfig:"BIRDEYE_BASE_URL" default:"https://public-api.birdeye.so"`
	RequestTimeout time.Duration `envconfig:"MARKET_REQUEST_TIMEOUT" default:"10s"`
	CacheTTL       time.Duration `envconfig:"MARKET_CACHE_TTL" default:"60s"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	weightSum := c.Scoring.LLMWeight + c.Scoring.TechnicalWeight + c.Scoring.FundamentalsWeight
	if math.Abs(weightSum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", weightSum)
	}

	if c.Risk.LiquidityFloor <= 0 || c.Risk.LiquidityCaution < c.Risk.LiquidityFloor {
		return fmt.Errorf("liquidity thresholds must satisfy 0 < floor <= caution")
	}
	if c.Risk.RSIExtreme < c.Risk.RSIOverbought {
		return fmt.Errorf("RSI extreme threshold must be >= overbought threshold")
	}

	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest initial capital must be positive")
	}
	if c.Backtest.PositionFraction <= 0 || c.Backtest.PositionFraction > 1 {
		return fmt.Errorf("backtest position fraction must be in (0, 1]")
	}
	if c.Backtest.StopLossPct <= 0 || c.Backtest.TakeProfitPct <= 0 {
		return fmt.Errorf("stop loss and take profit percentages must be positive")
	}
	if c.Backtest.MinLookback < 15 {
		return fmt.Errorf("backtest lookback must be at least 15 candles")
	}

	if c.AI.RequestTimeout <= 0 {
		return fmt.Errorf("AI request timeout must be positive")
	}

	if c.Alerts.Enabled {
		if c.Alerts.BotToken == "" {
			return fmt.Errorf("alerts enabled but bot token is empty")
		}
		if c.Alerts.ChatID == 0 {
			return fmt.Errorf("alerts enabled but chat_id is empty")
		}
	}

	if c.History.Enabled && c.History.DSN == "" {
		return fmt.Errorf("history enabled but DSN is empty")
	}

	return nil
}
