package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewDecimal creates decimal from float64
func NewDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// Decision represents a trading recommendation action
type Decision string

const (
	DecisionBuy   Decision = "BUY"
	DecisionSell  Decision = "SELL"
	DecisionHold  Decision = "HOLD"
	DecisionNoBuy Decision = "NO_BUY"
)

// ValidDecision reports whether d is one of the allowed decision values
func ValidDecision(d Decision) bool {
	switch d {
	case DecisionBuy, DecisionSell, DecisionHold, DecisionNoBuy:
		return true
	}
	return false
}

// RiskLevel represents trade risk category
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ValidRiskLevel reports whether r is one of the allowed risk levels
func ValidRiskLevel(r RiskLevel) bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Rank returns an ordering value for severity comparison (HIGH > MEDIUM > LOW)
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}

// VolumeTrend represents volume direction over recent candles
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "INCREASING"
	VolumeDecreasing VolumeTrend = "DECREASING"
	VolumeStable     VolumeTrend = "STABLE"
)

// MACDSignal represents MACD line vs signal line crossover state
type MACDSignal string

const (
	MACDBullish MACDSignal = "BULLISH"
	MACDBearish MACDSignal = "BEARISH"
	MACDNeutral MACDSignal = "NEUTRAL"
)

// Candle represents OHLCV candlestick data
type Candle struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// TokenSnapshot represents current token metrics supplied per analysis request
type TokenSnapshot struct {
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Volume24h      decimal.Decimal `json:"volume24h"`
	Liquidity      decimal.Decimal `json:"liquidity"`
	MarketCap      decimal.Decimal `json:"marketCap"`
	Holders        int             `json:"holders"`
	PriceChange24h float64         `json:"priceChange24h"`
	PriceChange7d  float64         `json:"priceChange7d"`
}

// MACDIndicator represents MACD component values
type MACDIndicator struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// IndicatorSet represents technical indicators derived from one OHLCV series
// at one point in time. Computed on demand, never cached by the core.
type IndicatorSet struct {
	RSI             float64        `json:"rsi"`
	VolumeTrend     VolumeTrend    `json:"volumeTrend"`
	MACDSignal      MACDSignal     `json:"macdSignal,omitempty"`
	MACD            *MACDIndicator `json:"macd,omitempty"`
	SMA20           *float64       `json:"sma20,omitempty"`
	SupportLevel    *float64       `json:"supportLevel,omitempty"`
	ResistanceLevel *float64       `json:"resistanceLevel,omitempty"`
	PriceAction     string         `json:"priceAction"`
}

// RiskFactor represents one triggered risk condition
type RiskFactor struct {
	Name        string    `json:"name"`
	Severity    RiskLevel `json:"severity"`
	Description string    `json:"description"`
}

// RiskAssessment represents the risk classifier output for one trade
type RiskAssessment struct {
	RiskLevel         RiskLevel    `json:"riskLevel"`
	Factors           []RiskFactor `json:"factors"`
	MaxPositionSize   float64      `json:"maxPositionSize"`
	EstimatedSlippage float64      `json:"estimatedSlippage"`
	Recommendation    string       `json:"recommendation"`
}

// Recommendation is the analyzer's primary output
type Recommendation struct {
	Symbol     string          `json:"symbol"`
	Decision   Decision        `json:"decision"`
	Confidence int             `json:"confidence"`
	Reasoning  string          `json:"reasoning"`
	RiskLevel  RiskLevel       `json:"riskLevel"`
	Indicators *IndicatorSet   `json:"indicators"`
	Risk       *RiskAssessment `json:"risk,omitempty"`
	Model      string          `json:"modelUsed"`
	Timestamp  time.Time       `json:"timestamp"`
}
