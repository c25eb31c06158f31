package risk

import (
	"fmt"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/models"
)

// Risk factor names used in assessments
const (
	FactorLowLiquidity    = "LOW_LIQUIDITY"
	FactorThinVolume      = "THIN_VOLUME"
	FactorOverbought      = "OVERBOUGHT"
	FactorLowHolders      = "LOW_HOLDERS"
	FactorRecentPump      = "RECENT_PUMP"
	FactorPositionSize    = "POSITION_TOO_LARGE"
	FactorDecliningVolume = "DECLINING_VOLUME"
)

// Assessor classifies trade risk from a token snapshot and indicator
// state. Factors are evaluated independently; the overall level is the
// maximum severity among triggered factors, LOW when none trigger.
type Assessor struct {
	cfg config.RiskConfig
}

// NewAssessor creates new risk assessor
func NewAssessor(cfg config.RiskConfig) *Assessor {
	return &Assessor{cfg: cfg}
}

// Classify evaluates all risk factors for a proposed trade.
// positionSizeUSD <= 0 falls back to the configured default size.
func (a *Assessor) Classify(snap *models.TokenSnapshot, ind *models.IndicatorSet, positionSizeUSD float64) *models.RiskAssessment {
	if positionSizeUSD <= 0 {
		positionSizeUSD = a.cfg.DefaultPosition
	}

	var factors []models.RiskFactor
	add := func(name string, severity models.RiskLevel, description string) {
		factors = append(factors, models.RiskFactor{
			Name:        name,
			Severity:    severity,
			Description: description,
		})
	}

	liquidity := 0.0
	volume := 0.0
	marketCap := 0.0
	holders := 0
	change7d := 0.0

	if snap != nil {
		liquidity = snap.Liquidity.InexactFloat64()
		volume = snap.Volume24h.InexactFloat64()
		marketCap = snap.MarketCap.InexactFloat64()
		holders = snap.Holders
		change7d = snap.PriceChange7d
	}

	switch {
	case liquidity < a.cfg.LiquidityFloor:
		add(FactorLowLiquidity, models.RiskHigh,
			fmt.Sprintf("Liquidity $%.0f below minimum $%.0f - high slippage and exit risk", liquidity, a.cfg.LiquidityFloor))
	case liquidity < a.cfg.LiquidityCaution:
		add(FactorLowLiquidity, models.RiskMedium,
			fmt.Sprintf("Liquidity $%.0f below caution level $%.0f", liquidity, a.cfg.LiquidityCaution))
	}

	if marketCap > 0 {
		ratio := volume / marketCap
		switch {
		case ratio < a.cfg.VolumeToMcapFloor:
			add(FactorThinVolume, models.RiskHigh,
				fmt.Sprintf("24h volume is %.2f%% of market cap - illiquid to trade", ratio*100))
		case ratio < a.cfg.VolumeToMcapCaution:
			add(FactorThinVolume, models.RiskMedium,
				fmt.Sprintf("24h volume is %.2f%% of market cap - limited market depth", ratio*100))
		}
	}

	if ind != nil {
		switch {
		case ind.RSI >= a.cfg.RSIExtreme:
			add(FactorOverbought, models.RiskHigh,
				fmt.Sprintf("RSI %.1f indicates extreme overbought conditions", ind.RSI))
		case ind.RSI >= a.cfg.RSIOverbought:
			add(FactorOverbought, models.RiskMedium,
				fmt.Sprintf("RSI %.1f indicates overbought conditions", ind.RSI))
		}

		if ind.VolumeTrend == models.VolumeDecreasing {
			add(FactorDecliningVolume, models.RiskLow, "Declining trading volume - weakening momentum")
		}
	}

	if snap != nil && holders < a.cfg.HolderFloor {
		add(FactorLowHolders, models.RiskMedium,
			fmt.Sprintf("Only %d holders - concentration risk", holders))
	}

	if change7d > a.cfg.PumpThreshold7d {
		add(FactorRecentPump, models.RiskHigh,
			fmt.Sprintf("Price up %.0f%% in 7 days - chasing risk", change7d))
	}

	if liquidity > 0 {
		sizePct := positionSizeUSD / liquidity * 100
		switch {
		case sizePct > 2:
			add(FactorPositionSize, models.RiskHigh,
				fmt.Sprintf("Position is %.2f%% of pool liquidity", sizePct))
		case sizePct > 1:
			add(FactorPositionSize, models.RiskMedium,
				fmt.Sprintf("Position is %.2f%% of pool liquidity", sizePct))
		case sizePct > 0.5:
			add(FactorPositionSize, models.RiskLow,
				fmt.Sprintf("Position is %.2f%% of pool liquidity", sizePct))
		}
	}

	level := models.RiskLow
	for _, f := range factors {
		if f.Severity.Rank() > level.Rank() {
			level = f.Severity
		}
	}

	maxPosition := a.maxPositionSize(liquidity, level)
	slippage := a.estimateSlippage(liquidity, positionSizeUSD)

	return &models.RiskAssessment{
		RiskLevel:         level,
		Factors:           factors,
		MaxPositionSize:   maxPosition,
		EstimatedSlippage: slippage,
		Recommendation:    a.recommendation(level, positionSizeUSD, maxPosition),
	}
}

// maxPositionSize caps trade size to a fraction of liquidity, with a
// smaller fraction for higher risk. Bounded by configured min/max USD.
func (a *Assessor) maxPositionSize(liquidity float64, level models.RiskLevel) float64 {
	if liquidity < a.cfg.LiquidityFloor {
		return a.cfg.MinPositionUSD
	}

	fraction := 0.01
	switch level {
	case models.RiskMedium:
		fraction = 0.005
	case models.RiskHigh:
		fraction = 0.001
	}

	maxPos := liquidity * fraction
	if maxPos > a.cfg.MaxPositionUSD {
		maxPos = a.cfg.MaxPositionUSD
	}
	if maxPos < a.cfg.MinPositionUSD {
		maxPos = a.cfg.MinPositionUSD
	}
	return maxPos
}

// estimateSlippage is a simple depth model: base DEX fee plus the
// position's share of pool liquidity. Not an order-book simulation.
func (a *Assessor) estimateSlippage(liquidity, positionSizeUSD float64) float64 {
	if liquidity <= 0 {
		return 10.0
	}
	return a.cfg.BaseSlippagePct + positionSizeUSD/liquidity*100
}

func (a *Assessor) recommendation(level models.RiskLevel, positionSize, maxPosition float64) string {
	switch level {
	case models.RiskHigh:
		if positionSize > maxPosition {
			return fmt.Sprintf("REDUCE_SIZE - max recommended $%.0f", maxPosition)
		}
		return "PROCEED_WITH_CAUTION - set tight stop-loss"
	case models.RiskMedium:
		if positionSize > maxPosition*1.5 {
			return fmt.Sprintf("REDUCE_SIZE - consider position of $%.0f", maxPosition)
		}
		return "PROCEED - normal meme coin risk"
	default:
		return "PROCEED - favorable risk profile"
	}
}
