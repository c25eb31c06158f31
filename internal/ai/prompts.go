package ai

import (
	"fmt"
	"strings"

	"github.com/selivandex/memescan/pkg/models"
)

const systemPrompt = `You are an expert cryptocurrency trading analyst specializing in Solana meme coins.
Your role is to analyze token data and technical indicators to provide trading recommendations.

IMPORTANT RULES:
1. Always respond in valid JSON format
2. Be conservative - protecting capital is priority #1
3. Consider liquidity and volume when making decisions
4. Factor in meme coin volatility and risk
5. Never recommend buying tokens with very low liquidity (<$50k)
6. Consider RSI overbought/oversold levels carefully

Your response MUST be a valid JSON object with this exact structure:
{
    "decision": "BUY" | "SELL" | "HOLD" | "NO_BUY",
    "confidence": <number 0-100>,
    "reasoning": "<2-3 sentence explanation>",
    "riskLevel": "LOW" | "MEDIUM" | "HIGH",
    "riskFactors": ["<risk 1>", "<risk 2>", ...]
}

Decision Guidelines:
- BUY: Strong bullish signals with acceptable risk
- SELL: Strong bearish signals or take-profit opportunity
- NO_BUY: Avoid entry - unfavorable conditions or high risk
- HOLD: Neutral - wait for better entry/exit

Confidence Guidelines:
- 80-100: Very strong signals, multiple confirmations
- 60-79: Moderate signals with some confirmation
- 40-59: Mixed signals, uncertain
- 0-39: Weak signals or high risk`

// correctiveFollowUp is sent once after a parse failure before giving
// up on a provider.
const correctiveFollowUp = `Your previous response was not valid JSON. Respond again with ONLY the JSON object described in the system prompt, no markdown fences and no extra text.`

// buildUserPrompt renders the analysis request. Output is deterministic
// for identical inputs (no timestamps, no random IDs) so prompts can be
// cached and tested.
func buildUserPrompt(req *Request) string {
	var b strings.Builder

	snap := req.Snapshot
	ind := req.Indicators

	fmt.Fprintf(&b, "## TRADING ANALYSIS REQUEST: %s\n\n", snap.Symbol)

	b.WriteString("### TOKEN METRICS\n")
	fmt.Fprintf(&b, "- Symbol: %s\n", snap.Symbol)
	fmt.Fprintf(&b, "- Current Price: $%s\n", snap.Price.String())
	fmt.Fprintf(&b, "- 24h Price Change: %.2f%%\n", snap.PriceChange24h)
	fmt.Fprintf(&b, "- 7d Price Change: %.2f%%\n", snap.PriceChange7d)
	fmt.Fprintf(&b, "- 24h Volume: $%.0f\n", snap.Volume24h.InexactFloat64())
	fmt.Fprintf(&b, "- Liquidity: $%.0f\n", snap.Liquidity.InexactFloat64())
	fmt.Fprintf(&b, "- Market Cap: $%.0f\n", snap.MarketCap.InexactFloat64())
	fmt.Fprintf(&b, "- Holders: %d\n\n", snap.Holders)

	b.WriteString("### TECHNICAL INDICATORS\n")
	fmt.Fprintf(&b, "- RSI (14): %.2f [%s]\n", ind.RSI, rsiStatus(ind.RSI))
	if ind.MACD != nil {
		fmt.Fprintf(&b, "- MACD Line: %.6f\n", ind.MACD.MACD)
		fmt.Fprintf(&b, "- MACD Signal: %.6f\n", ind.MACD.Signal)
		fmt.Fprintf(&b, "- MACD Histogram: %.6f [%s]\n", ind.MACD.Histogram, macdStatus(ind.MACD.Histogram))
	}
	fmt.Fprintf(&b, "- Volume Trend: %s\n", ind.VolumeTrend)
	if ind.SMA20 != nil {
		fmt.Fprintf(&b, "- SMA 20: $%.8f\n", *ind.SMA20)
	}
	if ind.SupportLevel != nil {
		fmt.Fprintf(&b, "- Support Level: $%.8f\n", *ind.SupportLevel)
	}
	if ind.ResistanceLevel != nil {
		fmt.Fprintf(&b, "- Resistance Level: $%.8f\n", *ind.ResistanceLevel)
	}
	fmt.Fprintf(&b, "- Price Action: %s\n\n", ind.PriceAction)

	if len(req.Candles) > 0 {
		b.WriteString("### RECENT PRICE HISTORY (Last 6 Candles)\n")
		candles := req.Candles
		if len(candles) > 6 {
			candles = candles[len(candles)-6:]
		}
		for i, c := range candles {
			fmt.Fprintf(&b, "  %d. O: $%.8f | H: $%.8f | L: $%.8f | C: $%.8f | V: %.0f\n",
				i+1,
				c.Open.InexactFloat64(),
				c.High.InexactFloat64(),
				c.Low.InexactFloat64(),
				c.Close.InexactFloat64(),
				c.Volume.InexactFloat64(),
			)
		}
		b.WriteString("\n")
	}

	b.WriteString("### ANALYSIS REQUEST\n")
	b.WriteString("Based on the above data, provide your trading recommendation.\n")
	b.WriteString("Consider:\n")
	b.WriteString("1. Is the current price a good entry point?\n")
	b.WriteString("2. What are the key risks?\n")
	b.WriteString("3. What is your confidence level in this analysis?\n\n")
	b.WriteString("Respond with a JSON object containing: decision, confidence, reasoning, riskLevel, riskFactors")

	return b.String()
}

func rsiStatus(rsi float64) string {
	switch {
	case rsi > 70:
		return "OVERBOUGHT"
	case rsi < 30:
		return "OVERSOLD"
	default:
		return "NEUTRAL"
	}
}

func macdStatus(histogram float64) string {
	if histogram > 0 {
		return string(models.MACDBullish)
	}
	return string(models.MACDBearish)
}
