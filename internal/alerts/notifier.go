package alerts

import (
	"context"
	"fmt"
	"math"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/backtest"
	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

// Notifier pushes scan and backtest results to a Telegram chat.
// Recommendations below the configured confidence floor are dropped
// silently so the channel only carries actionable signals.
type Notifier struct {
	api           *tgbotapi.BotAPI
	chatID        int64
	minConfidence int
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg config.AlertsConfig) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
		zap.Int64("chat_id", cfg.ChatID),
	)

	return &Notifier{
		api:           bot,
		chatID:        cfg.ChatID,
		minConfidence: cfg.MinConfidence,
	}, nil
}

// SendRecommendation sends one analysis result. Returns nil without
// sending when confidence is below the floor.
func (n *Notifier) SendRecommendation(rec *models.Recommendation) error {
	if rec.Confidence < n.minConfidence {
		logger.Debug("recommendation below alert threshold, skipping",
			zap.String("symbol", rec.Symbol),
			zap.Int("confidence", rec.Confidence),
		)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* — %s\n\n", decisionEmoji(rec.Decision), rec.Symbol, rec.Decision)
	fmt.Fprintf(&b, "Confidence: %d%%\n", rec.Confidence)
	fmt.Fprintf(&b, "Risk: %s\n", rec.RiskLevel)
	if rec.Indicators != nil {
		fmt.Fprintf(&b, "RSI: %.1f | Volume: %s\n", rec.Indicators.RSI, rec.Indicators.VolumeTrend)
	}
	if rec.Risk != nil {
		fmt.Fprintf(&b, "Max position: $%.0f | Est. slippage: %.2f%%\n", rec.Risk.MaxPositionSize, rec.Risk.EstimatedSlippage)
	}
	fmt.Fprintf(&b, "\n%s\n", rec.Reasoning)
	fmt.Fprintf(&b, "\n_model: %s_", rec.Model)

	return n.send(b.String())
}

// SendBacktestSummary sends a compact backtest report
func (n *Notifier) SendBacktestSummary(result *backtest.Result) error {
	profitFactor := "inf"
	if !math.IsInf(result.ProfitFactor, 1) {
		profitFactor = fmt.Sprintf("%.2f", result.ProfitFactor)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Backtest: %s*\n\n", result.Symbol)
	fmt.Fprintf(&b, "Period: %s → %s\n",
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"),
	)
	fmt.Fprintf(&b, "Trades: %d (%.1f%% win rate)\n", result.TotalTrades, result.WinRate)
	fmt.Fprintf(&b, "PnL: $%.2f (%.2f%%)\n", result.TotalPnL, result.TotalPnLPercent)
	fmt.Fprintf(&b, "Max drawdown: %.2f%%\n", result.MaxDrawdownPercent)
	fmt.Fprintf(&b, "Sharpe: %.2f | Profit factor: %s", result.SharpeRatio, profitFactor)

	return n.send(b.String())
}

func (n *Notifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func decisionEmoji(d models.Decision) string {
	switch d {
	case models.DecisionBuy:
		return "🟢"
	case models.DecisionSell:
		return "🔴"
	case models.DecisionNoBuy:
		return "⛔"
	default:
		return "⚪"
	}
}

// Publish satisfies the scanner's recommendation sink interface
func (n *Notifier) Publish(_ context.Context, rec *models.Recommendation) error {
	return n.SendRecommendation(rec)
}
