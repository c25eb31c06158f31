package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/memescan/internal/config"
	"github.com/selivandex/memescan/pkg/logger"
	"github.com/selivandex/memescan/pkg/models"
)

const (
	groqAPIURL       = "https://api.groq.com/openai/v1/chat/completions"
	groqDefaultModel = "llama-3.1-70b-versatile"
)

// GroqProvider implements the primary LLM provider via Groq's
// OpenAI-compatible chat completions API.
type GroqProvider struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	retryParse  bool
	enabled     bool
	client      *http.Client
}

// NewGroqProvider creates new Groq provider
func NewGroqProvider(cfg config.AIProviderConfig, policy config.AIConfig) *GroqProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = groqAPIURL
	}
	model := cfg.Model
	if model == "" {
		model = groqDefaultModel
	}

	return &GroqProvider{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: policy.Temperature,
		maxTokens:   policy.MaxTokens,
		retryParse:  policy.RetryOnParseError,
		enabled:     cfg.Enabled && cfg.APIKey != "",
		client: &http.Client{
			Timeout: policy.RequestTimeout,
		},
	}
}

func (g *GroqProvider) Name() string {
	return g.model
}

func (g *GroqProvider) IsEnabled() bool {
	return g.enabled
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Decide queries the model and parses its decision. On a parse failure
// it sends one corrective follow-up before giving up, keeping latency
// and cost bounded at two calls.
func (g *GroqProvider) Decide(ctx context.Context, req *Request) (*RawDecision, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(req)},
	}

	content, err := g.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	decision, err := parseDecision(content)
	if err == nil {
		return decision, nil
	}
	if !g.retryParse || !errors.Is(err, models.ErrParse) {
		return nil, err
	}

	logger.Warn("groq response failed to parse, sending corrective follow-up",
		zap.String("model", g.model),
		zap.Error(err),
	)

	messages = append(messages,
		chatMessage{Role: "assistant", Content: content},
		chatMessage{Role: "user", Content: correctiveFollowUp},
	)

	content, err = g.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseDecision(content)
}

func (g *GroqProvider) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":       g.model,
		"messages":    messages,
		"temperature": g.temperature,
		"max_tokens":  g.maxTokens,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))

	startTime := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", models.ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	latency := time.Since(startTime)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: API error (status %d): %s", models.ErrAIUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", models.ErrAIUnavailable, err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", models.ErrAIUnavailable)
	}

	content := result.Choices[0].Message.Content

	logger.Debug("groq response",
		zap.String("model", g.model),
		zap.Duration("latency", latency),
		zap.String("response", truncate(content, 500)),
	)

	return content, nil
}
