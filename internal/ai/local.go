package ai

import (
	"bytes"
	"context"
	"encoding/json"
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
	localAPIURL       = "http://localhost:11434/v1/chat/completions"
	localDefaultModel = "llama3.1:8b"
)

// LocalProvider implements the secondary fallback model against an
// Ollama-compatible endpoint. No API key required; enablement depends
// only on configuration.
type LocalProvider struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	enabled     bool
	client      *http.Client
}

// NewLocalProvider creates new local model provider
func NewLocalProvider(cfg config.AIProviderConfig, policy config.AIConfig) *LocalProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = localAPIURL
	}
	model := cfg.Model
	if model == "" {
		model = localDefaultModel
	}

	return &LocalProvider{
		baseURL:     baseURL,
		model:       model,
		temperature: policy.Temperature,
		maxTokens:   policy.MaxTokens,
		enabled:     cfg.Enabled,
		client: &http.Client{
			Timeout: policy.RequestTimeout,
		},
	}
}

func (l *LocalProvider) Name() string {
	return l.model
}

func (l *LocalProvider) IsEnabled() bool {
	return l.enabled
}

// Decide queries the local model once. No corrective retry here: by the
// time the chain reaches this provider the rule-based fallback is one
// step away, a second slow local call is not worth it.
func (l *LocalProvider) Decide(ctx context.Context, req *Request) (*RawDecision, error) {
	reqBody := map[string]interface{}{
		"model": l.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(req)},
		},
		"temperature": l.temperature,
		"max_tokens":  l.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", l.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", models.ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API error (status %d): %s", models.ErrAIUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", models.ErrAIUnavailable, err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", models.ErrAIUnavailable)
	}

	content := result.Choices[0].Message.Content

	logger.Debug("local model response",
		zap.String("model", l.model),
		zap.Duration("latency", time.Since(startTime)),
		zap.String("response", truncate(content, 500)),
	)

	return parseDecision(content)
}
