package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/selivandex/memescan/pkg/models"
)

var codeBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// extractJSON extracts JSON from text that might contain markdown or extra content
func extractJSON(text string) string {
	matches := codeBlockRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	return strings.TrimSpace(text)
}

// parseDecision parses a model response into a RawDecision. Any
// malformed JSON, unknown enum value, or out-of-range confidence is a
// models.ErrParse so the analyzer can fall through to the next provider.
func parseDecision(content string) (*RawDecision, error) {
	jsonStr := extractJSON(content)

	var response struct {
		Decision    string   `json:"decision"`
		Confidence  int      `json:"confidence"`
		Reasoning   string   `json:"reasoning"`
		RiskLevel   string   `json:"riskLevel"`
		RiskFactors []string `json:"riskFactors"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &response); err != nil {
		return nil, fmt.Errorf("%w: unmarshal failed: %v (content: %s)", models.ErrParse, err, truncate(jsonStr, 200))
	}

	decision := models.Decision(strings.ToUpper(strings.TrimSpace(response.Decision)))
	if !models.ValidDecision(decision) {
		return nil, fmt.Errorf("%w: invalid decision %q", models.ErrParse, response.Decision)
	}

	if response.Confidence < 0 || response.Confidence > 100 {
		return nil, fmt.Errorf("%w: confidence %d out of range", models.ErrParse, response.Confidence)
	}

	if response.Reasoning == "" {
		return nil, fmt.Errorf("%w: missing reasoning", models.ErrParse)
	}

	riskLevel := models.RiskLevel(strings.ToUpper(strings.TrimSpace(response.RiskLevel)))
	// Some models report EXTREME for the worst tokens; collapse it.
	if riskLevel == "EXTREME" {
		riskLevel = models.RiskHigh
	}
	if !models.ValidRiskLevel(riskLevel) {
		return nil, fmt.Errorf("%w: invalid risk level %q", models.ErrParse, response.RiskLevel)
	}

	return &RawDecision{
		Decision:    decision,
		Confidence:  response.Confidence,
		Reasoning:   response.Reasoning,
		RiskLevel:   riskLevel,
		RiskFactors: response.RiskFactors,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
