package ai

import (
	"errors"
	"testing"

	"github.com/selivandex/memescan/pkg/models"
)

func TestParseDecision_ValidJSON(t *testing.T) {
	content := `{"decision": "BUY", "confidence": 82, "reasoning": "Oversold with rising volume.", "riskLevel": "MEDIUM", "riskFactors": ["low liquidity"]}`

	decision, err := parseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Decision != models.DecisionBuy {
		t.Errorf("expected BUY, got %s", decision.Decision)
	}
	if decision.Confidence != 82 {
		t.Errorf("expected confidence 82, got %d", decision.Confidence)
	}
	if decision.RiskLevel != models.RiskMedium {
		t.Errorf("expected MEDIUM, got %s", decision.RiskLevel)
	}
	if len(decision.RiskFactors) != 1 {
		t.Errorf("expected 1 risk factor, got %d", len(decision.RiskFactors))
	}
}

func TestParseDecision_MarkdownFenced(t *testing.T) {
	content := "Here is my analysis:\n```json\n{\"decision\": \"HOLD\", \"confidence\": 55, \"reasoning\": \"Mixed signals.\", \"riskLevel\": \"LOW\"}\n```\nLet me know if you need more."

	decision, err := parseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Decision != models.DecisionHold {
		t.Errorf("expected HOLD, got %s", decision.Decision)
	}
}

func TestParseDecision_EmbeddedInProse(t *testing.T) {
	content := `Based on the data, {"decision": "NO_BUY", "confidence": 65, "reasoning": "Overbought.", "riskLevel": "HIGH"} is my verdict.`

	decision, err := parseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Decision != models.DecisionNoBuy {
		t.Errorf("expected NO_BUY, got %s", decision.Decision)
	}
}

func TestParseDecision_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain prose", "I think you should buy this"},
		{"empty", ""},
		{"truncated json", `{"decision": "BUY", "confidence":`},
		{"invalid decision", `{"decision": "MAYBE", "confidence": 50, "reasoning": "x", "riskLevel": "LOW"}`},
		{"confidence too high", `{"decision": "BUY", "confidence": 150, "reasoning": "x", "riskLevel": "LOW"}`},
		{"confidence negative", `{"decision": "BUY", "confidence": -1, "reasoning": "x", "riskLevel": "LOW"}`},
		{"missing reasoning", `{"decision": "BUY", "confidence": 50, "riskLevel": "LOW"}`},
		{"invalid risk level", `{"decision": "BUY", "confidence": 50, "reasoning": "x", "riskLevel": "SEVERE"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDecision(tt.content)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, models.ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestParseDecision_NormalizesCase(t *testing.T) {
	content := `{"decision": "buy", "confidence": 70, "reasoning": "x", "riskLevel": "medium"}`

	decision, err := parseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Decision != models.DecisionBuy {
		t.Errorf("expected BUY, got %s", decision.Decision)
	}
	if decision.RiskLevel != models.RiskMedium {
		t.Errorf("expected MEDIUM, got %s", decision.RiskLevel)
	}
}

func TestParseDecision_ExtremeCollapsesToHigh(t *testing.T) {
	content := `{"decision": "NO_BUY", "confidence": 90, "reasoning": "Rug risk.", "riskLevel": "EXTREME"}`

	decision, err := parseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.RiskLevel != models.RiskHigh {
		t.Errorf("expected HIGH, got %s", decision.RiskLevel)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounded", `before {"a": 1} after`, `{"a": 1}`},
		{"no json", "just text", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
