package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/selivandex/memescan/pkg/models"
)

func printRecommendations(recs []*models.Recommendation, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(recs)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 72))
	fmt.Printf("%-12s %-8s %-6s %-8s %s\n", "SYMBOL", "ACTION", "CONF", "RISK", "MODEL")
	fmt.Println(strings.Repeat("-", 72))
	for _, rec := range recs {
		fmt.Printf("%-12s %-8s %-6d %-8s %s\n",
			rec.Symbol, rec.Decision, rec.Confidence, rec.RiskLevel, rec.Model)
	}
	fmt.Println(strings.Repeat("=", 72))

	for _, rec := range recs {
		fmt.Printf("\n%s: %s\n", rec.Symbol, rec.Reasoning)
	}
}
