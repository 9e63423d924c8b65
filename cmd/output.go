package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spigell/attrition/internal/ai"
	"github.com/spigell/attrition/internal/attrition"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type report struct {
	Prediction  int        `json:"prediction"`
	Probability float64    `json:"probability"`
	Advice      *ai.Advice `json:"advice,omitempty"`
}

func writeResult(w io.Writer, format string, result attrition.Result, advice *ai.Advice) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			Prediction:  result.Prediction,
			Probability: result.Probability,
			Advice:      advice,
		})
	}

	fmt.Fprintf(w, "Prediction: %s\n", result.Label())
	fmt.Fprintf(w, "Probability of attrition: %.2f\n", result.Probability)

	if advice != nil {
		fmt.Fprintf(w, "\nSummary: %s\n", advice.Summary)
		if len(advice.RiskFactors) > 0 {
			fmt.Fprintf(w, "Risk factors: %s\n", strings.Join(advice.RiskFactors, ", "))
		}
		if advice.Recommendation != "" {
			fmt.Fprintf(w, "Recommendation: %s\n", advice.Recommendation)
		}
	}

	return nil
}

func writeRecord(w io.Writer, record attrition.Record) {
	fmt.Fprintln(w, "Input features:")
	for _, k := range sortedKeys(record) {
		fmt.Fprintf(w, "  %s: %v\n", k, record[k])
	}
	fmt.Fprintln(w)
}

// sortedKeys renders a record deterministically for the demo output.
func sortedKeys(record attrition.Record) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
