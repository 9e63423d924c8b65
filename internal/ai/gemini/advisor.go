package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/attrition/internal/ai"
	"github.com/spigell/attrition/internal/attrition"
	"github.com/spigell/attrition/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Advisor asks Gemini to explain an attrition prediction.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewAdvisor(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Advisor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Advisor) Advise(ctx context.Context, record attrition.Record, result attrition.Result) (*ai.Advice, error) {
	if record == nil {
		return nil, fmt.Errorf("record is required")
	}

	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal record payload: %w", err)
	}

	resultJSON, err := json.Marshal(map[string]any{
		"prediction":  result.Prediction,
		"label":       result.Label(),
		"probability": result.Probability,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result payload: %w", err)
	}

	prompt := buildPrompt(string(recordJSON), string(resultJSON))

	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	advice, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	advice.Raw = raw
	return advice, nil
}

func buildPrompt(recordJSON, resultJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Employee:\n{{RECORD_JSON}}\n\nPrediction:\n{{RESULT_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{RECORD_JSON}}", recordJSON)
	prompt = strings.ReplaceAll(prompt, "{{RESULT_JSON}}", resultJSON)
	return prompt
}

func parseResponse(raw string) (*ai.Advice, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	advice := &ai.Advice{
		Summary:        coerceString(data["summary"]),
		RiskFactors:    coerceStrings(data["risk_factors"]),
		Recommendation: coerceString(data["recommendation"]),
	}

	if advice.Summary == "" {
		return nil, fmt.Errorf("parse gemini response: summary is empty")
	}

	return advice, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}
