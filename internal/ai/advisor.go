package ai

import (
	"context"

	"github.com/spigell/attrition/internal/attrition"
)

// Advice is a model-written explanation of an attrition prediction.
type Advice struct {
	Summary        string   `json:"summary"`
	RiskFactors    []string `json:"risk_factors,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	Raw            string   `json:"-"`
}

// Advisor explains a prediction for a scored record. It never changes the prediction.
type Advisor interface {
	Advise(ctx context.Context, record attrition.Record, result attrition.Result) (*Advice, error)
}
