package attrition

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Encoder turns categorical values, given in FeatureNames order, into a numeric block.
type Encoder interface {
	FeatureNames() []string
	Width() int
	Transform(values []string) ([]float64, error)
}

// Scaler normalizes numerical values, given in FeatureNames order.
type Scaler interface {
	FeatureNames() []string
	Width() int
	Transform(values []float64) ([]float64, error)
}

// Classifier is the pre-trained binary attrition model.
type Classifier interface {
	NumFeatures() int
	Predict(x []float64) (int, error)
	// PredictProba returns one probability per class, class 0 first.
	PredictProba(x []float64) ([]float64, error)
}

// Artifacts bundles the three externally trained objects. They are read-only
// once loaded and may be shared between callers.
type Artifacts struct {
	Classifier Classifier
	Encoder    Encoder
	Scaler     Scaler
}

// Loader provides the artifacts for a prediction call.
type Loader interface {
	Load(ctx context.Context) (*Artifacts, error)
}

// Result is the outcome of a single prediction.
type Result struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
}

// Label renders the predicted class the way the demo prints it.
func (r Result) Label() string {
	if r.Prediction == 1 {
		return "Yes"
	}
	return "No"
}

// Predictor runs the load, engineer, validate, transform and predict steps for one record.
type Predictor struct {
	loader Loader
	logger *zap.Logger
}

func NewPredictor(loader Loader, logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{loader: loader, logger: logger}
}

// PredictAttrition scores a single record with artifacts from loader.
func PredictAttrition(ctx context.Context, loader Loader, record Record) (Result, error) {
	return NewPredictor(loader, nil).Predict(ctx, record)
}

// Predict scores the record. The record is not modified.
func (p *Predictor) Predict(ctx context.Context, record Record) (Result, error) {
	artifacts, err := p.load(ctx)
	if err != nil {
		return Result{}, err
	}

	x, err := p.vector(artifacts, record)
	if err != nil {
		return Result{}, err
	}

	if want := artifacts.Classifier.NumFeatures(); want > 0 && want != len(x) {
		return Result{}, predictionError("classifier", fmt.Errorf("feature vector has %d columns, model expects %d", len(x), want))
	}

	class, err := artifacts.Classifier.Predict(x)
	if err != nil {
		return Result{}, predictionError("predict", err)
	}

	proba, err := artifacts.Classifier.PredictProba(x)
	if err != nil {
		return Result{}, predictionError("predict_proba", err)
	}

	if class != 0 && class != 1 {
		return Result{}, predictionError("predict", fmt.Errorf("class %d is not binary", class))
	}
	if len(proba) != 2 {
		return Result{}, predictionError("predict_proba", fmt.Errorf("expected 2 class probabilities, got %d", len(proba)))
	}
	if proba[1] < 0 || proba[1] > 1 {
		return Result{}, predictionError("predict_proba", fmt.Errorf("probability %v is outside [0,1]", proba[1]))
	}

	result := Result{Prediction: class, Probability: proba[1]}

	p.logger.Info("attrition predicted",
		zap.Int("prediction", result.Prediction),
		zap.Float64("probability", result.Probability),
	)

	return result, nil
}

// FeatureVector returns the model-ready row for the record: the encoded
// categorical block followed by the scaled numerical block.
func (p *Predictor) FeatureVector(ctx context.Context, record Record) ([]float64, error) {
	artifacts, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return p.vector(artifacts, record)
}

// Schema returns the categorical and numerical feature names the artifacts were fitted on.
func (p *Predictor) Schema(ctx context.Context) (categorical, numerical []string, err error) {
	artifacts, err := p.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return artifacts.Encoder.FeatureNames(), artifacts.Scaler.FeatureNames(), nil
}

func (p *Predictor) load(ctx context.Context) (*Artifacts, error) {
	if p.loader == nil {
		return nil, errors.New("artifact loader is not configured")
	}

	artifacts, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if artifacts == nil || artifacts.Classifier == nil || artifacts.Encoder == nil || artifacts.Scaler == nil {
		return nil, fmt.Errorf("%w: incomplete artifact set", ErrDeserialization)
	}
	return artifacts, nil
}

func (p *Predictor) vector(artifacts *Artifacts, record Record) ([]float64, error) {
	categorical := artifacts.Encoder.FeatureNames()
	numerical := artifacts.Scaler.FeatureNames()

	engineered, err := Engineer(record)
	if err != nil {
		if errors.Is(err, ErrMissingFeature) {
			// Report every gap at once, not only the income field.
			if verr := Validate(record, RequiredFeatures(categorical, numerical), nil); verr != nil {
				return nil, verr
			}
		}
		return nil, err
	}

	p.logger.Debug("salary band derived",
		zap.Any("monthly_income", record[FeatureMonthlyIncome]),
		zap.Any("salary_band", engineered[FeatureSalaryBand]),
	)

	if err := Validate(engineered, categorical, numerical); err != nil {
		return nil, err
	}

	categories := make([]string, len(categorical))
	for i, name := range categorical {
		v, err := categoryValue(engineered[name])
		if err != nil {
			return nil, transformError("encoder", fmt.Errorf("%s: %w", name, err))
		}
		categories[i] = v
	}

	encoded, err := artifacts.Encoder.Transform(categories)
	if err != nil {
		return nil, transformError("encoder", err)
	}

	numbers := make([]float64, len(numerical))
	for i, name := range numerical {
		v, err := numberValue(engineered[name])
		if err != nil {
			return nil, transformError("scaler", fmt.Errorf("%s: %w", name, err))
		}
		numbers[i] = v
	}

	scaled, err := artifacts.Scaler.Transform(numbers)
	if err != nil {
		return nil, transformError("scaler", err)
	}

	x := make([]float64, 0, len(encoded)+len(scaled))
	x = append(x, encoded...)
	x = append(x, scaled...)

	p.logger.Debug("feature vector assembled",
		zap.Int("encoded_width", len(encoded)),
		zap.Int("scaled_width", len(scaled)),
	)

	return x, nil
}

// Engineer returns a copy of the record with SalaryBand derived from MonthlyIncome.
func Engineer(record Record) (Record, error) {
	raw, ok := record[FeatureMonthlyIncome]
	if !ok {
		return nil, &MissingFeatureError{Names: []string{FeatureMonthlyIncome}}
	}

	income, err := numberValue(raw)
	if err != nil {
		return nil, transformError("salary band", fmt.Errorf("%s: %w", FeatureMonthlyIncome, err))
	}

	out := record.Clone()
	out[FeatureSalaryBand] = string(SalaryBandFor(income))
	return out, nil
}
