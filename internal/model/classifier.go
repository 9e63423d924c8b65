package model

import (
	"fmt"
	"math"

	"github.com/spigell/attrition/internal/attrition"
)

const (
	KindLogisticRegression = "logistic_regression"
	KindDecisionTree       = "decision_tree"
	KindRandomForest       = "random_forest"
	KindGradientBoosting   = "gradient_boosting"
)

const defaultThreshold = 0.5

type classifier interface {
	attrition.Classifier
	init() error
}

// DecodeClassifier builds a binary classifier from an artifact document.
func DecodeClassifier(data []byte) (attrition.Classifier, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	var c classifier
	switch h.Kind {
	case KindLogisticRegression:
		c = &LogisticRegression{}
	case KindDecisionTree:
		c = &DecisionTree{}
	case KindRandomForest:
		c = &RandomForest{}
	case KindGradientBoosting:
		c = &GradientBoosting{}
	default:
		return nil, fmt.Errorf("%w: classifier %q", ErrUnknownKind, h.Kind)
	}

	if err := decodeInto(data, c); err != nil {
		return nil, err
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

// binary holds what every classifier shares: the input width, the class
// labels and the cut-off on P(class=1). The cut-off is "decision_threshold";
// "threshold" is reserved for tree split values.
type binary struct {
	NFeatures         int      `json:"n_features_in"`
	Classes           []int    `json:"classes"`
	DecisionThreshold *float64 `json:"decision_threshold,omitempty"`
}

func (b *binary) initBinary(kind string) error {
	if b.NFeatures <= 0 {
		return invalid("%s: n_features_in must be positive", kind)
	}
	if len(b.Classes) == 0 {
		b.Classes = []int{0, 1}
	}
	if len(b.Classes) != 2 || b.Classes[0] != 0 || b.Classes[1] != 1 {
		return invalid("%s: classes must be [0, 1], got %v", kind, b.Classes)
	}
	if b.DecisionThreshold == nil {
		t := defaultThreshold
		b.DecisionThreshold = &t
	}
	if *b.DecisionThreshold < 0 || *b.DecisionThreshold > 1 {
		return invalid("%s: decision_threshold %v is outside [0,1]", kind, *b.DecisionThreshold)
	}
	return nil
}

func (b *binary) NumFeatures() int { return b.NFeatures }

// decide maps P(class=1) to a class. Ties go to class 0, as argmax does.
func (b *binary) decide(p float64) int {
	if p > *b.DecisionThreshold {
		return 1
	}
	return 0
}

func (b *binary) check(x []float64) error {
	return checkWidth(len(x), b.NFeatures, "classifier input")
}

func pair(p float64) []float64 {
	p = min(max(p, 0), 1)
	return []float64{1 - p, p}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// LogisticRegression is a linear model with a logistic link.
type LogisticRegression struct {
	binary
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func (m *LogisticRegression) init() error {
	if err := m.initBinary(KindLogisticRegression); err != nil {
		return err
	}
	if len(m.Coef) != 1 || len(m.Coef[0]) != m.NFeatures {
		return invalid("logistic_regression: coef must be one row of %d weights", m.NFeatures)
	}
	if len(m.Intercept) != 1 {
		return invalid("logistic_regression: intercept must hold one value")
	}
	return nil
}

func (m *LogisticRegression) probability(x []float64) float64 {
	z := m.Intercept[0]
	for i, w := range m.Coef[0] {
		z += w * x[i]
	}
	return sigmoid(z)
}

func (m *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if err := m.check(x); err != nil {
		return nil, err
	}
	return pair(m.probability(x)), nil
}

func (m *LogisticRegression) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.decide(proba[1]), nil
}

// DecisionTree is a single classification tree; leaves hold class counts.
type DecisionTree struct {
	binary
	Tree
}

func (m *DecisionTree) init() error {
	if err := m.initBinary(KindDecisionTree); err != nil {
		return err
	}
	return m.Tree.init(m.NFeatures, 2)
}

func (m *DecisionTree) PredictProba(x []float64) ([]float64, error) {
	if err := m.check(x); err != nil {
		return nil, err
	}
	return pair(m.Tree.classOne(x)), nil
}

func (m *DecisionTree) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.decide(proba[1]), nil
}

// RandomForest averages the class probabilities of its trees.
type RandomForest struct {
	binary
	Estimators []Tree `json:"estimators"`
}

func (m *RandomForest) init() error {
	if err := m.initBinary(KindRandomForest); err != nil {
		return err
	}
	if len(m.Estimators) == 0 {
		return invalid("random_forest: no estimators")
	}
	for i := range m.Estimators {
		if err := m.Estimators[i].init(m.NFeatures, 2); err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
	}
	return nil
}

func (m *RandomForest) PredictProba(x []float64) ([]float64, error) {
	if err := m.check(x); err != nil {
		return nil, err
	}
	var sum float64
	for i := range m.Estimators {
		sum += m.Estimators[i].classOne(x)
	}
	return pair(sum / float64(len(m.Estimators))), nil
}

func (m *RandomForest) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.decide(proba[1]), nil
}

// GradientBoosting sums regression trees on the log-odds scale.
type GradientBoosting struct {
	binary
	Init         float64 `json:"init"`
	LearningRate float64 `json:"learning_rate"`
	Estimators   []Tree  `json:"estimators"`
}

func (m *GradientBoosting) init() error {
	if err := m.initBinary(KindGradientBoosting); err != nil {
		return err
	}
	if m.LearningRate <= 0 {
		return invalid("gradient_boosting: learning_rate must be positive")
	}
	if len(m.Estimators) == 0 {
		return invalid("gradient_boosting: no estimators")
	}
	for i := range m.Estimators {
		if err := m.Estimators[i].init(m.NFeatures, 1); err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
	}
	return nil
}

func (m *GradientBoosting) PredictProba(x []float64) ([]float64, error) {
	if err := m.check(x); err != nil {
		return nil, err
	}
	raw := m.Init
	for i := range m.Estimators {
		raw += m.LearningRate * m.Estimators[i].leaf(x)[0]
	}
	return pair(sigmoid(raw)), nil
}

func (m *GradientBoosting) Predict(x []float64) (int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return m.decide(proba[1]), nil
}
