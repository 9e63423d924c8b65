package model

import (
	"fmt"

	"github.com/spigell/attrition/internal/attrition"
)

const (
	KindStandard = "standard"
	KindMinMax   = "minmax"
	KindRobust   = "robust"
)

// DecodeScaler builds a numerical scaler from an artifact document.
func DecodeScaler(data []byte) (attrition.Scaler, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	var s interface {
		attrition.Scaler
		init() error
	}

	switch h.Kind {
	case KindStandard:
		s = &StandardScaler{WithMean: true, WithStd: true}
	case KindMinMax:
		s = &MinMaxScaler{}
	case KindRobust:
		s = &RobustScaler{}
	default:
		return nil, fmt.Errorf("%w: scaler %q", ErrUnknownKind, h.Kind)
	}

	if err := decodeInto(data, s); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// StandardScaler computes (x - mean) / scale per feature.
type StandardScaler struct {
	Features []string  `json:"feature_names_in"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
	WithMean bool      `json:"with_mean"`
	WithStd  bool      `json:"with_std"`
}

func (s *StandardScaler) init() error {
	n := len(s.Features)
	if n == 0 {
		return invalid("standard: feature_names_in is empty")
	}
	if s.WithMean && len(s.Mean) != n {
		return invalid("standard: %d features but %d means", n, len(s.Mean))
	}
	if s.WithStd && len(s.Scale) != n {
		return invalid("standard: %d features but %d scales", n, len(s.Scale))
	}
	s.Scale = nonZero(s.Scale)
	return nil
}

func (s *StandardScaler) FeatureNames() []string { return copyStrings(s.Features) }

func (s *StandardScaler) Width() int { return len(s.Features) }

func (s *StandardScaler) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(len(values), len(s.Features), "standard"); err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if s.WithMean {
			v -= s.Mean[i]
		}
		if s.WithStd {
			v /= s.Scale[i]
		}
		out[i] = v
	}
	return out, nil
}

// MinMaxScaler maps [data_min, data_max] onto feature_range.
type MinMaxScaler struct {
	Features     []string  `json:"feature_names_in"`
	DataMin      []float64 `json:"data_min"`
	DataMax      []float64 `json:"data_max"`
	FeatureRange []float64 `json:"feature_range"`
	Clip         bool      `json:"clip"`
}

func (s *MinMaxScaler) init() error {
	n := len(s.Features)
	if n == 0 {
		return invalid("minmax: feature_names_in is empty")
	}
	if len(s.DataMin) != n || len(s.DataMax) != n {
		return invalid("minmax: %d features but %d minimums and %d maximums", n, len(s.DataMin), len(s.DataMax))
	}
	if len(s.FeatureRange) == 0 {
		s.FeatureRange = []float64{0, 1}
	}
	if len(s.FeatureRange) != 2 || s.FeatureRange[0] >= s.FeatureRange[1] {
		return invalid("minmax: feature_range must be [min, max] with min < max")
	}
	return nil
}

func (s *MinMaxScaler) FeatureNames() []string { return copyStrings(s.Features) }

func (s *MinMaxScaler) Width() int { return len(s.Features) }

func (s *MinMaxScaler) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(len(values), len(s.Features), "minmax"); err != nil {
		return nil, err
	}

	lo, hi := s.FeatureRange[0], s.FeatureRange[1]
	out := make([]float64, len(values))
	for i, v := range values {
		span := s.DataMax[i] - s.DataMin[i]
		if span == 0 {
			span = 1
		}
		scaled := (v-s.DataMin[i])/span*(hi-lo) + lo
		if s.Clip {
			scaled = min(max(scaled, lo), hi)
		}
		out[i] = scaled
	}
	return out, nil
}

// RobustScaler computes (x - center) / scale, either part optional.
type RobustScaler struct {
	Features []string  `json:"feature_names_in"`
	Center   []float64 `json:"center"`
	Scale    []float64 `json:"scale"`
}

func (s *RobustScaler) init() error {
	n := len(s.Features)
	if n == 0 {
		return invalid("robust: feature_names_in is empty")
	}
	if s.Center != nil && len(s.Center) != n {
		return invalid("robust: %d features but %d centers", n, len(s.Center))
	}
	if s.Scale != nil && len(s.Scale) != n {
		return invalid("robust: %d features but %d scales", n, len(s.Scale))
	}
	s.Scale = nonZero(s.Scale)
	return nil
}

func (s *RobustScaler) FeatureNames() []string { return copyStrings(s.Features) }

func (s *RobustScaler) Width() int { return len(s.Features) }

func (s *RobustScaler) Transform(values []float64) ([]float64, error) {
	if err := checkWidth(len(values), len(s.Features), "robust"); err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if s.Center != nil {
			v -= s.Center[i]
		}
		if s.Scale != nil {
			v /= s.Scale[i]
		}
		out[i] = v
	}
	return out, nil
}

// nonZero replaces zero scales with 1 so constant features pass through unscaled.
func nonZero(scale []float64) []float64 {
	if scale == nil {
		return nil
	}
	out := make([]float64, len(scale))
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		out[i] = v
	}
	return out
}
