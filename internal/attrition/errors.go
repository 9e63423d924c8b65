package attrition

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the prediction pipeline. Callers match them with errors.Is.
var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrDeserialization  = errors.New("artifact deserialization failed")
	ErrMissingFeature   = errors.New("missing required feature")
	ErrTransform        = errors.New("feature transform failed")
	ErrPrediction       = errors.New("prediction failed")
)

// MissingFeatureError lists every required feature absent from a record.
type MissingFeatureError struct {
	Names []string
}

func (e *MissingFeatureError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("%s: %s", ErrMissingFeature, e.Names[0])
	}
	return fmt.Sprintf("%s: %s", ErrMissingFeature, strings.Join(e.Names, ", "))
}

func (e *MissingFeatureError) Is(target error) bool {
	return target == ErrMissingFeature
}

// stageError keeps the underlying encoder/scaler/classifier error reachable
// while classifying it under one of the error kinds.
type stageError struct {
	kind  error
	stage string
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.kind, e.stage, e.err)
}

func (e *stageError) Unwrap() []error {
	return []error{e.kind, e.err}
}

func transformError(stage string, err error) error {
	return &stageError{kind: ErrTransform, stage: stage, err: err}
}

func predictionError(stage string, err error) error {
	return &stageError{kind: ErrPrediction, stage: stage, err: err}
}
