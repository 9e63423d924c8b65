// Package model implements the fitted preprocessing transformers and
// classifiers that attrition artifacts are decoded into.
//
// Artifacts are JSON documents with a "kind" discriminator. Array fields use
// the attribute names scikit-learn exposes after fitting (feature_names_in,
// categories, mean, scale, coef, intercept, children_left, ...), so an export
// script only has to dump those attributes.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidArtifact is returned when an artifact document is malformed or inconsistent.
	ErrInvalidArtifact = errors.New("invalid artifact")
	// ErrUnknownKind is returned for a kind discriminator this package does not implement.
	ErrUnknownKind = errors.New("unknown artifact kind")
)

// Header is the part shared by every artifact document.
type Header struct {
	Kind    string `json:"kind"`
	Version string `json:"version,omitempty"`
}

func readHeader(data []byte) (Header, error) {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if h.Kind == "" {
		return h, fmt.Errorf("%w: kind is required", ErrInvalidArtifact)
	}
	return h, nil
}

func decodeInto(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, fmt.Sprintf(format, args...))
}

// labels is a list of category labels. Numeric labels are accepted and kept
// in their shortest decimal form so they match stringified record values.
type labels []string

func (l *labels) UnmarshalJSON(data []byte) error {
	var raw []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(labels, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case json.Number:
			f, err := val.Float64()
			if err != nil {
				return err
			}
			out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(val))
		default:
			return fmt.Errorf("unsupported category label %v", v)
		}
	}
	*l = out
	return nil
}

func checkWidth(got, want int, what string) error {
	if got != want {
		return fmt.Errorf("%s: expected %d values, got %d", what, want, got)
	}
	return nil
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
