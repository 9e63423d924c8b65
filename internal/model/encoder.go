package model

import (
	"fmt"

	"github.com/spigell/attrition/internal/attrition"
)

const (
	KindOneHot  = "onehot"
	KindOrdinal = "ordinal"
)

// DecodeEncoder builds a categorical encoder from an artifact document.
func DecodeEncoder(data []byte) (attrition.Encoder, error) {
	h, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	switch h.Kind {
	case KindOneHot:
		var e OneHotEncoder
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		if err := e.init(); err != nil {
			return nil, err
		}
		return &e, nil
	case KindOrdinal:
		var e OrdinalEncoder
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		if err := e.init(); err != nil {
			return nil, err
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("%w: encoder %q", ErrUnknownKind, h.Kind)
	}
}

// OneHotEncoder emits one indicator column per known category of each feature.
type OneHotEncoder struct {
	Features      []string `json:"feature_names_in"`
	Categories    []labels `json:"categories"`
	HandleUnknown string   `json:"handle_unknown"`
	Drop          string   `json:"drop"`

	index   []map[string]int
	dropped []int
	width   int
}

func (e *OneHotEncoder) init() error {
	if len(e.Features) == 0 {
		return invalid("onehot: feature_names_in is empty")
	}
	if len(e.Categories) != len(e.Features) {
		return invalid("onehot: %d features but %d category lists", len(e.Features), len(e.Categories))
	}

	switch e.HandleUnknown {
	case "":
		e.HandleUnknown = "error"
	case "error", "ignore":
	default:
		return invalid("onehot: unsupported handle_unknown %q", e.HandleUnknown)
	}

	switch e.Drop {
	case "":
		e.Drop = "none"
	case "none", "first", "if_binary":
	default:
		return invalid("onehot: unsupported drop %q", e.Drop)
	}

	e.index = make([]map[string]int, len(e.Features))
	e.dropped = make([]int, len(e.Features))
	e.width = 0

	for i, cats := range e.Categories {
		if len(cats) == 0 {
			return invalid("onehot: feature %q has no categories", e.Features[i])
		}
		idx := make(map[string]int, len(cats))
		for j, c := range cats {
			if _, dup := idx[c]; dup {
				return invalid("onehot: feature %q lists category %q twice", e.Features[i], c)
			}
			idx[c] = j
		}
		e.index[i] = idx

		e.dropped[i] = -1
		if e.Drop == "first" || (e.Drop == "if_binary" && len(cats) == 2) {
			e.dropped[i] = 0
		}

		e.width += len(cats)
		if e.dropped[i] >= 0 {
			e.width--
		}
	}

	return nil
}

func (e *OneHotEncoder) FeatureNames() []string { return copyStrings(e.Features) }

func (e *OneHotEncoder) Width() int { return e.width }

func (e *OneHotEncoder) Transform(values []string) ([]float64, error) {
	if err := checkWidth(len(values), len(e.Features), "onehot"); err != nil {
		return nil, err
	}

	out := make([]float64, 0, e.width)
	for i, v := range values {
		cats := e.Categories[i]
		pos, known := e.index[i][v]
		if !known && e.HandleUnknown == "error" {
			return nil, fmt.Errorf("onehot: unknown category %q for feature %q", v, e.Features[i])
		}

		for j := range cats {
			if j == e.dropped[i] {
				continue
			}
			if known && j == pos {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}

	return out, nil
}

// OrdinalEncoder maps each category to its position in the fitted vocabulary.
type OrdinalEncoder struct {
	Features     []string `json:"feature_names_in"`
	Categories   []labels `json:"categories"`
	UnknownValue *float64 `json:"unknown_value,omitempty"`

	index []map[string]int
}

func (e *OrdinalEncoder) init() error {
	if len(e.Features) == 0 {
		return invalid("ordinal: feature_names_in is empty")
	}
	if len(e.Categories) != len(e.Features) {
		return invalid("ordinal: %d features but %d category lists", len(e.Features), len(e.Categories))
	}

	e.index = make([]map[string]int, len(e.Features))
	for i, cats := range e.Categories {
		idx := make(map[string]int, len(cats))
		for j, c := range cats {
			if _, dup := idx[c]; dup {
				return invalid("ordinal: feature %q lists category %q twice", e.Features[i], c)
			}
			idx[c] = j
		}
		e.index[i] = idx
	}
	return nil
}

func (e *OrdinalEncoder) FeatureNames() []string { return copyStrings(e.Features) }

func (e *OrdinalEncoder) Width() int { return len(e.Features) }

func (e *OrdinalEncoder) Transform(values []string) ([]float64, error) {
	if err := checkWidth(len(values), len(e.Features), "ordinal"); err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		pos, ok := e.index[i][v]
		switch {
		case ok:
			out[i] = float64(pos)
		case e.UnknownValue != nil:
			out[i] = *e.UnknownValue
		default:
			return nil, fmt.Errorf("ordinal: unknown category %q for feature %q", v, e.Features[i])
		}
	}
	return out, nil
}

// Categories returns the fitted vocabulary per feature, used to offer choices interactively.
func Categories(e attrition.Encoder) map[string][]string {
	var (
		names []string
		cats  []labels
	)
	switch enc := e.(type) {
	case *OneHotEncoder:
		names, cats = enc.Features, enc.Categories
	case *OrdinalEncoder:
		names, cats = enc.Features, enc.Categories
	default:
		return nil
	}

	out := make(map[string][]string, len(names))
	for i, name := range names {
		out[name] = copyStrings(cats[i])
	}
	return out
}
