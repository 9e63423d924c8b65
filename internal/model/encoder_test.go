package model

import (
	"errors"
	"reflect"
	"testing"
)

func mustEncoder(t *testing.T, doc string) *OneHotEncoder {
	t.Helper()

	enc, err := DecodeEncoder([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	oh, ok := enc.(*OneHotEncoder)
	if !ok {
		t.Fatalf("expected *OneHotEncoder, got %T", enc)
	}
	return oh
}

func TestOneHotTransform(t *testing.T) {
	t.Parallel()

	enc := mustEncoder(t, `{
		"kind": "onehot",
		"feature_names_in": ["OverTime", "SalaryBand"],
		"categories": [["No", "Yes"], ["High", "Low", "Medium", "Very High"]]
	}`)

	if enc.Width() != 6 {
		t.Fatalf("width = %d, want 6", enc.Width())
	}

	got, err := enc.Transform([]string{"Yes", "Medium"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []float64{0, 1, 0, 0, 1, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Transform = %v, want %v", got, want)
	}

	if _, err := enc.Transform([]string{"Maybe", "Low"}); err == nil {
		t.Fatalf("expected error for unknown category")
	}
	if _, err := enc.Transform([]string{"Yes"}); err == nil {
		t.Fatalf("expected error for short input")
	}
}

func TestOneHotIgnoreUnknownAndDrop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		drop  string
		in    []string
		want  []float64
		width int
	}{
		{name: "none", drop: "none", in: []string{"Yes", "Divorced"}, want: []float64{0, 1, 1, 0, 0}, width: 5},
		{name: "first", drop: "first", in: []string{"Yes", "Single"}, want: []float64{1, 0, 1}, width: 3},
		{name: "if_binary", drop: "if_binary", in: []string{"No", "Married"}, want: []float64{0, 0, 1, 0}, width: 4},
		{name: "unknown is all zeros", drop: "none", in: []string{"Maybe", "Widowed"}, want: []float64{0, 0, 0, 0, 0}, width: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc := mustEncoder(t, `{
				"kind": "onehot",
				"feature_names_in": ["OverTime", "MaritalStatus"],
				"categories": [["No", "Yes"], ["Divorced", "Married", "Single"]],
				"handle_unknown": "ignore",
				"drop": "`+tt.drop+`"
			}`)

			if enc.Width() != tt.width {
				t.Fatalf("width = %d, want %d", enc.Width(), tt.width)
			}
			got, err := enc.Transform(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Transform = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrdinalTransform(t *testing.T) {
	t.Parallel()

	enc, err := DecodeEncoder([]byte(`{
		"kind": "ordinal",
		"feature_names_in": ["BusinessTravel", "JobLevel"],
		"categories": [["Non-Travel", "Travel_Frequently", "Travel_Rarely"], [1, 2, 3]]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := enc.Transform([]string{"Travel_Rarely", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []float64{2, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Transform = %v, want %v", got, want)
	}
	if _, err := enc.Transform([]string{"Sometimes", "2"}); err == nil {
		t.Fatalf("expected error for unknown category")
	}

	withUnknown, err := DecodeEncoder([]byte(`{"kind":"ordinal","feature_names_in":["A"],"categories":[["x"]],"unknown_value":-1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err = withUnknown.Transform([]string{"y"})
	if err != nil || got[0] != -1 {
		t.Fatalf("expected unknown_value, got %v, %v", got, err)
	}
}

func TestDecodeEncoderRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not json":           `[`,
		"no kind":            `{"feature_names_in":["A"]}`,
		"no features":        `{"kind":"onehot","feature_names_in":[],"categories":[]}`,
		"length mismatch":    `{"kind":"onehot","feature_names_in":["A","B"],"categories":[["x"]]}`,
		"empty categories":   `{"kind":"onehot","feature_names_in":["A"],"categories":[[]]}`,
		"duplicate category": `{"kind":"onehot","feature_names_in":["A"],"categories":[["x","x"]]}`,
		"bad handle_unknown": `{"kind":"onehot","feature_names_in":["A"],"categories":[["x"]],"handle_unknown":"warn"}`,
		"bad drop":           `{"kind":"onehot","feature_names_in":["A"],"categories":[["x"]],"drop":"last"}`,
		"bad label":          `{"kind":"onehot","feature_names_in":["A"],"categories":[[{"x":1}]]}`,
		"ordinal mismatch":   `{"kind":"ordinal","feature_names_in":["A"],"categories":[]}`,
	}

	for name, doc := range tests {
		if _, err := DecodeEncoder([]byte(doc)); !errors.Is(err, ErrInvalidArtifact) {
			t.Fatalf("%s: expected ErrInvalidArtifact, got %v", name, err)
		}
	}

	if _, err := DecodeEncoder([]byte(`{"kind":"target"}`)); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()

	enc := mustEncoder(t, `{"kind":"onehot","feature_names_in":["OverTime"],"categories":[["No","Yes"]]}`)

	vocab := Categories(enc)
	if !reflect.DeepEqual(vocab, map[string][]string{"OverTime": {"No", "Yes"}}) {
		t.Fatalf("unexpected vocabulary: %v", vocab)
	}

	vocab["OverTime"][0] = "changed"
	if enc.Categories[0][0] != "No" {
		t.Fatalf("vocabulary shares memory with the encoder")
	}
}
