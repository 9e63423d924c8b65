package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spigell/attrition/internal/attrition"
)

const (
	testEncoder = `{"kind":"onehot","feature_names_in":["OverTime"],"categories":[["No","Yes"]]}`
	testScaler  = `{"kind":"standard","feature_names_in":["Age","MonthlyIncome"],"mean":[30,5000],"scale":[10,1000]}`
	testModel   = `{"kind":"logistic_regression","n_features_in":4,"classes":[0,1],"coef":[[0.1,0.2,0.3,0.4]],"intercept":[-0.5]}`
)

func writeArtifacts(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func defaultFiles() map[string]string {
	return map[string]string{
		DefaultModelName:   testModel,
		DefaultEncoderName: testEncoder,
		DefaultScalerName:  testScaler,
	}
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	return buf.Bytes()
}

func TestStoreLoadsFromDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifacts(t, dir, defaultFiles())

	artifacts, err := NewStore(DirSource{Dir: dir}, Names{}, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if artifacts.Classifier.NumFeatures() != 4 {
		t.Fatalf("unexpected classifier width %d", artifacts.Classifier.NumFeatures())
	}
	if artifacts.Encoder.Width() != 2 || artifacts.Scaler.Width() != 2 {
		t.Fatalf("unexpected transformer widths %d/%d", artifacts.Encoder.Width(), artifacts.Scaler.Width())
	}
}

func TestStoreCustomAndCompressedNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifacts(t, dir, map[string]string{
		"clf.json":    testModel,
		"scaler.json": testScaler,
	})
	if err := os.WriteFile(filepath.Join(dir, "enc.json.gz"), gzipped(t, testEncoder), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewStore(DirSource{Dir: dir}, Names{Model: "clf.json", Encoder: "enc.json.gz"}, nil)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStoreErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		kind    error
		mention string
	}{
		{
			name:    "missing model",
			files:   map[string]string{DefaultEncoderName: testEncoder, DefaultScalerName: testScaler},
			kind:    attrition.ErrArtifactNotFound,
			mention: "model",
		},
		{
			name:    "missing scaler",
			files:   map[string]string{DefaultModelName: testModel, DefaultEncoderName: testEncoder},
			kind:    attrition.ErrArtifactNotFound,
			mention: "scaler",
		},
		{
			name:    "corrupt encoder",
			files:   map[string]string{DefaultModelName: testModel, DefaultEncoderName: "{not json", DefaultScalerName: testScaler},
			kind:    attrition.ErrDeserialization,
			mention: "encoder",
		},
		{
			name:    "unknown kind",
			files:   map[string]string{DefaultModelName: `{"kind":"svm"}`, DefaultEncoderName: testEncoder, DefaultScalerName: testScaler},
			kind:    attrition.ErrDeserialization,
			mention: "model",
		},
		{
			name:    "inconsistent arrays",
			files:   map[string]string{DefaultModelName: testModel, DefaultEncoderName: testEncoder, DefaultScalerName: `{"kind":"standard","feature_names_in":["Age"],"mean":[1,2],"scale":[1]}`},
			kind:    attrition.ErrDeserialization,
			mention: "scaler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeArtifacts(t, dir, tt.files)

			_, err := NewStore(DirSource{Dir: dir}, Names{}, nil).Load(context.Background())
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if !bytes.Contains([]byte(err.Error()), []byte(tt.mention)) {
				t.Fatalf("error %q does not name the %s artifact", err, tt.mention)
			}
		})
	}
}

func TestStoreReloadsOnEveryCall(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifacts(t, dir, defaultFiles())
	store := NewStore(DirSource{Dir: dir}, Names{}, nil)

	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, DefaultModelName)); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, attrition.ErrArtifactNotFound) {
		t.Fatalf("expected reload to notice the missing model, got %v", err)
	}
}

type countingLoader struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (l *countingLoader) Load(context.Context) (*attrition.Artifacts, error) {
	l.calls.Add(1)
	if l.fail.Load() {
		return nil, attrition.ErrArtifactNotFound
	}
	return &attrition.Artifacts{}, nil
}

func TestCachedLoadsOnce(t *testing.T) {
	t.Parallel()

	inner := &countingLoader{}
	cached := NewCached(inner)

	var wg sync.WaitGroup
	results := make([]*attrition.Artifacts, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := cached.Load(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = a
		}(i)
	}
	wg.Wait()

	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
	for _, a := range results[1:] {
		if a != results[0] {
			t.Fatalf("callers received different artifact sets")
		}
	}
}

func TestCachedDoesNotRememberFailures(t *testing.T) {
	t.Parallel()

	inner := &countingLoader{}
	inner.fail.Store(true)
	cached := NewCached(inner)

	if _, err := cached.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	inner.fail.Store(false)
	if _, err := cached.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Fatalf("expected 2 loads, got %d", got)
	}
}

func TestDirSourceRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (DirSource{Dir: t.TempDir()}).Fetch(ctx, DefaultModelName); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
