package artifact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spigell/attrition/internal/attrition"
)

// headers remembers the request headers the registry saw last.
type headers struct {
	mu   sync.Mutex
	last http.Header
}

func (h *headers) Get(key string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last.Get(key)
}

func newRegistry(t *testing.T, files map[string]string, compressed map[string][]byte) (*httptest.Server, *headers) {
	t.Helper()

	seen := &headers{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.mu.Lock()
		seen.last = r.Header.Clone()
		seen.mu.Unlock()

		name := strings.TrimPrefix(r.URL.Path, "/models/")

		if data, ok := compressed[name]; ok {
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(data)
			return
		}
		if content, ok := files[name]; ok {
			w.Write([]byte(content))
			return
		}
		if name == "broken.json" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv, seen
}

func TestHTTPSourceLoadsArtifacts(t *testing.T) {
	t.Parallel()

	srv, header := newRegistry(t,
		map[string]string{DefaultModelName: testModel, DefaultScalerName: testScaler},
		map[string][]byte{DefaultEncoderName: gzipped(t, testEncoder)},
	)

	source := NewHTTPSource(srv.URL+"/models/", "secret", nil)
	if _, err := NewStore(source, Names{}, nil).Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := header.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
	if got := header.Get("User-Agent"); got != userAgent {
		t.Fatalf("unexpected User-Agent %q", got)
	}
}

func TestHTTPSourceWithoutToken(t *testing.T) {
	t.Parallel()

	srv, header := newRegistry(t, map[string]string{DefaultModelName: testModel}, nil)

	if _, err := NewHTTPSource(srv.URL+"/models", "", nil).Fetch(context.Background(), DefaultModelName); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := header.Get("Authorization"); got != "" {
		t.Fatalf("expected no Authorization header, got %q", got)
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Parallel()

	srv, _ := newRegistry(t, map[string]string{DefaultModelName: testModel, DefaultEncoderName: testEncoder}, nil)
	source := NewHTTPSource(srv.URL+"/models", "", nil)

	if _, err := NewStore(source, Names{}, nil).Load(context.Background()); !errors.Is(err, attrition.ErrArtifactNotFound) {
		t.Fatalf("expected not found for the scaler, got %v", err)
	}

	_, err := NewStore(source, Names{Model: "broken.json"}, nil).Load(context.Background())
	if !errors.Is(err, attrition.ErrDeserialization) || errors.Is(err, attrition.ErrArtifactNotFound) {
		t.Fatalf("expected a non not-found load failure, got %v", err)
	}
}

func TestHTTPSourceLocation(t *testing.T) {
	t.Parallel()

	source := NewHTTPSource("https://registry.example.com/attrition/", "", nil)
	if got := source.Location("/encoder.json"); got != "https://registry.example.com/attrition/encoder.json" {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestHTTPSourceAcceptFollowsName(t *testing.T) {
	t.Parallel()

	srv, header := newRegistry(t, map[string]string{
		DefaultModelName: testModel,
		"encoder.json.gz": string(gzipped(t, testEncoder)),
	}, nil)
	source := NewHTTPSource(srv.URL+"/models", "", nil)

	if _, err := source.Fetch(context.Background(), DefaultModelName); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := header.Get("Accept"); got != "application/json" {
		t.Fatalf("Accept for a json artifact = %q", got)
	}

	if _, err := source.Fetch(context.Background(), "encoder.json.gz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := header.Get("Accept"); strings.Contains(got, "json") || !strings.Contains(got, "application/gzip") {
		t.Fatalf("Accept for a gzip artifact = %q", got)
	}
}
