package artifact

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent       = "spigell/attrition"
	contentEncoding = "gzip"
	defaultTimeout  = 30 * time.Second
)

// HTTPSource reads artifacts from a model registry over HTTP: GET <BaseURL>/<name>.
type HTTPSource struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	token  string
	logger *zap.Logger
}

func NewHTTPSource(baseURL, token string, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		UserAgent: userAgent,
		token:     token,
		logger:    logger,
	}
}

func (s *HTTPSource) Location(name string) string {
	return s.BaseURL + "/" + strings.TrimLeft(name, "/")
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location(name), nil)
	if err != nil {
		return nil, err
	}

	req = s.setHeaders(req, name)

	s.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", req.URL, ErrNotFound)
	default:
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

// setHeaders asks for JSON unless the object itself is a gzip file.
func (s *HTTPSource) setHeaders(req *http.Request, name string) *http.Request {
	if s.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.token))
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	if strings.HasSuffix(name, ".gz") {
		req.Header.Set("Accept", "application/gzip, application/octet-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	return req
}
