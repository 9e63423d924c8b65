// Package artifact loads the classifier, encoder and scaler a prediction needs.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/attrition/internal/attrition"
	"github.com/spigell/attrition/internal/model"
)

const (
	DefaultDir         = "model"
	DefaultModelName   = "best_model.json"
	DefaultEncoderName = "encoder.json"
	DefaultScalerName  = "scaler.json"
)

// Names are the object names of the three artifacts within a Source.
type Names struct {
	Model   string `mapstructure:"model"`
	Encoder string `mapstructure:"encoder"`
	Scaler  string `mapstructure:"scaler"`
}

// DefaultNames returns the conventional best_model/encoder/scaler layout.
func DefaultNames() Names {
	return Names{
		Model:   DefaultModelName,
		Encoder: DefaultEncoderName,
		Scaler:  DefaultScalerName,
	}
}

func (n Names) withDefaults() Names {
	d := DefaultNames()
	if n.Model == "" {
		n.Model = d.Model
	}
	if n.Encoder == "" {
		n.Encoder = d.Encoder
	}
	if n.Scaler == "" {
		n.Scaler = d.Scaler
	}
	return n
}

// Store reads and decodes a fresh artifact set on every Load.
type Store struct {
	source Source
	names  Names
	logger *zap.Logger
}

func NewStore(source Source, names Names, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{source: source, names: names.withDefaults(), logger: logger}
}

// Load implements attrition.Loader.
func (s *Store) Load(ctx context.Context) (*attrition.Artifacts, error) {
	classifier, err := load(ctx, s, "model", s.names.Model, model.DecodeClassifier)
	if err != nil {
		return nil, err
	}

	encoder, err := load(ctx, s, "encoder", s.names.Encoder, model.DecodeEncoder)
	if err != nil {
		return nil, err
	}

	scaler, err := load(ctx, s, "scaler", s.names.Scaler, model.DecodeScaler)
	if err != nil {
		return nil, err
	}

	return &attrition.Artifacts{
		Classifier: classifier,
		Encoder:    encoder,
		Scaler:     scaler,
	}, nil
}

func load[T any](ctx context.Context, s *Store, kind, name string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	location := s.source.Location(name)

	data, err := s.source.Fetch(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return zero, fmt.Errorf("%w: %s at %s", attrition.ErrArtifactNotFound, kind, location)
		}
		return zero, fmt.Errorf("%w: reading %s from %s: %w", attrition.ErrDeserialization, kind, location, err)
	}

	data, err = gunzip(name, data)
	if err != nil {
		return zero, fmt.Errorf("%w: decompressing %s from %s: %w", attrition.ErrDeserialization, kind, location, err)
	}

	artifact, err := decode(data)
	if err != nil {
		return zero, fmt.Errorf("%w: decoding %s from %s: %w", attrition.ErrDeserialization, kind, location, err)
	}

	s.logger.Debug("artifact loaded",
		zap.String("artifact", kind),
		zap.String("location", location),
		zap.Int("bytes", len(data)),
	)

	return artifact, nil
}

// Cached loads artifacts at most once and then serves the same read-only set
// to every caller. A failed load is not remembered, so the next call retries.
type Cached struct {
	loader attrition.Loader

	mu        sync.RWMutex
	artifacts *attrition.Artifacts
}

func NewCached(loader attrition.Loader) *Cached {
	return &Cached{loader: loader}
}

func (c *Cached) Load(ctx context.Context) (*attrition.Artifacts, error) {
	c.mu.RLock()
	artifacts := c.artifacts
	c.mu.RUnlock()
	if artifacts != nil {
		return artifacts, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.artifacts != nil {
		return c.artifacts, nil
	}

	artifacts, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.artifacts = artifacts

	return artifacts, nil
}
