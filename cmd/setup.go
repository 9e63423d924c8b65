package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/attrition/internal/ai"
	"github.com/spigell/attrition/internal/ai/gemini"
	"github.com/spigell/attrition/internal/artifact"
	"github.com/spigell/attrition/internal/attrition"
	"github.com/spigell/attrition/internal/logger"
	"github.com/spigell/attrition/internal/secrets"
)

// session holds what every command needs: the logger and the decoded config.
type session struct {
	logger *zap.Logger
	config *Config
}

func newSession() (*session, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Error("getting a config", zap.Error(err))
		return nil, err
	}

	log.Debug("starting", zap.String("version", version), zap.Any("artifacts", config.Artifacts))

	return &session{logger: log, config: config}, nil
}

// newLoader builds the artifact loader described by the config: a registry
// when a URL is set, the model directory otherwise.
func newLoader(cfg *ArtifactsConfig, log *zap.Logger) (attrition.Loader, error) {
	names := artifact.Names{Model: cfg.Model, Encoder: cfg.Encoder, Scaler: cfg.Scaler}

	var (
		source   artifact.Source
		location string
	)

	if url := strings.TrimSpace(cfg.URL); url != "" {
		token, err := secrets.Optional(secrets.Source{
			Name: "registry token",
			File: cfg.TokenFile,
			Env:  envPrefix + "_REGISTRY_TOKEN",
		})
		if err != nil {
			return nil, err
		}
		source = artifact.NewHTTPSource(url, token, log)
		location = url
	} else {
		dir := strings.TrimSpace(cfg.Dir)
		if dir == "" {
			dir = artifact.DefaultDir
		}
		source = artifact.DirSource{Dir: dir}
		location = dir
	}

	var loader attrition.Loader = artifact.NewStore(source, names, logger.WithArtifacts(log, location))
	if cfg.Cache {
		loader = artifact.NewCached(loader)
	}

	return loader, nil
}

func newAdvisor(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Advisor, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("ai is disabled (set ai.enabled in the config)")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	geminiCfg := cfg.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: geminiCfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithAI(log, "gemini", geminiCfg.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, aiLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAdvisor(generator, geminiCfg.MaxLogLength, aiLogger), nil
}
