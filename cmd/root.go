package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/attrition/internal/artifact"
)

const (
	app       = "attrition"
	envPrefix = "ATTRITION"
)

type Config struct {
	Artifacts *ArtifactsConfig `mapstructure:"artifacts"`
	AI        *AIConfig        `mapstructure:"ai"`
	Output    string           `mapstructure:"output"`
}

type ArtifactsConfig struct {
	Dir       string `mapstructure:"dir"`
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
	Model     string `mapstructure:"model"`
	Encoder   string `mapstructure:"encoder"`
	Scaler    string `mapstructure:"scaler"`
	Cache     bool   `mapstructure:"cache"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "attrition predicts whether an employee is likely to leave using a pre-trained model",
		// Errors are logged by the commands themselves.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return initConfig() },
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is attrition.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("model-dir", artifact.DefaultDir, "directory holding best_model, encoder and scaler artifacts")
	rootCmd.PersistentFlags().String("registry-url", "", "base URL of a model registry serving the artifacts (overrides --model-dir)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("artifacts.dir", rootCmd.PersistentFlags().Lookup("model-dir"))
	viper.BindPFlag("artifacts.url", rootCmd.PersistentFlags().Lookup("registry-url"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("artifacts.dir", artifact.DefaultDir)
	v.SetDefault("artifacts.url", "")
	v.SetDefault("artifacts.token-file", "")
	v.SetDefault("artifacts.model", artifact.DefaultModelName)
	v.SetDefault("artifacts.encoder", artifact.DefaultEncoderName)
	v.SetDefault("artifacts.scaler", artifact.DefaultScalerName)
	v.SetDefault("artifacts.cache", false)
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)
	v.SetDefault("output", outputText)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional unless given explicitly.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Artifacts == nil {
		config.Artifacts = &ArtifactsConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	switch config.Output {
	case "":
		config.Output = outputText
	case outputText, outputJSON:
	default:
		return nil, fmt.Errorf("unsupported output format %q (use %s or %s)", config.Output, outputText, outputJSON)
	}

	return config, nil
}
