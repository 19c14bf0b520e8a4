// Package config loads runtime configuration from a YAML file and
// MINDDB_-prefixed environment variables, with env taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when required settings are missing or
// inconsistent.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Library  LibraryConfig  `mapstructure:"library"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// CatalogConfig locates the catalog database.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// LibraryConfig locates the source documents.
type LibraryConfig struct {
	Dir string `mapstructure:"dir"`
}

// PipelineConfig tunes generation and review.
type PipelineConfig struct {
	QuestionCount        int           `mapstructure:"question_count"`
	MaxConcurrentReviews int64         `mapstructure:"max_concurrent_reviews"`
	ReviewTimeout        time.Duration `mapstructure:"review_timeout"`
	ReviewAttempts       int           `mapstructure:"review_attempts"`
	ReviewRetryDelay     time.Duration `mapstructure:"review_retry_delay"`
	DraftCooldown        time.Duration `mapstructure:"draft_cooldown"`
}

// Load reads configuration from configFile (optional) and the environment.
// With no file, defaults plus MINDDB_-prefixed env vars apply, e.g.
// MINDDB_CATALOG_DIR overrides catalog.dir.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MINDDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("minddb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/minddb")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Defaults and env vars are a complete configuration
		} else {
			return Config{}, fmt.Errorf("%w: read config: %v", ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: unmarshal config: %v", ErrInvalidConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Catalog.Dir == "" {
		return fmt.Errorf("%w: catalog.dir is required", ErrInvalidConfig)
	}
	if c.Library.Dir == "" {
		return fmt.Errorf("%w: library.dir is required", ErrInvalidConfig)
	}
	if c.Pipeline.MaxConcurrentReviews < 0 {
		return fmt.Errorf("%w: pipeline.max_concurrent_reviews must not be negative", ErrInvalidConfig)
	}
	if c.Pipeline.ReviewAttempts < 0 {
		return fmt.Errorf("%w: pipeline.review_attempts must not be negative", ErrInvalidConfig)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.dir", "./catalogs")
	v.SetDefault("library.dir", "./library")
	v.SetDefault("pipeline.question_count", 10)
	v.SetDefault("pipeline.max_concurrent_reviews", 1)
	v.SetDefault("pipeline.review_timeout", 30*time.Second)
	v.SetDefault("pipeline.review_attempts", 3)
	v.SetDefault("pipeline.review_retry_delay", 10*time.Second)
	v.SetDefault("pipeline.draft_cooldown", 60*time.Second)
}
