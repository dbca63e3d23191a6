// Package config loads examiq settings from flags, EXAMIQ_* environment
// variables and an optional .examiq.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. EXAMIQ_CLEAN_WORKERS.
const EnvPrefix = "EXAMIQ"

// ErrInvalidConfig is returned when settings fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of settings.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Clean      CleanConfig      `mapstructure:"clean"`
	Difficulty DifficultyConfig `mapstructure:"difficulty"`
	Model      ModelConfig      `mapstructure:"model"`
	Server     ServerConfig     `mapstructure:"server"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `mapstructure:"json"`
}

// DatasetConfig configures how question files are read.
type DatasetConfig struct {
	Encoding string `mapstructure:"encoding" validate:"oneof=auto utf-8 latin1"`
}

// VocabularyConfig locates the protected-term list.
type VocabularyConfig struct {
	Path       string `mapstructure:"path"`
	Encoding   string `mapstructure:"encoding" validate:"oneof=auto utf-8 latin1"`
	NoHeader   bool   `mapstructure:"no_header"`
	AllowEmpty bool   `mapstructure:"allow_empty"`
}

// CleanConfig configures the cleaning pipeline.
type CleanConfig struct {
	Column    string `mapstructure:"column" validate:"required"`
	Workers   int    `mapstructure:"workers" validate:"min=1,max=256"`
	StripHTML bool   `mapstructure:"strip_html"`
}

// DifficultyConfig configures quantile labeling.
type DifficultyConfig struct {
	LowQuantile  float64  `mapstructure:"low_quantile" validate:"gt=0,lt=1"`
	HighQuantile float64  `mapstructure:"high_quantile" validate:"gtfield=LowQuantile,lt=1"`
	ScoreColumn  string   `mapstructure:"score_column"`
	Candidates   []string `mapstructure:"score_candidates" validate:"dive,required"`
	Bins         int      `mapstructure:"bins" validate:"min=1,max=1000"`
}

// ModelConfig selects the classifier artifact: a path, or a name resolved
// through a registry index.
type ModelConfig struct {
	Path     string `mapstructure:"path"`
	Name     string `mapstructure:"name"`
	Registry string `mapstructure:"registry" validate:"required_with=Name"`
	CacheDir string `mapstructure:"cache_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	MaxBody      string        `mapstructure:"max_body" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// SetDefaults registers every key with its default value. Keys must be
// known to viper for environment variables to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("dataset.encoding", "auto")

	v.SetDefault("vocabulary.path", "")
	v.SetDefault("vocabulary.encoding", "latin1")
	v.SetDefault("vocabulary.no_header", false)
	v.SetDefault("vocabulary.allow_empty", false)

	v.SetDefault("clean.column", "Body")
	v.SetDefault("clean.workers", runtime.NumCPU())
	v.SetDefault("clean.strip_html", true)

	v.SetDefault("difficulty.low_quantile", 0.33)
	v.SetDefault("difficulty.high_quantile", 0.66)
	v.SetDefault("difficulty.score_column", "")
	v.SetDefault("difficulty.score_candidates", []string{"Score", "score", "Marks", "marks", "Points", "points"})
	v.SetDefault("difficulty.bins", 10)

	v.SetDefault("model.path", "")
	v.SetDefault("model.name", "")
	v.SetDefault("model.registry", "")
	v.SetDefault("model.cache_dir", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_body", "1MB")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{})
}

// Setup prepares v: defaults, environment binding and the config file.
// configFile may be empty to search $HOME and the working directory for
// .examiq.yaml. A missing default file is not an error.
func Setup(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(".examiq")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and values that need parsing.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, e := range verrs {
				msgs[i] = fmt.Sprintf("%s: %s", e.Namespace(), formatValidationError(e))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Server.MaxBodyBytes(); err != nil {
		return fmt.Errorf("%w: server.max_body: %w", ErrInvalidConfig, err)
	}
	return nil
}

// MaxBodyBytes parses MaxBody, e.g. "1MB" or "512KiB".
func (s ServerConfig) MaxBodyBytes() (int64, error) {
	n, err := humanize.ParseBytes(s.MaxBody)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("must be greater than zero")
	}
	return int64(n), nil
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", e.Param())
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", e.Param())
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
