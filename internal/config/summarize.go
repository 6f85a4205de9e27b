// Package config loads the settings of a summarization run.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// then environment variables. The result is validated as a whole and any
// problem is reported as a *ConfigurationError.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"transcript-summarizer/internal/infra/completion"
	"transcript-summarizer/internal/infra/confirm"
	"transcript-summarizer/internal/infra/db"
	pkgconfig "transcript-summarizer/internal/pkg/config"
	"transcript-summarizer/internal/usecase/summarize"
)

// EnvConfigFile names the environment variable holding the YAML file path.
const EnvConfigFile = "SUMMARIZER_CONFIG"

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". Env: DATABASE_DRIVER
	Driver string `yaml:"driver"`
	// DSN is the connection string or SQLite file path. Env: DATABASE_URL
	DSN string `yaml:"dsn"`
}

// SummarizeConfig holds everything a summarization run needs.
type SummarizeConfig struct {
	// Provider is openai, claude or dry-run. Env: SUMMARIZER_PROVIDER
	Provider string `yaml:"provider"`
	// Model defaults per provider when empty. Env: SUMMARIZER_MODEL
	Model string `yaml:"model"`

	// Budgets in estimated tokens.
	ContextLimit         int `yaml:"context_limit"`
	OutputReserve        int `yaml:"output_reserve"`
	ChunkTokenBudget     int `yaml:"chunk_token_budget"`
	AutoConfirmThreshold int `yaml:"auto_confirm_threshold"`
	ChunkOutputTokens    int `yaml:"chunk_output_tokens"`

	Temperature float64 `yaml:"temperature"`

	// MaxAttempts caps failed attempts per record. 0 disables the cap.
	MaxAttempts int `yaml:"max_attempts"`

	// ConfirmMode is interactive, auto or skip. Env: SUMMARIZER_CONFIRM_MODE
	ConfirmMode string `yaml:"confirm_mode"`

	CompletionTimeout time.Duration `yaml:"completion_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	BaseURL           string        `yaml:"base_url"`

	Database DatabaseConfig `yaml:"database"`

	// KeyFile is read when no API key is set in the environment.
	KeyFile string `yaml:"key_file"`

	// LogFormat is json or text. Env: LOG_FORMAT
	LogFormat string `yaml:"log_format"`
}

// DefaultSummarizeConfig returns the defaults: OpenAI gpt-4-turbo with a
// 4096-token context, interactive confirmation and a Postgres store.
func DefaultSummarizeConfig() SummarizeConfig {
	budgets := summarize.DefaultConfig()
	timeouts := completion.DefaultConfig()

	return SummarizeConfig{
		Provider:             completion.ProviderOpenAI,
		Model:                "",
		ContextLimit:         budgets.ContextLimit,
		OutputReserve:        budgets.OutputReserve,
		ChunkTokenBudget:     budgets.ChunkTokenBudget,
		AutoConfirmThreshold: budgets.AutoConfirmThreshold,
		ChunkOutputTokens:    budgets.ChunkOutputTokens,
		Temperature:          float64(budgets.Temperature),
		MaxAttempts:          budgets.MaxAttempts,
		ConfirmMode:          confirm.ModeInteractive,
		CompletionTimeout:    timeouts.Timeout,
		RequestsPerMinute:    timeouts.RequestsPerMinute,
		Database:             DatabaseConfig{Driver: db.DriverPostgres},
		KeyFile:              ".openAI_KEY",
		LogFormat:            "json",
	}
}

// LoadSummarizeConfig resolves defaults, the YAML file at path (or
// $SUMMARIZER_CONFIG when path is empty) and environment overrides.
func LoadSummarizeConfig(path string) (*SummarizeConfig, error) {
	cfg := DefaultSummarizeConfig()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, &ConfigurationError{Field: "config_file", Err: err}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SummarizeConfig) mergeFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from the environment. Unparseable values are errors.
func (c *SummarizeConfig) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		*dst = pkgconfig.LoadEnvString(key, *dst)
	}
	num := func(key string, dst *int) {
		result := pkgconfig.LoadEnvInt(key, *dst, nil)
		if result.FallbackApplied {
			errs = append(errs, &ConfigurationError{Field: key, Err: errors.New(result.Warnings[0])})
			return
		}
		*dst = result.Value.(int)
	}

	str("SUMMARIZER_PROVIDER", &c.Provider)
	str("SUMMARIZER_MODEL", &c.Model)
	num("SUMMARIZER_CONTEXT_LIMIT", &c.ContextLimit)
	num("SUMMARIZER_OUTPUT_RESERVE", &c.OutputReserve)
	num("SUMMARIZER_CHUNK_TOKEN_BUDGET", &c.ChunkTokenBudget)
	num("SUMMARIZER_AUTO_CONFIRM_THRESHOLD", &c.AutoConfirmThreshold)
	num("SUMMARIZER_CHUNK_OUTPUT_TOKENS", &c.ChunkOutputTokens)
	num("SUMMARIZER_MAX_ATTEMPTS", &c.MaxAttempts)
	num("SUMMARIZER_REQUESTS_PER_MINUTE", &c.RequestsPerMinute)
	str("SUMMARIZER_CONFIRM_MODE", &c.ConfirmMode)
	str("SUMMARIZER_BASE_URL", &c.BaseURL)
	str("SUMMARIZER_KEY_FILE", &c.KeyFile)
	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.DSN)
	str("LOG_FORMAT", &c.LogFormat)

	if result := pkgconfig.LoadEnvFloat("SUMMARIZER_TEMPERATURE", c.Temperature, nil); result.FallbackApplied {
		errs = append(errs, &ConfigurationError{Field: "SUMMARIZER_TEMPERATURE", Err: errors.New(result.Warnings[0])})
	} else {
		c.Temperature = result.Value.(float64)
	}
	if result := pkgconfig.LoadEnvDuration("SUMMARIZER_TIMEOUT", c.CompletionTimeout, nil); result.FallbackApplied {
		errs = append(errs, &ConfigurationError{Field: "SUMMARIZER_TIMEOUT", Err: errors.New(result.Warnings[0])})
	} else {
		c.CompletionTimeout = result.Value.(time.Duration)
	}

	return errors.Join(errs...)
}

// Validate checks every field and returns all problems joined together.
func (c *SummarizeConfig) Validate() error {
	var errs []error
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, &ConfigurationError{Field: field, Err: err})
		}
	}

	check("provider", pkgconfig.ValidateOneOf(c.Provider,
		completion.ProviderOpenAI, completion.ProviderClaude, completion.ProviderDryRun))
	if c.Model == "" {
		check("model", errors.New("cannot be empty"))
	}
	check("context_limit", pkgconfig.ValidateIntRange(c.ContextLimit, 1, 2_000_000))
	check("output_reserve", pkgconfig.ValidateIntRange(c.OutputReserve, 1, c.ContextLimit))
	check("chunk_token_budget", pkgconfig.ValidateIntRange(c.ChunkTokenBudget, 1, c.ContextLimit))
	check("auto_confirm_threshold", pkgconfig.ValidateIntRange(c.AutoConfirmThreshold, 0, 100_000))
	check("chunk_output_tokens", pkgconfig.ValidateIntRange(c.ChunkOutputTokens, 1, c.ContextLimit))
	check("temperature", pkgconfig.ValidateFloatRange(c.Temperature, 0, 2))
	check("max_attempts", pkgconfig.ValidateIntRange(c.MaxAttempts, 0, 1000))
	check("confirm_mode", pkgconfig.ValidateOneOf(c.ConfirmMode,
		confirm.ModeInteractive, confirm.ModeAuto, confirm.ModeSkip))
	check("completion_timeout", pkgconfig.ValidatePositiveDuration(c.CompletionTimeout))
	check("requests_per_minute", pkgconfig.ValidateIntRange(c.RequestsPerMinute, 0, 100_000))
	check("database.driver", pkgconfig.ValidateOneOf(c.Database.Driver, db.DriverPostgres, db.DriverSQLite))
	check("log_format", pkgconfig.ValidateOneOf(c.LogFormat, "json", "text"))

	return errors.Join(errs...)
}

// Usecase returns the budgets for summarize.NewService.
func (c *SummarizeConfig) Usecase() summarize.Config {
	return summarize.Config{
		Model:                c.Model,
		ContextLimit:         c.ContextLimit,
		OutputReserve:        c.OutputReserve,
		ChunkTokenBudget:     c.ChunkTokenBudget,
		AutoConfirmThreshold: c.AutoConfirmThreshold,
		ChunkOutputTokens:    c.ChunkOutputTokens,
		Temperature:          float32(c.Temperature),
		MaxAttempts:          c.MaxAttempts,
		DryRun:               c.Provider == completion.ProviderDryRun,
	}
}

// Completion returns the client settings for completion.New.
func (c *SummarizeConfig) Completion() completion.Config {
	cc := completion.DefaultConfig()
	cc.Timeout = c.CompletionTimeout
	cc.RequestsPerMinute = c.RequestsPerMinute
	cc.BaseURL = c.BaseURL
	return cc
}

func defaultModel(provider string) string {
	switch provider {
	case completion.ProviderClaude:
		return completion.DefaultClaudeModel
	default:
		return summarize.DefaultConfig().Model
	}
}
