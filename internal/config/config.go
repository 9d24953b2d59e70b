// Package config provides configuration loading and validation for the CLI and HTTP server.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// EnvPrefix is prepended to every environment variable derived from a config key.
const EnvPrefix = "RESUME_TAILOR"

// Defaults
const (
	DefaultMaxIterations         = 3
	DefaultApprovalThreshold     = 8.0
	DefaultTemperatureAnalysis   = 0.3
	DefaultTemperatureGeneration = 0.7
	DefaultDatabaseURL           = "data/career_sync.db"
	DefaultOutputDir             = "data/outputs"
	DefaultPort                  = 8080
	DefaultTokenExpirationHours  = 24
)

// Config is the full application configuration.
type Config struct {
	Workflow WorkflowConfig `mapstructure:"workflow"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// WorkflowConfig bounds the draft/critique loop.
type WorkflowConfig struct {
	MaxIterations     int     `mapstructure:"max_iterations" validate:"gte=1,lte=5"`
	ApprovalThreshold float64 `mapstructure:"approval_threshold" validate:"gte=0,lte=10"`
}

// LLMConfig selects and tunes the text-generation backend.
type LLMConfig struct {
	Provider              string        `mapstructure:"provider" validate:"oneof=openai gemini"`
	BaseURL               string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model                 string        `mapstructure:"model"`
	APIKey                string        `mapstructure:"api_key"`
	TemperatureAnalysis   float64       `mapstructure:"temperature_analysis" validate:"gte=0,lte=1"`
	TemperatureGeneration float64       `mapstructure:"temperature_generation" validate:"gte=0,lte=1"`
	MaxTokens             int           `mapstructure:"max_tokens" validate:"gte=512,lte=8192"`
	MaxRetries            int           `mapstructure:"max_retries" validate:"gte=1,lte=10"`
	RetryBaseDelay        time.Duration `mapstructure:"retry_base_delay" validate:"gte=100ms,lte=10s"`
	Timeout               time.Duration `mapstructure:"timeout" validate:"gte=1s"`
}

// StorageConfig points at the generation history store.
type StorageConfig struct {
	DatabaseURL string `mapstructure:"database_url" validate:"required"`
}

// ExportConfig controls file output.
type ExportConfig struct {
	OutputDir  string `mapstructure:"output_dir" validate:"required"`
	PDFEnabled bool   `mapstructure:"pdf_enabled"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                 int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	JWTSecret            string `mapstructure:"jwt_secret"`
	TokenExpirationHours int    `mapstructure:"token_expiration_hours" validate:"gte=1"`
	UseBrowser           bool   `mapstructure:"use_browser"`
	RateLimitEnabled     bool   `mapstructure:"rate_limit_enabled"`
}

// LogConfig selects the logger encoding and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// New returns a viper instance carrying defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known provider variables are honoured after the prefixed one
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "QUBRID_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("storage.database_url", EnvPrefix+"_STORAGE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.jwt_secret", EnvPrefix+"_SERVER_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("server.token_expiration_hours", EnvPrefix+"_SERVER_TOKEN_EXPIRATION_HOURS", "JWT_EXPIRATION_HOURS")

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workflow.max_iterations", DefaultMaxIterations)
	v.SetDefault("workflow.approval_threshold", DefaultApprovalThreshold)

	v.SetDefault("llm.provider", string(llm.ProviderOpenAI))
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature_analysis", DefaultTemperatureAnalysis)
	v.SetDefault("llm.temperature_generation", DefaultTemperatureGeneration)
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.max_retries", llm.DefaultMaxRetries)
	v.SetDefault("llm.retry_base_delay", llm.DefaultBaseDelay)
	v.SetDefault("llm.timeout", llm.DefaultTimeout)

	v.SetDefault("storage.database_url", DefaultDatabaseURL)

	v.SetDefault("export.output_dir", DefaultOutputDir)
	v.SetDefault("export.pdf_enabled", true)

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_expiration_hours", DefaultTokenExpirationHours)
	v.SetDefault("server.use_browser", false)
	v.SetDefault("server.rate_limit_enabled", true)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads the optional config file at path, applies the environment and validates the result.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &LoadError{Message: "failed to read config file " + path, Cause: err}
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHooks()); err != nil {
		return nil, &LoadError{Message: "failed to decode config", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks every range at once and reports all offending fields.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &LoadError{Message: "failed to validate config", Cause: err}
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field: configKey(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}

// BackendConfig maps the LLM section onto the backend configuration.
func (c *Config) BackendConfig() *llm.Config {
	return &llm.Config{
		Provider:  llm.Provider(c.LLM.Provider),
		Model:     c.LLM.Model,
		BaseURL:   c.LLM.BaseURL,
		APIKey:    c.LLM.APIKey,
		Timeout:   c.LLM.Timeout,
		MaxTokens: c.LLM.MaxTokens,
	}
}

// InvokerConfig maps the retry settings onto the invoker configuration.
func (c *Config) InvokerConfig() llm.InvokerConfig {
	return llm.InvokerConfig{
		MaxRetries:     c.LLM.MaxRetries,
		BaseDelay:      c.LLM.RetryBaseDelay,
		AttemptTimeout: c.LLM.Timeout,
		MaxTokens:      c.LLM.MaxTokens,
	}
}

// configKey turns "Config.LLM.MaxTokens" into "llm.max_tokens".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
