package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"resumatch/internal/errors"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMATCH_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	source string // config file used, empty when none was found
}

// ScoringConfig holds settings for the heuristic scoring pipeline
type ScoringConfig struct {
	// KnowledgeFile replaces the built-in role tables when set
	KnowledgeFile string `mapstructure:"knowledgeFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"readTimeout"`
	WriteTimeout  time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout   time.Duration `mapstructure:"idleTimeout"`
	MaxUploadSize int64         `mapstructure:"maxUploadSize"`
	MaxFiles      int           `mapstructure:"maxFiles"`

	TLS TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Mode          string        `mapstructure:"mode"` // "disabled" or "server"
	CertFile      string        `mapstructure:"certFile"`
	KeyFile       string        `mapstructure:"keyFile"`
	MinVersion    string        `mapstructure:"minVersion"` // "1.2" or "1.3"
	AutoReload    bool          `mapstructure:"autoReload"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled            bool             `mapstructure:"enabled"`
	ServiceName        string           `mapstructure:"serviceName"`
	ServiceVersion     string           `mapstructure:"serviceVersion"`
	ServiceInstance    string           `mapstructure:"serviceInstance"`
	ConsoleOutput      bool             `mapstructure:"consoleOutput"`
	PrettyPrint        bool             `mapstructure:"prettyPrint"`
	SampleRate         float64          `mapstructure:"sampleRate"`
	CollectionInterval time.Duration    `mapstructure:"collectionInterval"`
	Prometheus         PrometheusConfig `mapstructure:"prometheus"`
	OTLP               OTLPConfig       `mapstructure:"otlp"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// searchPaths are tried in order for config.yaml
var searchPaths = []string{".", "$HOME/.config/resumatch", "/etc/resumatch"}

// LoadConfig loads configuration from defaults, config.yaml and RESUMATCH_* environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	return Load(v)
}

// Load builds a Config from a prepared viper instance. Defaults and
// environment handling are applied here so tests can pass their own viper.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("RESUMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to read config file", err)
		}
	} else {
		source = v.ConfigFileUsed()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to decode configuration", err)
	}
	config.source = source

	config.applyFallbacks()

	if err := config.loadPromptTemplates(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load prompt templates", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate reports every invalid setting at once. A missing AI API key is
// not an error: scoring works offline and advice degrades to its fallback.
func (c *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(c.AI.Timeout > 0, "AI timeout must be positive")
	check(c.Server.Port != "", "server port is required")
	check(c.Server.MaxFiles > 0, "server maxFiles must be positive")
	check(slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat), "invalid default format: %s", c.App.DefaultFormat)
	check(!c.Embedding.Enabled || c.Embedding.MaxInputChars > 0, "embedding maxInputChars must be positive")

	if c.Scoring.KnowledgeFile != "" {
		if _, err := os.Stat(c.Scoring.KnowledgeFile); err != nil {
			problems = append(problems, fmt.Errorf("knowledge file %s: %w", c.Scoring.KnowledgeFile, err))
		}
	}
	if err := c.ValidateTLSConfig(); err != nil {
		problems = append(problems, fmt.Errorf("TLS configuration error: %w", err))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Invalid configuration", stderrors.Join(problems...))
}

// applyFallbacks fills values that depend on other settings
func (c *Config) applyFallbacks() {
	if c.AI.APIKey == "" {
		// GEMINI_API_KEY is what the genai SDK itself reads
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "1"
		}
		c.Observability.ServiceInstance = c.Observability.ServiceName + "-" + host
	}

	if c.App.LogLevel == "debug" {
		c.Observability.ConsoleOutput = true
	}
}

// LogSummary logs where configuration came from and the settings that
// decide runtime behaviour. Secrets are reported only as set or unset.
func (c *Config) LogSummary(logger *errors.Logger) {
	source := c.source
	if source == "" {
		source = "defaults and environment"
	}
	logger.Info("Configuration loaded",
		"source", source,
		"ai_provider", c.AI.Provider,
		"ai_model", c.AI.Model,
		"ai_key_set", c.AI.APIKey != "",
		"embeddings", c.Embedding.Enabled,
		"embedding_model", c.Embedding.Model,
		"knowledge_file", c.Scoring.KnowledgeFile,
		"server", c.Server.Host+":"+c.Server.Port,
		"tls_mode", c.Server.TLS.Mode,
		"vault", c.Vault.Enabled,
		"observability", c.Observability.Enabled)
	if c.AI.APIKey == "" {
		logger.Warn("No Gemini API key configured; advice, feedback and skills will return fallback output")
	}
}
