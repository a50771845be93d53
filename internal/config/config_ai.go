package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// AIConfig holds the text-generation service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	Temperature    float32              `mapstructure:"temperature"`
	TopK           float32              `mapstructure:"topK"`
	TopP           float32              `mapstructure:"topP"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Operation-specific configurations
	Advice   OperationAIConfig `mapstructure:"advice"`
	Feedback OperationAIConfig `mapstructure:"feedback"`
	Skills   OperationAIConfig `mapstructure:"skills"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for one advice operation.
// Nil pointers fall back to the global AIConfig values.
type OperationAIConfig struct {
	Provider        string                `mapstructure:"provider"`
	Model           string                `mapstructure:"model"`
	Timeout         *time.Duration        `mapstructure:"timeout"`
	APIKey          string                `mapstructure:"apiKey"`
	Temperature     *float32              `mapstructure:"temperature"`
	TopK            *float32              `mapstructure:"topK"`
	TopP            *float32              `mapstructure:"topP"`
	MaxOutputTokens int32                 `mapstructure:"maxOutputTokens"`
	PromptFile      string                `mapstructure:"promptFile"`
	CircuitBreaker  *CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// PromptTemplate is the content of PromptFile, filled during loading
	PromptTemplate string `mapstructure:"-"`
}

// EmbeddingConfig holds the sentence-embedding backend configuration
type EmbeddingConfig struct {
	Enabled        bool                 `mapstructure:"enabled"`
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	APIKey         string               `mapstructure:"apiKey"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxInputChars  int                  `mapstructure:"maxInputChars"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.TopK == nil {
		opCfg.TopK = &c.AI.TopK
	}
	if opCfg.TopP == nil {
		opCfg.TopP = &c.AI.TopP
	}
	if opCfg.CircuitBreaker == nil {
		opCfg.CircuitBreaker = &c.AI.CircuitBreaker
	}
}

// GetAdviceConfig returns the AI configuration for comprehensive advice
func (c *Config) GetAdviceConfig() OperationAIConfig {
	config := c.AI.Advice
	c.applyOperationDefaults(&config)
	if config.MaxOutputTokens == 0 {
		config.MaxOutputTokens = 3000
	}
	return config
}

// GetFeedbackConfig returns the AI configuration for resume feedback
func (c *Config) GetFeedbackConfig() OperationAIConfig {
	config := c.AI.Feedback
	c.applyOperationDefaults(&config)
	if config.MaxOutputTokens == 0 {
		config.MaxOutputTokens = 1500
	}
	return config
}

// GetSkillsConfig returns the AI configuration for skill recommendations
func (c *Config) GetSkillsConfig() OperationAIConfig {
	config := c.AI.Skills
	c.applyOperationDefaults(&config)
	if config.MaxOutputTokens == 0 {
		config.MaxOutputTokens = 1200
	}
	return config
}

// GetEmbeddingConfig returns the embedding configuration with the API key
// falling back to the generation key
func (c *Config) GetEmbeddingConfig() EmbeddingConfig {
	config := c.Embedding
	if config.APIKey == "" {
		config.APIKey = c.AI.APIKey
	}
	if config.Provider == "" {
		config.Provider = c.AI.Provider
	}
	return config
}

// loadPromptTemplates reads every configured prompt file once
func (c *Config) loadPromptTemplates() error {
	ops := []struct {
		name string
		cfg  *OperationAIConfig
	}{
		{"advice", &c.AI.Advice},
		{"feedback", &c.AI.Feedback},
		{"skills", &c.AI.Skills},
	}

	for _, op := range ops {
		if op.cfg.PromptFile == "" {
			continue
		}
		content, err := loadPromptFromFile(op.cfg.PromptFile)
		if err != nil {
			return fmt.Errorf("%s prompt: %w", op.name, err)
		}
		op.cfg.PromptTemplate = content
	}
	return nil
}

func loadPromptFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return content, nil
}
