package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumatch/internal/errors"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	v := viper.New()
	v.SetConfigFile(path)
	return v
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, "app:\n  logLevel: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
	assert.Equal(t, float32(0.7), cfg.AI.Temperature)
	assert.Equal(t, float32(40), cfg.AI.TopK)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.False(t, cfg.Embedding.Enabled)
	assert.Equal(t, "resumatch", cfg.Observability.ServiceName)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	t.Setenv("RESUMATCH_SERVER_PORT", "7000")
	t.Setenv("RESUMATCH_AI_APIKEY", "env-key")

	v := writeConfigFile(t, `
ai:
  model: gemini-2.0-flash
  advice:
    temperature: 0.2
    model: gemini-2.5-flash
server:
  port: "9999"
`)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "env-key", cfg.AI.APIKey)

	advice := cfg.GetAdviceConfig()
	assert.Equal(t, "gemini-2.5-flash", advice.Model)
	require.NotNil(t, advice.Temperature)
	assert.Equal(t, float32(0.2), *advice.Temperature)
	assert.Equal(t, "env-key", advice.APIKey)
	assert.Equal(t, int32(3000), advice.MaxOutputTokens)

	feedback := cfg.GetFeedbackConfig()
	assert.Equal(t, "gemini-2.0-flash", feedback.Model)
	assert.Equal(t, int32(1500), feedback.MaxOutputTokens)
}

func TestOperationConfigFallbacks(t *testing.T) {
	cfg := &Config{
		AI: AIConfig{
			Provider:       "gemini",
			Model:          "global-model",
			Timeout:        45 * time.Second,
			APIKey:         "global-key",
			Temperature:    0.7,
			TopK:           40,
			TopP:           0.95,
			CircuitBreaker: CircuitBreakerConfig{Enabled: true, MaxRequests: 3},
			Skills: OperationAIConfig{
				Model:          "skills-model",
				CircuitBreaker: &CircuitBreakerConfig{Enabled: false},
			},
		},
	}

	tests := []struct {
		name          string
		get           func() OperationAIConfig
		model         string
		maxTokens     int32
		breakerActive bool
	}{
		{"advice", cfg.GetAdviceConfig, "global-model", 3000, true},
		{"feedback", cfg.GetFeedbackConfig, "global-model", 1500, true},
		{"skills", cfg.GetSkillsConfig, "skills-model", 1200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := tt.get()
			assert.Equal(t, tt.model, op.Model)
			assert.Equal(t, "global-key", op.APIKey)
			assert.Equal(t, 45*time.Second, *op.Timeout)
			assert.Equal(t, float32(0.95), *op.TopP)
			assert.Equal(t, tt.maxTokens, op.MaxOutputTokens)
			assert.Equal(t, tt.breakerActive, op.CircuitBreaker.Enabled)
		})
	}
}

func TestGetEmbeddingConfigFallsBackToAIKey(t *testing.T) {
	cfg := &Config{
		AI:        AIConfig{Provider: "gemini", APIKey: "shared"},
		Embedding: EmbeddingConfig{Enabled: true, Model: "text-embedding-004"},
	}
	emb := cfg.GetEmbeddingConfig()
	assert.Equal(t, "shared", emb.APIKey)
	assert.Equal(t, "gemini", emb.Provider)

	cfg.Embedding.APIKey = "own"
	assert.Equal(t, "own", cfg.GetEmbeddingConfig().APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI:     AIConfig{Timeout: time.Second},
			Server: ServerConfig{Port: "8080", MaxFiles: 5, TLS: TLSConfig{Mode: "disabled"}},
			App:    AppConfig{DefaultFormat: "text", SupportedFormats: []string{"json", "text"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid without api key", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: "timeout"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "port"},
		{name: "unsupported default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, wantErr: "default format"},
		{name: "missing knowledge file", mutate: func(c *Config) { c.Scoring.KnowledgeFile = "/nonexistent/kb.yaml" }, wantErr: "knowledge file"},
		{name: "tls server without files", mutate: func(c *Config) { c.Server.TLS.Mode = "server" }, wantErr: "required for server mode"},
		{name: "tls unknown mode", mutate: func(c *Config) { c.Server.TLS.Mode = "mutual" }, wantErr: "invalid TLS mode"},
		{
			name: "tls bad version",
			mutate: func(c *Config) {
				c.Server.TLS = TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.1"}
			},
			wantErr: "minVersion",
		},
		{
			name:    "embedding with zero input budget",
			mutate:  func(c *Config) { c.Embedding = EmbeddingConfig{Enabled: true} },
			wantErr: "maxInputChars",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadPromptTemplates(t *testing.T) {
	dir := t.TempDir()
	adviceFile := filepath.Join(dir, "advice.txt")
	emptyFile := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(adviceFile, []byte("  Advise on %s\n"), 0600))
	require.NoError(t, os.WriteFile(emptyFile, []byte(" \n"), 0600))

	cfg := &Config{AI: AIConfig{Advice: OperationAIConfig{PromptFile: adviceFile}}}
	require.NoError(t, cfg.loadPromptTemplates())
	assert.Equal(t, "Advise on %s", cfg.AI.Advice.PromptTemplate)
	assert.Equal(t, "Advise on %s", cfg.GetAdviceConfig().PromptTemplate)

	cfg = &Config{AI: AIConfig{Feedback: OperationAIConfig{PromptFile: emptyFile}}}
	assert.ErrorContains(t, cfg.loadPromptTemplates(), "empty")

	cfg = &Config{AI: AIConfig{Skills: OperationAIConfig{PromptFile: filepath.Join(dir, "missing.txt")}}}
	assert.ErrorContains(t, cfg.loadPromptTemplates(), "skills prompt")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{TLS: TLSConfig{Mode: "disabled"}},
		App:    AppConfig{DefaultFormat: "text", SupportedFormats: []string{"text"}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.ErrorContains(t, err, "timeout")
	assert.ErrorContains(t, err, "port")
	assert.ErrorContains(t, err, "maxFiles")
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfigFile(t, "server: [unclosed\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
