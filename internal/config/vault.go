package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"resumatch/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets locates the Gemini key in a KVv2 engine
type VaultSecrets struct {
	Mount          string `mapstructure:"mount"`
	GeminiKey      string `mapstructure:"geminiKey"` // secret path relative to Mount
	GeminiKeyField string `mapstructure:"geminiKeyField"`
}

// SecretReader returns a single string field of a KVv2 secret
type SecretReader interface {
	ReadString(ctx context.Context, mount, path, field string) (string, error)
}

// VaultClient reads secrets through the Vault KVv2 API
type VaultClient struct {
	client *api.Client
}

var _ SecretReader = (*VaultClient)(nil)

// NewVaultClient connects to Vault and checks that it is reachable
func NewVaultClient(ctx context.Context, vc VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	apiConfig := api.DefaultConfig()
	if vc.Address != "" {
		apiConfig.Address = vc.Address
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if vc.Namespace != "" {
		client.SetNamespace(vc.Namespace)
	}

	token, err := resolveVaultToken(vc)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().HealthWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if health.Sealed {
		return nil, fmt.Errorf("vault at %s is sealed", apiConfig.Address)
	}
	logger.Info("Connected to Vault", "address", apiConfig.Address, "version", health.Version)

	return &VaultClient{client: client}, nil
}

// resolveVaultToken prefers the inline token and falls back to the token file
func resolveVaultToken(vc VaultConfig) (string, error) {
	if vc.Token != "" {
		return vc.Token, nil
	}
	if vc.TokenFile == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	raw, err := os.ReadFile(vc.TokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read vault token file: %w", err)
	}
	if token := strings.TrimSpace(string(raw)); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("vault token file %s is empty", vc.TokenFile)
}

// ReadString reads field from the latest version of mount/path
func (c *VaultClient) ReadString(ctx context.Context, mount, path, field string) (string, error) {
	secret, err := c.client.KVv2(mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s/%s: %w", mount, path, err)
	}
	return stringField(secret.Data, field)
}

func stringField(data map[string]any, field string) (string, error) {
	value, ok := data[field]
	if !ok {
		return "", fmt.Errorf("field %q not found", field)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not a string", field, value)
	}
	return s, nil
}

// ApplyVaultSecrets overrides configured API keys with the Gemini key from Vault
func ApplyVaultSecrets(ctx context.Context, cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(ctx, cfg.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeVaultFailed, "Failed to initialize Vault client", err)
	}
	return applySecrets(ctx, cfg, client, logger)
}

func applySecrets(ctx context.Context, cfg *Config, reader SecretReader, logger *errors.Logger) error {
	s := cfg.Vault.Secrets
	if s.GeminiKey == "" {
		return nil
	}

	key, err := reader.ReadString(ctx, s.Mount, s.GeminiKey, s.GeminiKeyField)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeVaultFailed, "Failed to load Gemini API key from Vault", err).
			WithContext("mount", s.Mount).
			WithContext("path", s.GeminiKey)
	}
	if key == "" {
		logger.Warn("Empty Gemini API key in Vault, keeping configured keys", "path", s.GeminiKey)
		return nil
	}

	applyGeminiKey(cfg, key)
	logger.Info("Gemini API key loaded from Vault", "path", s.GeminiKey)
	return nil
}

// applyGeminiKey sets the global key and fills every section without its own key
func applyGeminiKey(cfg *Config, key string) {
	cfg.AI.APIKey = key
	for _, op := range []*OperationAIConfig{&cfg.AI.Advice, &cfg.AI.Feedback, &cfg.AI.Skills} {
		if op.APIKey == "" {
			op.APIKey = key
		}
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = key
	}
}
