package ai

import (
	"context"
	"fmt"
	"time"

	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const embedTaskType = "SEMANTIC_SIMILARITY"

// GeminiEmbedder turns texts into dense vectors with a Gemini embedding model
type GeminiEmbedder struct {
	client   *genai.Client
	config   config.EmbeddingConfig
	breaker  *CircuitBreaker[*genai.EmbedContentResponse]
	recorder observability.Recorder
}

// NewGeminiEmbedder creates an embedder. It fails when embeddings are
// disabled or no API key is available.
func NewGeminiEmbedder(ctx context.Context, cfg config.EmbeddingConfig, recorder observability.Recorder, logger *errors.Logger) (*GeminiEmbedder, error) {
	if !cfg.Enabled {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Embeddings are disabled", nil)
	}
	if cfg.Provider != "" && cfg.Provider != "gemini" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported embedding provider: %s", cfg.Provider), nil)
	}
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "Embedding API key is not configured", nil)
	}
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed, "Failed to create embedding client", err)
	}

	return &GeminiEmbedder{
		client:   client,
		config:   cfg,
		breaker:  NewCircuitBreaker[*genai.EmbedContentResponse]("embedding", cfg.CircuitBreaker, logger),
		recorder: recorder,
	}, nil
}

// Embed returns one vector per input text, in input order
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := otel.Tracer("resumatch.ai.gemini").Start(ctx, "gemini.embed")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", e.config.Model),
		attribute.Int("input.count", len(texts)),
	)

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(truncateRunes(t, e.config.MaxInputChars), genai.RoleUser)
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.breaker.Execute(func() (*genai.EmbedContentResponse, error) {
		return e.client.Models.EmbedContent(ctx, e.config.Model, contents, &genai.EmbedContentConfig{
			TaskType: embedTaskType,
		})
	})
	if err == nil && len(resp.Embeddings) != len(texts) {
		err = fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	e.recorder.AIOperation(ctx, "embedding", time.Since(start), nil, err)

	if err != nil {
		span.RecordError(err)
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed, "Failed to embed texts", err).
			WithContext("reason", FallbackReason(err))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("Embedding %d is empty", i), nil)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (e *GeminiEmbedder) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"embed_operations": e.breaker.GetStats(),
		"overall_healthy":  e.breaker.IsHealthy(),
	}
}
