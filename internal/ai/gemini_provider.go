package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiGenerator implements Generator for Google Gemini. There is one
// generator per advice operation so each gets its own model, budget and breaker.
type GeminiGenerator struct {
	client       *genai.Client
	config       config.OperationAIConfig
	operation    string
	breaker      *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker *CircuitBreaker[*genai.Model]
	recorder     observability.Recorder
	logger       *errors.Logger
}

var (
	_ Generator         = (*GeminiGenerator)(nil)
	_ ModelInfoProvider = (*GeminiGenerator)(nil)
)

// NewGeminiGenerator creates a generator for one operation. A missing API
// key is a config error; callers treat it as "no generator available".
func NewGeminiGenerator(ctx context.Context, operation string, cfg config.OperationAIConfig, recorder observability.Recorder, logger *errors.Logger) (*GeminiGenerator, error) {
	if cfg.Provider != "" && cfg.Provider != "gemini" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is not configured", nil).WithContext("operation", operation)
	}
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	breakerCfg := config.CircuitBreakerConfig{}
	if cfg.CircuitBreaker != nil {
		breakerCfg = *cfg.CircuitBreaker
	}
	// model lookups only back /health, so they trip on a more lenient ratio
	modelBreakerCfg := breakerCfg
	modelBreakerCfg.MinRequests = 5
	modelBreakerCfg.FailureThreshold = 0.8

	logger.Debug("Initializing Gemini generator",
		"operation", operation,
		"model", cfg.Model,
		"max_output_tokens", cfg.MaxOutputTokens,
		"circuit_breaker", breakerCfg.Enabled)

	return &GeminiGenerator{
		client:       client,
		config:       cfg,
		operation:    operation,
		breaker:      NewCircuitBreaker[*genai.GenerateContentResponse](operation, breakerCfg, logger),
		modelBreaker: NewCircuitBreaker[*genai.Model]("Model-"+operation, modelBreakerCfg, logger),
		recorder:     recorder,
		logger:       logger,
	}, nil
}

// Generate sends one prompt. There is no retry; a failure goes straight
// back to the caller, which degrades to its fallback.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	tracer := otel.Tracer("resumatch.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+g.operation)
	defer span.End()

	genCfg := g.buildGenerateConfig(req)
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("ai.max_output_tokens", int(genCfg.MaxOutputTokens)),
		attribute.Int("input.prompt_length", len(req.Prompt)),
	)

	if g.config.Timeout != nil && *g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *g.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(req.Prompt), genCfg)
	})

	var text string
	if err == nil {
		text = strings.TrimSpace(resp.Text())
		if text == "" {
			err = fmt.Errorf("model returned no text")
		}
	}

	usage := extractTokenUsage(resp)
	g.recorder.AIOperation(ctx, g.operation, time.Since(start), usage, err)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return GenerateResult{}, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+g.operation, err).WithContext("reason", FallbackReason(err))
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return GenerateResult{Text: text, Usage: usage}, nil
}

func (g *GeminiGenerator) buildGenerateConfig(req GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: g.config.MaxOutputTokens,
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.MaxOutputTokens
	}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	if g.config.TopK != nil && *g.config.TopK > 0 {
		cfg.TopK = g.config.TopK
	}
	if g.config.TopP != nil && *g.config.TopP > 0 {
		cfg.TopP = g.config.TopP
	}
	return cfg
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiGenerator) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operation,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiGenerator) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.breaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
		"overall_healthy":  g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// FallbackReason classifies a generation error into a machine-readable reason
func FallbackReason(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := errors.As(err); ok {
		if reason, ok := appErr.Context["reason"].(string); ok && reason != "" {
			return reason
		}
		if appErr.Code == errors.ErrCodeMissingAPIKey {
			return types.ReasonGeneratorUnavailable
		}
	}
	if IsBreakerRejection(err) {
		return types.ReasonCircuitOpen
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return types.ReasonServiceUnavailable
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return types.ReasonQuotaExceeded
		case apiErr.Code >= http.StatusInternalServerError:
			return types.ReasonServiceUnavailable
		}
	}
	return types.ReasonGenerationFailed
}
