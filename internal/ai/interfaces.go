package ai

import (
	"context"

	"resumatch/internal/observability"
)

// TokenUsage represents token usage information from AI responses
type TokenUsage = observability.TokenUsage

// GenerateRequest is one text-generation call
type GenerateRequest struct {
	Prompt string
	// MaxOutputTokens overrides the configured budget when positive
	MaxOutputTokens int32
}

// GenerateResult is the model's reply
type GenerateResult struct {
	Text  string
	Usage *TokenUsage
}

// Generator produces free text from a prompt. Implementations return an
// error for transport, quota or empty-response failures; they never encode
// failures in Text.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// ModelInfoProvider is implemented by generators that can report model availability
type ModelInfoProvider interface {
	GetModelInfo(ctx context.Context) *ModelInfo
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
