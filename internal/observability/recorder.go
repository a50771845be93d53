package observability

import (
	"context"
	"time"
)

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Recorder receives the domain events worth counting. Components take a
// Recorder rather than *Metrics so tests can pass NopRecorder.
type Recorder interface {
	ResumeScored(ctx context.Context, method string)
	EmbeddingFallback(ctx context.Context, reason string)
	ExtractionFailed(ctx context.Context)
	AdviceRequested(ctx context.Context, operation, source string)
	AIOperation(ctx context.Context, operation string, duration time.Duration, usage *TokenUsage, err error)
}

// NopRecorder discards every event
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) ResumeScored(context.Context, string)                  {}
func (NopRecorder) EmbeddingFallback(context.Context, string)             {}
func (NopRecorder) ExtractionFailed(context.Context)                      {}
func (NopRecorder) AdviceRequested(context.Context, string, string)       {}
func (NopRecorder) AIOperation(context.Context, string, time.Duration, *TokenUsage, error) {}
