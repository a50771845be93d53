package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumatch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledManagerIsNoop(t *testing.T) {
	om, err := NewObservabilityManager(config.ObservabilityConfig{Enabled: false}, "1.0.0")
	require.NoError(t, err)

	assert.IsType(t, NopRecorder{}, om.Recorder())
	_, span := om.Tracer("test").Start(context.Background(), "span")
	assert.False(t, span.IsRecording())

	handler := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestNilManagerIsSafe(t *testing.T) {
	var om *ObservabilityManager
	assert.IsType(t, NopRecorder{}, om.Recorder())
	assert.NotNil(t, om.Tracer("x"))
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestEnabledManagerRecordsMetrics(t *testing.T) {
	om, err := NewObservabilityManager(config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "resumatch-test",
		SampleRate:  1.0,
	}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	recorder := om.Recorder()
	require.IsType(t, &Metrics{}, recorder)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		recorder.ResumeScored(ctx, "keyword")
		recorder.EmbeddingFallback(ctx, "embedder_error")
		recorder.ExtractionFailed(ctx)
		recorder.AdviceRequested(ctx, "advice", "fallback")
		recorder.AIOperation(ctx, "advice", 250*time.Millisecond, &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil)
		recorder.AIOperation(ctx, "feedback", time.Second, nil, errors.New("boom"))
	})
}

func TestServiceVersionFallsBackToBuildVersion(t *testing.T) {
	om, err := NewObservabilityManager(config.ObservabilityConfig{}, "2.1.0")
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", om.serviceVersion)
	assert.Equal(t, "resumatch-1", om.getServiceInstanceID())
	assert.Equal(t, 15*time.Second, om.getMetricsCollectionInterval())
}
