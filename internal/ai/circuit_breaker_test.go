package ai

import (
	"fmt"
	"testing"
	"time"

	"resumatch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakerConfig(minRequests uint32, threshold float64) config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      minRequests,
		FailureThreshold: threshold,
	}
}

func TestIndependentCircuitBreakers(t *testing.T) {
	adviceCB := NewCircuitBreaker[string](OperationAdvice, breakerConfig(3, 0.6), nil)
	feedbackCB := NewCircuitBreaker[string](OperationFeedback, breakerConfig(2, 0.7), nil)
	skillsCB := NewCircuitBreaker[string](OperationSkills, breakerConfig(5, 0.5), nil)

	tests := []struct {
		cb   *CircuitBreaker[string]
		name string
	}{
		{adviceCB, "AI-advice"},
		{feedbackCB, "AI-feedback"},
		{skillsCB, "AI-skills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.cb.GetStats()
			assert.Equal(t, tt.name, stats["name"])
			assert.Equal(t, "closed", stats["state"])
			assert.Equal(t, true, stats["enabled"])
			assert.True(t, tt.cb.IsHealthy())
		})
	}

	t.Run("tripping one leaves the others closed", func(t *testing.T) {
		for range 3 {
			_, _ = adviceCB.Execute(func() (string, error) { return "", fmt.Errorf("boom") })
		}
		assert.False(t, adviceCB.IsHealthy())
		assert.True(t, feedbackCB.IsHealthy())
		assert.True(t, skillsCB.IsHealthy())
	})
}

func TestCircuitBreakerRejectsWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker[string]("test", breakerConfig(2, 0.5), nil)

	for range 2 {
		_, err := cb.Execute(func() (string, error) { return "", fmt.Errorf("upstream down") })
		require.Error(t, err)
		assert.False(t, IsBreakerRejection(err))
	}

	called := false
	_, err := cb.Execute(func() (string, error) {
		called = true
		return "ok", nil
	})
	require.Error(t, err)
	assert.False(t, called, "open breaker must not invoke the call")
	assert.True(t, IsBreakerRejection(err))
	assert.Equal(t, "open", cb.GetStats()["state"])
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewCircuitBreaker[int]("test", config.CircuitBreakerConfig{Enabled: false}, nil)
	assert.Nil(t, cb)

	// nil breakers pass calls through
	v, err := cb.Execute(func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, cb.IsHealthy())
	assert.Equal(t, map[string]any{"enabled": false}, cb.GetStats())
}

func TestCircuitBreakerIgnoresZeroRequests(t *testing.T) {
	cb := NewCircuitBreaker[string]("test", breakerConfig(0, 0), nil)
	v, err := cb.Execute(func() (string, error) { return "fine", nil })
	require.NoError(t, err)
	assert.Equal(t, "fine", v)
	assert.True(t, cb.IsHealthy())
}
