package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadiness(t *testing.T) {
	tests := []struct {
		input    string
		expected Readiness
		ok       bool
	}{
		{"Ready", ReadinessReady, true},
		{"  nearly ready - a few gaps", ReadinessNearlyReady, true},
		{"Almost there", ReadinessNearlyReady, true},
		{"DEVELOPING", ReadinessDeveloping, true},
		{"Needs Significant Work", ReadinessNeedsSignificantWork, true},
		{"Not ready yet", ReadinessNeedsSignificantWork, true},
		{"unclear", ReadinessDeveloping, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseReadiness(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadinessJSON(t *testing.T) {
	data, err := json.Marshal(AdviceResult{ReadinessLevel: ReadinessNearlyReady})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"readinessLevel":"Nearly Ready"`)

	var back AdviceResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ReadinessNearlyReady, back.ReadinessLevel)

	assert.Error(t, json.Unmarshal([]byte(`{"readinessLevel":"maybe"}`), &back))
}

func TestResolveExperienceLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected ExperienceLevel
		wantErr  bool
	}{
		{input: "", expected: LevelMid},
		{input: "entry", expected: LevelEntry},
		{input: "Senior", expected: LevelSenior},
		{input: "lead/expert (10+ years)", expected: LevelLead},
		{input: "Mid Level (3-5 years)", expected: LevelMid},
		{input: "intern", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ResolveExperienceLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}
