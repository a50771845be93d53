package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionParserParse(t *testing.T) {
	parser := NewSectionParser("OVERALL_SCORE", "READINESS_LEVEL", "STRENGTHS", "ROADMAP")

	t.Run("plain headers", func(t *testing.T) {
		text := "OVERALL_SCORE: 8\nREADINESS_LEVEL: Nearly Ready\nSTRENGTHS:\n- Python\n- SQL\nROADMAP:\n- Learn Spark"
		sections, err := parser.Parse(text)
		require.NoError(t, err)

		score, ok := sections.Scalar("OVERALL_SCORE")
		assert.True(t, ok)
		assert.Equal(t, "8", score)

		strengths, ok := sections.List("STRENGTHS")
		assert.True(t, ok)
		assert.Equal(t, []string{"Python", "SQL"}, strengths)

		roadmap, _ := sections.List("ROADMAP")
		assert.Equal(t, []string{"Learn Spark"}, roadmap)
	})

	t.Run("markdown decoration and spaces", func(t *testing.T) {
		text := "## **Overall Score:** 6/10\n**Strengths**:\n* Leadership\n• Mentoring"
		sections, err := parser.Parse(text)
		require.NoError(t, err)

		score, ok := sections.Scalar("OVERALL_SCORE")
		assert.True(t, ok)
		assert.Equal(t, "6/10", score)

		strengths, _ := sections.List("STRENGTHS")
		assert.Equal(t, []string{"Leadership", "Mentoring"}, strengths)
	})

	t.Run("first occurrence wins", func(t *testing.T) {
		sections, err := parser.Parse("STRENGTHS:\n- first\nSTRENGTHS:\n- second")
		require.NoError(t, err)
		strengths, _ := sections.List("STRENGTHS")
		assert.Equal(t, []string{"first"}, strengths)
	})

	t.Run("headers after punctuation or spaces", func(t *testing.T) {
		tests := []struct {
			name     string
			text     string
			expected []string
		}{
			{name: "after a sentence", text: "Summary. STRENGTHS: - x", expected: []string{"x"}},
			{name: "lowercase in prose", text: "My strengths: many", expected: []string{"many"}},
			{name: "after a parenthesis", text: "(Strengths: Python, SQL)", expected: []string{"Python, SQL)"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sections, err := parser.Parse(tt.text)
				require.NoError(t, err)
				strengths, ok := sections.List("STRENGTHS")
				assert.True(t, ok)
				assert.Equal(t, tt.expected, strengths)
			})
		}
	})

	t.Run("inline headers and bullets on one line", func(t *testing.T) {
		text := "OVERALL_SCORE: 7 READINESS_LEVEL: Ready STRENGTHS: - Python - SQL • Tableau ROADMAP: - scikit-learn depth"
		sections, err := parser.Parse(text)
		require.NoError(t, err)

		score, _ := sections.Scalar("OVERALL_SCORE")
		assert.Equal(t, "7", score)
		level, _ := sections.Scalar("READINESS_LEVEL")
		assert.Equal(t, "Ready", level)
		strengths, _ := sections.List("STRENGTHS")
		assert.Equal(t, []string{"Python", "SQL", "Tableau"}, strengths)
		roadmap, _ := sections.List("ROADMAP")
		assert.Equal(t, []string{"scikit-learn depth"}, roadmap)
	})

	t.Run("empty inline section before the next header", func(t *testing.T) {
		sections, err := parser.Parse("STRENGTHS: ROADMAP: - step")
		require.NoError(t, err)
		_, ok := sections.List("STRENGTHS")
		assert.False(t, ok)
		roadmap, _ := sections.List("ROADMAP")
		assert.Equal(t, []string{"step"}, roadmap)
	})

	t.Run("name inside a longer word is not a header", func(t *testing.T) {
		_, err := parser.Parse("KEYSTRENGTHS: many")
		assert.ErrorIs(t, err, ErrNoSections)
	})

	t.Run("no headers", func(t *testing.T) {
		_, err := parser.Parse("I cannot help with that.")
		assert.ErrorIs(t, err, ErrNoSections)
	})

	t.Run("empty list section", func(t *testing.T) {
		sections, err := parser.Parse("STRENGTHS:\n\nROADMAP:\n- step")
		require.NoError(t, err)
		_, ok := sections.List("STRENGTHS")
		assert.False(t, ok)
		_, ok = sections.List("READINESS_LEVEL")
		assert.False(t, ok)
	})
}

func TestSplitBullets(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{name: "dash bullets", body: "- one\n- two", expected: []string{"one", "two"}},
		{name: "mixed markers", body: "* one\n• two\n  - three", expected: []string{"one", "two", "three"}},
		{name: "inner hyphen kept", body: "- scikit-learn and real-time data", expected: []string{"scikit-learn and real-time data"}},
		{name: "wrapped item collapsed", body: "- a long\n  continued item", expected: []string{"a long continued item"}},
		{name: "text without markers", body: "Just one line", expected: []string{"Just one line"}},
		{name: "empty fragments dropped", body: "-\n- \n- real", expected: []string{"real"}},
		{name: "inline markers", body: "- Python - SQL • Tableau * Spark", expected: []string{"Python", "SQL", "Tableau", "Spark"}},
		{name: "glued marker opens a line", body: "-Python\n•SQL", expected: []string{"Python", "SQL"}},
		{name: "glued marker mid-line stays text", body: "- rate -5 dB", expected: []string{"rate -5 dB"}},
		{name: "text before first marker kept", body: "Core: - Go - Rust", expected: []string{"Core:", "Go", "Rust"}},
		{name: "empty body", body: "", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitBullets(tt.body))
		})
	}
}

func TestScanSections(t *testing.T) {
	headers := []string{"FORMATTING", "CONTENT_QUALITY", "MISSING_ELEMENTS", "IMPROVEMENTS"}

	t.Run("switches on header lines", func(t *testing.T) {
		text := "- orphan bullet\n**FORMATTING:**\n- Clear layout\n- Consistent fonts\nSome prose\nCONTENT_QUALITY:\n- Quantify results\nIMPROVEMENTS: \n-Add summary"
		got := ScanSections(text, headers)

		assert.Equal(t, []string{"Clear layout", "Consistent fonts"}, got["FORMATTING"])
		assert.Equal(t, []string{"Quantify results"}, got["CONTENT_QUALITY"])
		assert.Equal(t, []string{}, got["MISSING_ELEMENTS"])
		assert.Equal(t, []string{"Add summary"}, got["IMPROVEMENTS"])
	})

	t.Run("lowercase headers match", func(t *testing.T) {
		got := ScanSections("formatting:\n- ok", headers)
		assert.Equal(t, []string{"ok"}, got["FORMATTING"])
	})

	t.Run("every header present on empty input", func(t *testing.T) {
		got := ScanSections("", headers)
		assert.Len(t, got, 4)
		for _, h := range headers {
			assert.Equal(t, []string{}, got[h])
		}
	})
}
