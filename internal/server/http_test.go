package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumatch/internal/app"
	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/types"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*ServerConfig)) http.Handler {
	t.Helper()
	t.Setenv("RESUMATCH_AI_APIKEY", "")
	t.Setenv("RESUMATCH_EMBEDDING_APIKEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("observability:\n  enabled: false\n"), 0600))
	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg, "test", errors.NewNopLogger())
	require.NoError(t, err)

	sc := ServerConfig{Version: "test", MaxUploadSize: 1 << 20, MaxFiles: 3}
	if mutate != nil {
		mutate(&sc)
	}
	return NewServer(a, sc, errors.NewNopLogger()).Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const sampleResume = `Jane Smith  jane@example.com
Data Scientist 2018 - 2024. Python, SQL, machine learning, statistics.`

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("assigned when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
		_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("echoed when valid", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.Header.Set(requestIDHeader, id)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, id, rec.Header().Get(requestIDHeader))
	})

	t.Run("replaced when not a uuid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.Header.Set(requestIDHeader, "<script>")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "<script>", rec.Header().Get(requestIDHeader))
	})
}

func TestHealthAndStats(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", health["status"])
	assert.Contains(t, health["ai_models"], "advice")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, float64(3), stats["server"].(map[string]any)["max_files"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestJSONEndpoints(t *testing.T) {
	h := newTestServer(t, nil)
	resume, _ := json.Marshal(sampleResume)

	t.Run("analyze", func(t *testing.T) {
		rec := postJSON(t, h, "/analyze", `{"resumeText":`+string(resume)+`,"role":"Data Scientist"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		report := decode[types.AnalysisReport](t, rec)
		assert.Equal(t, "jane@example.com", report.Record.Contact.Email)
		assert.Equal(t, types.MethodKeyword, report.Match.Score.Method)
		assert.NotEmpty(t, report.Match.PresentSkills)
	})

	t.Run("advise falls back without a model", func(t *testing.T) {
		rec := postJSON(t, h, "/advise", `{"resumeText":`+string(resume)+`,"role":"Data Scientist","level":"senior"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		outcome := decode[types.AdviceOutcome](t, rec)
		assert.Equal(t, types.SourceFallback, outcome.Source)
		assert.Equal(t, types.ReasonGeneratorUnavailable, outcome.Reason)
	})

	t.Run("feedback", func(t *testing.T) {
		rec := postJSON(t, h, "/feedback", `{"resumeText":`+string(resume)+`}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, types.SourceFallback, decode[types.FeedbackOutcome](t, rec).Source)
	})

	t.Run("skills", func(t *testing.T) {
		rec := postJSON(t, h, "/skills", `{"resumeText":`+string(resume)+`,"role":"Data Scientist"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		outcome := decode[types.SkillOutcome](t, rec)
		assert.Contains(t, outcome.CurrentSkills, "Python")
	})
}

func TestJSONValidation(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name    string
		path    string
		body    string
		wantErr string
	}{
		{"missing resume", "/analyze", `{"role":"Chef"}`, "resumeText field is required"},
		{"blank resume", "/feedback", `{"resumeText":"   "}`, "resumeText field is required"},
		{"missing role", "/skills", `{"resumeText":"cook"}`, "role field is required"},
		{"unknown level", "/advise", `{"resumeText":"cook","role":"Chef","level":"wizard"}`, `unknown experience level "wizard"`},
		{"malformed json", "/analyze", `{"resumeText":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[ErrorResponse](t, rec).Error, tt.wantErr)
		})
	}

	t.Run("content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, "content-type must be application/json")
	})
}

type upload struct {
	name string
	body string
}

func multipartRequest(t *testing.T, path, role string, files []upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if role != "" {
		require.NoError(t, mw.WriteField("role", role))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("resumes[]", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRankEndpoint(t *testing.T) {
	files := []upload{
		{"analyst.txt", "SQL, Excel, Tableau dashboards. Some Python."},
		{"scientist.txt", sampleResume},
		{"photo.png", "not a resume"},
	}

	t.Run("json", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/rank", "Data Scientist", files))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		report := decode[types.RankingReport](t, rec)
		require.Len(t, report.Results, 2)
		assert.Equal(t, "scientist.txt", report.Results[0].Filename)
		assert.Equal(t, 1, report.Results[0].Rank)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, "photo.png", report.Failures[0].Filename)
		assert.Contains(t, report.Failures[0].Error, "UNSUPPORTED_FORMAT")
	})

	t.Run("csv", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/rank?format=csv", "Data Scientist", files[:2]))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "resume_comparison_Data_Scientist.csv")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Rank,Filename,Match_Score,Word_Count\n1,scientist.txt,"))
	})

	t.Run("missing role", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/rank", "", files[:1]))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "role field is required", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("no files", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/rank", "Chef", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too many files", func(t *testing.T) {
		h := newTestServer(t, func(sc *ServerConfig) { sc.MaxFiles = 1 })
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/rank", "Chef", files[:2]))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Error, "too many files")
	})

	t.Run("body too large", func(t *testing.T) {
		h := newTestServer(t, func(sc *ServerConfig) { sc.MaxUploadSize = 64 })
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/rank", "Chef", []upload{{"big.txt", strings.Repeat("x", 4096)}}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
