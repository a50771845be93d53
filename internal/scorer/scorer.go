// Package scorer rates how well a resume matches a target role.
package scorer

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"resumatch/internal/errors"
	"resumatch/internal/extract"
	"resumatch/internal/knowledge"
	"resumatch/internal/observability"
	"resumatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// roleBonus is added when the role name itself appears in the resume
const roleBonus = 0.2

var (
	dateRange       = regexp.MustCompile(`(?i)\b(\d{4})\s*[-–]\s*(\d{4}|present|current)\b`)
	yearsExperience = regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(?:of\s*)?experience`)
)

// Embedder turns texts into vectors, one per input, in order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderLoader creates the embedder on first use
type EmbedderLoader func(ctx context.Context) (Embedder, error)

// Scorer computes similarity with embeddings when available and keyword
// overlap otherwise. It is safe for concurrent use.
type Scorer struct {
	kb       *knowledge.Base
	load     EmbedderLoader
	recorder observability.Recorder
	logger   *errors.Logger

	once     sync.Once
	embedder Embedder
}

// New creates a Scorer. A nil loader means keyword scoring only.
func New(kb *knowledge.Base, load EmbedderLoader, recorder observability.Recorder, logger *errors.Logger) *Scorer {
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Scorer{kb: kb, load: load, recorder: recorder, logger: logger}
}

// WithEmbedder returns a loader for an already constructed embedder
func WithEmbedder(e Embedder) EmbedderLoader {
	return func(context.Context) (Embedder, error) { return e, nil }
}

// embedderFor loads the embedder once. A failed load leaves it nil for
// the lifetime of the Scorer.
func (s *Scorer) embedderFor(ctx context.Context) Embedder {
	s.once.Do(func() {
		if s.load == nil {
			return
		}
		e, err := s.load(ctx)
		if err != nil {
			s.logger.LogError(err, "Embedding model unavailable, keyword scoring only")
			return
		}
		s.embedder = e
	})
	return s.embedder
}

// Similarity scores resume against role. It never fails: any embedding
// problem falls through to keyword matching.
func (s *Scorer) Similarity(ctx context.Context, resume, role string) types.Score {
	ctx, span := otel.Tracer("resumatch.scorer").Start(ctx, "scorer.similarity")
	defer span.End()

	score := s.similarity(ctx, resume, role)
	span.SetAttributes(
		attribute.String("score.method", string(score.Method)),
		attribute.Float64("score.value", score.Value),
	)
	s.recorder.ResumeScored(ctx, string(score.Method))
	return score
}

func (s *Scorer) similarity(ctx context.Context, resume, role string) types.Score {
	embedder := s.embedderFor(ctx)
	if embedder == nil {
		return s.keyword(resume, role)
	}

	vectors, err := embedder.Embed(ctx, []string{resume, role})
	if err != nil {
		return s.fallback(ctx, resume, role, "embed_failed", err)
	}
	if len(vectors) != 2 {
		return s.fallback(ctx, resume, role, "embed_failed", fmt.Errorf("expected 2 vectors, got %d", len(vectors)))
	}

	value, ok := Cosine(vectors[0], vectors[1])
	if !ok {
		return s.fallback(ctx, resume, role, "degenerate_vector", fmt.Errorf("zero-norm or mismatched embedding"))
	}
	return types.Score{Value: value, Method: types.MethodEmbedding}
}

func (s *Scorer) fallback(ctx context.Context, resume, role, reason string, err error) types.Score {
	s.logger.Warn("Falling back to keyword similarity", "reason", reason, "error", err.Error())
	s.recorder.EmbeddingFallback(ctx, reason)
	return s.keyword(resume, role)
}

func (s *Scorer) keyword(resume, role string) types.Score {
	return types.Score{Value: KeywordSimilarity(resume, role, s.kb), Method: types.MethodKeyword}
}

// Cosine returns the cosine similarity of a and b clamped to [0,1]. ok is
// false when the vectors differ in length, are empty or have zero norm.
func Cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0, false
	}
	return min(max(sim, 0), 1), true
}

// KeywordSimilarity is the share of the role profile's keywords found as
// substrings of the resume, plus a bonus when the role is named, capped at 1.
func KeywordSimilarity(resume, role string, kb *knowledge.Base) float64 {
	profile, _ := kb.KeywordProfileFor(role)
	if len(profile.Keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(resume)
	matches := 0
	for _, kw := range profile.Keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}

	similarity := float64(matches) / float64(len(profile.Keywords))
	if strings.Contains(lower, strings.ToLower(role)) {
		similarity += roleBonus
	}
	return min(similarity, 1.0)
}

// DetailedAnalysis scores a resume against role and explains the result.
// Score and skills use the normalized text; date ranges, percentages and
// amounts only survive in raw, so experience and strengths read that.
func (s *Scorer) DetailedAnalysis(ctx context.Context, raw, cleaned, role string) types.MatchResult {
	lower := strings.ToLower(cleaned)

	present, missing := splitRequiredSkills(lower, s.kb.RequiredSkillsFor(role))
	return types.MatchResult{
		Score:                s.Similarity(ctx, cleaned, role),
		PresentSkills:        present,
		MissingSkills:        missing,
		IdentifiedSkills:     containedTerms(lower, s.kb.IdentifiedSkills()),
		ExperienceIndicators: experienceIndicators(raw),
		EducationIndicators:  educationIndicators(lower, s.kb.EducationLevels()),
		Strengths:            s.strengths(strings.ToLower(raw)),
		Recommendations:      recommendations(missing),
	}
}

func splitRequiredSkills(lower string, required []string) (present, missing []string) {
	present, missing = []string{}, []string{}
	for _, skill := range required {
		if strings.Contains(lower, strings.ToLower(skill)) {
			present = append(present, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return present, missing
}

func containedTerms(lower string, terms []string) []string {
	found := []string{}
	for _, t := range terms {
		if strings.Contains(lower, t) {
			found = append(found, t)
		}
	}
	return found
}

func experienceIndicators(text string) []string {
	indicators := []string{}
	if ranges := dateRange.FindAllString(text, -1); len(ranges) > 0 {
		indicators = append(indicators, fmt.Sprintf("Work history spans %d positions", len(ranges)))
	}
	if m := yearsExperience.FindStringSubmatch(text); m != nil {
		indicators = append(indicators, fmt.Sprintf("Mentions %s years of experience", m[1]))
	}
	return indicators
}

func educationIndicators(lower string, levels []string) []string {
	for _, level := range levels {
		if strings.Contains(lower, level) {
			return []string{fmt.Sprintf("Has %s level education", extract.TitleCase(level))}
		}
	}
	return []string{}
}

func (s *Scorer) strengths(lower string) []string {
	var found []string
	for _, c := range s.kb.StrengthClusters() {
		if c.Matches(lower) {
			found = append(found, c.Statement)
		}
	}
	if len(found) == 0 {
		return []string{s.kb.FallbackStrength()}
	}
	return found
}

func recommendations(missing []string) []string {
	if len(missing) == 0 {
		return []string{"Strong skill alignment with target role"}
	}

	var recs []string
	if len(missing) <= 2 {
		recs = append(recs, "Consider gaining experience in: "+strings.Join(missing, ", "))
	} else {
		recs = append(recs, "Focus on developing key missing skills, starting with the most critical ones")
	}
	return append(recs,
		"Look for projects or courses to demonstrate these skills",
		"Consider highlighting transferable skills that relate to the target role",
	)
}
