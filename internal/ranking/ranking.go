// Package ranking scores a batch of resumes against one role and orders them.
package ranking

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"resumatch/internal/document"
	"resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/textnorm"
	"resumatch/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Document is one resume in a batch. When Reader is set it is read instead of Path.
type Document struct {
	Filename string
	Path     string
	Reader   io.Reader
}

// Scorer is the part of scorer.Scorer the ranker needs
type Scorer interface {
	Similarity(ctx context.Context, resume, role string) types.Score
}

// Ranker runs extract, normalize and score over each document in order
type Ranker struct {
	extractor document.Extractor
	scorer    Scorer
	recorder  observability.Recorder
	logger    *errors.Logger
	now       func() time.Time
}

// NewRanker creates a Ranker
func NewRanker(extractor document.Extractor, scorer Scorer, recorder observability.Recorder, logger *errors.Logger) *Ranker {
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Ranker{
		extractor: extractor,
		scorer:    scorer,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// Rank processes docs sequentially. A document that cannot be read is
// reported in Failures and the batch carries on. Results are ordered by
// descending score; ties keep input order.
func (r *Ranker) Rank(ctx context.Context, docs []Document, role string) types.RankingReport {
	ctx, span := otel.Tracer("resumatch.ranking").Start(ctx, "ranking.rank")
	defer span.End()
	span.SetAttributes(
		attribute.String("ranking.role", role),
		attribute.Int("ranking.documents", len(docs)),
	)

	report := types.RankingReport{
		ID:          uuid.NewString(),
		TargetRole:  role,
		GeneratedAt: r.now().UTC(),
		Results:     make([]types.RankedResume, 0, len(docs)),
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, types.RankFailure{Filename: doc.Filename, Error: err.Error()})
			continue
		}

		raw, err := r.extract(doc)
		if err != nil {
			r.logger.LogError(err, "Error processing resume", "filename", doc.Filename)
			r.recorder.ExtractionFailed(ctx)
			report.Failures = append(report.Failures, types.RankFailure{Filename: doc.Filename, Error: err.Error()})
			continue
		}

		cleaned := textnorm.Normalize(raw)
		score := r.scorer.Similarity(ctx, cleaned, role)
		report.Results = append(report.Results, types.RankedResume{
			Filename:  doc.Filename,
			Score:     score.Value,
			Method:    score.Method,
			WordCount: len(strings.Fields(cleaned)),
		})
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].Score > report.Results[j].Score
	})
	for i := range report.Results {
		report.Results[i].Rank = i + 1
	}

	r.logger.Info("Ranking completed",
		"report_id", report.ID,
		"role", role,
		"ranked", len(report.Results),
		"failed", len(report.Failures))
	return report
}

func (r *Ranker) extract(doc Document) (string, error) {
	if doc.Reader != nil {
		return document.ExtractFromReader(r.extractor, doc.Reader, doc.Filename)
	}
	return r.extractor.ExtractText(doc.Path)
}
