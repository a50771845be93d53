package server

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"resumatch/internal/errors"
	"resumatch/internal/formatters"
	"resumatch/internal/ranking"
	"resumatch/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// startSpan starts an API span tagged with the request ID
func (s *Server) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx, span := s.App.Observability.Tracer("resumatch.api").Start(r.Context(), name)
	span.SetAttributes(attribute.String("request.id", requestID(ctx)))
	return ctx, span
}

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory
const multipartMemory = 8 << 20

// rankHandler scores uploaded resumes against one role
func (s *Server) rankHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.rank")
	defer span.End()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		span.RecordError(err)
		writeAppError(w, s.Logger, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Invalid multipart upload", bodyError(err)))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.Logger.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	role := strings.TrimSpace(r.FormValue("role"))
	files := r.MultipartForm.File["resumes[]"]
	if len(files) == 0 {
		files = r.MultipartForm.File["resumes"]
	}

	switch {
	case role == "":
		writeAppError(w, s.Logger, errors.NewValidationError(errors.ErrCodeInvalidRequest, "role field is required", nil))
		return
	case len(files) == 0:
		writeAppError(w, s.Logger, errors.NewValidationError(errors.ErrCodeInvalidRequest, "at least one resumes[] file is required", nil))
		return
	case s.MaxFiles > 0 && len(files) > s.MaxFiles:
		writeAppError(w, s.Logger, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("too many files: %d (limit is %d)", len(files), s.MaxFiles), nil))
		return
	}

	span.SetAttributes(
		attribute.String("request.role", role),
		attribute.Int("request.files", len(files)),
	)

	docs, closeAll := openUploads(files)
	defer closeAll()

	report := s.App.Ranker.Rank(ctx, docs, role)
	span.SetAttributes(
		attribute.Int("response.ranked", len(report.Results)),
		attribute.Int("response.failed", len(report.Failures)),
	)

	if r.URL.Query().Get("format") == "csv" {
		s.writeCSV(w, report)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, report)
}

// openUploads turns multipart files into ranking documents. A file that
// cannot be opened becomes a document with no reader and no path, which the
// ranker reports as a failure.
func openUploads(files []*multipart.FileHeader) ([]ranking.Document, func()) {
	docs := make([]ranking.Document, 0, len(files))
	opened := make([]multipart.File, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			docs = append(docs, ranking.Document{Filename: fh.Filename})
			continue
		}
		opened = append(opened, f)
		docs = append(docs, ranking.Document{Filename: fh.Filename, Reader: f})
	}
	return docs, func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
}

func (s *Server) writeCSV(w http.ResponseWriter, report types.RankingReport) {
	out, err := formatters.NewFormatterRegistry().Format(report, "csv")
	if err != nil {
		writeAppError(w, s.Logger, errors.NewInternalError("CSV_FORMAT_FAILED", "Failed to format ranking", err))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ranking.CSVFilename(report.TargetRole)))
	_, _ = w.Write([]byte(out))
}

// analyzeHandler extracts features and explains the match for one resume
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.analyze")
	defer span.End()

	var req AnalyzeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		writeAppError(w, s.Logger, err)
		return
	}
	span.SetAttributes(attribute.Int("request.resume_length", len(req.ResumeText)))

	writeJSON(w, s.Logger, http.StatusOK, s.App.Analyze(ctx, req.Filename, req.ResumeText, req.Role))
}

// adviseHandler returns comprehensive career advice
func (s *Server) adviseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.advise")
	defer span.End()

	var req AdviseRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		writeAppError(w, s.Logger, err)
		return
	}
	level, err := types.ResolveExperienceLevel(req.Level)
	if err != nil {
		span.RecordError(err)
		writeAppError(w, s.Logger, errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), nil))
		return
	}

	outcome := s.App.Advise(ctx, req.ResumeText, req.Role, level)
	span.SetAttributes(
		attribute.String("response.source", string(outcome.Source)),
		attribute.Int("response.score", outcome.Advice.OverallScore),
	)
	writeJSON(w, s.Logger, http.StatusOK, outcome)
}

// feedbackHandler returns formatting and content feedback
func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.feedback")
	defer span.End()

	var req FeedbackRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		writeAppError(w, s.Logger, err)
		return
	}

	outcome := s.App.Feedback(ctx, req.ResumeText)
	span.SetAttributes(attribute.String("response.source", string(outcome.Source)))
	writeJSON(w, s.Logger, http.StatusOK, outcome)
}

// skillsHandler extracts skills and recommends a development plan
func (s *Server) skillsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "api.skills")
	defer span.End()

	var req SkillsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		span.RecordError(err)
		writeAppError(w, s.Logger, err)
		return
	}

	outcome := s.App.Skills(ctx, req.ResumeText, req.Role)
	span.SetAttributes(
		attribute.String("response.source", string(outcome.Source)),
		attribute.Int("response.current_skills", len(outcome.CurrentSkills)),
	)
	writeJSON(w, s.Logger, http.StatusOK, outcome)
}
