package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"time"

	"resumatch/internal/errors"

	"github.com/go-playground/validator/v10"
)

const healthCheckTimeout = 10 * time.Second

// healthHandler reports service status including AI model availability.
// Scoring works without a model, so a missing model degrades but does not fail.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	models := s.App.ModelInfo(ctx)

	status := "healthy"
	for _, info := range models {
		if !info.Available {
			status = "degraded"
			break
		}
	}

	writeJSON(w, s.Logger, http.StatusOK, map[string]any{
		"status":    status,
		"service":   "resumatch",
		"version":   s.Version,
		"ai_models": models,
		"roles":     s.App.Knowledge.Roles(),
	})
}

// statsHandler reports limits and circuit breaker state
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, http.StatusOK, map[string]any{
		"service": "resumatch",
		"version": s.Version,
		"server": map[string]any{
			"max_upload_size_bytes": s.MaxUploadSize,
			"max_files":             s.MaxFiles,
			"tls_mode":              s.TLSConfig.Mode,
		},
		"embeddings_enabled": s.App.Config.Embedding.Enabled,
		"circuit_breakers":   s.App.BreakerStats(),
	})
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses a JSON body into v, trims its string fields and
// runs struct validation. Every failure is a validation AppError.
func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := parseJSONRequest(r, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid request body", err)
	}
	trimStrings(v)

	if err := s.validator.Struct(v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, validationMessage(err), nil)
	}
	return nil
}

// trimStrings trims surrounding whitespace from every string field of *v
func trimStrings(v any) {
	rv := reflect.ValueOf(v).Elem()
	for i := range rv.NumField() {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "invalid request"
	}
	ve := validationErrors[0]
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%s field is required", ve.Field())
	case "max":
		return fmt.Sprintf("%s exceeds the maximum length of %s", ve.Field(), ve.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", ve.Field(), ve.Tag())
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}

// bodyError describes a body read failure, naming the limit when it was exceeded
func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
	}
	return fmt.Errorf("failed to read request body: %w", err)
}

// writeAppError maps validation errors to 400 and everything else to 500
func writeAppError(w http.ResponseWriter, logger *errors.Logger, err error) {
	status := http.StatusInternalServerError
	if errors.IsType(err, errors.ErrorTypeValidation) {
		status = http.StatusBadRequest
	} else {
		logger.LogError(err, "Request failed")
	}

	response := ErrorResponse{Error: "Internal server error", Message: err.Error()}
	if appErr, ok := errors.As(err); ok {
		response.Error = appErr.Message
		response.Message = ""
		if appErr.Cause != nil {
			response.Message = appErr.Cause.Error()
		}
	}
	writeJSON(w, logger, status, response)
}

func writeJSON(w http.ResponseWriter, logger *errors.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}
