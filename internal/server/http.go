package server

import (
	"time"

	"resumatch/internal/app"
	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/go-playground/validator/v10"
)

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
	Role       string `json:"role" validate:"required,max=200"`
	Filename   string `json:"filename,omitempty" validate:"max=255"`
}

// AdviseRequest is the body of POST /advise. Level may be a full label or
// one of entry, mid, senior, lead; empty means mid.
type AdviseRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
	Role       string `json:"role" validate:"required,max=200"`
	Level      string `json:"level,omitempty" validate:"max=64"`
}

// FeedbackRequest is the body of POST /feedback
type FeedbackRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
}

// SkillsRequest is the body of POST /skills
type SkillsRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
	Role       string `json:"role" validate:"required,max=200"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// TLS Configuration
	TLSConfig config.TLSConfig
	reloader  *KeyPairReloader

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Upload limits
	MaxUploadSize int64
	MaxFiles      int

	App       *app.App
	Logger    *errors.Logger
	validator *validator.Validate
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host          string
	Port          string
	Version       string
	TLSConfig     config.TLSConfig
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxUploadSize int64
	MaxFiles      int
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(a *app.App, cfg ServerConfig, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Server{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Version:       cfg.Version,
		TLSConfig:     cfg.TLSConfig,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		IdleTimeout:   cfg.IdleTimeout,
		MaxUploadSize: cfg.MaxUploadSize,
		MaxFiles:      cfg.MaxFiles,
		App:           a,
		Logger:        logger,
		validator:     newValidator(),
	}
}
