package server

import (
	"fmt"
	"net/http"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(httpServer *http.Server) {
	scheme := "http"
	if httpServer.TLSConfig != nil {
		scheme = "https"
	}
	fmt.Printf("Starting server on %s://%s\n", scheme, httpServer.Addr)
	s.displayEndpoints()
	s.displayLimitInfo()
	s.displayAIInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check and AI model status")
	fmt.Println("  GET  /stats     - Limits and circuit breaker state")
	fmt.Println("  POST /rank      - Rank uploaded resumes (multipart: resumes[], role)")
	fmt.Println("  POST /analyze   - Analyze a resume against a role")
	fmt.Println("  POST /advise    - Career advice for a role and level")
	fmt.Println("  POST /feedback  - Resume formatting and content feedback")
	fmt.Println("  POST /skills    - Skill development plan for a role")
}

// displayLimitInfo shows upload limit configuration
func (s *Server) displayLimitInfo() {
	if s.MaxUploadSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxUploadSize, float64(s.MaxUploadSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
	if s.MaxFiles > 0 {
		fmt.Printf("Files per ranking: up to %d\n", s.MaxFiles)
	}
}

// displayAIInfo shows which advice operations have a model behind them
func (s *Server) displayAIInfo() {
	if len(s.App.Generators) == 0 {
		fmt.Println("AI advice: DISABLED (no API key configured, fallback output will be returned)")
		return
	}
	fmt.Printf("AI advice: ENABLED for %d operation(s)\n", len(s.App.Generators))
}
