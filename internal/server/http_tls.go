package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil
	case "server":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}

	reloader, err := NewKeyPairReloader(s.TLSConfig.CertFile, s.TLSConfig.KeyFile, s.TLSConfig.DebounceDelay, s.Logger)
	if err != nil {
		return err
	}
	if s.TLSConfig.AutoReload {
		if err := reloader.Start(); err != nil {
			return fmt.Errorf("failed to start certificate watcher: %w", err)
		}
	}
	s.reloader = reloader

	httpServer.TLSConfig = &tls.Config{
		MinVersion:     tlsVersion(s.TLSConfig.MinVersion),
		GetCertificate: reloader.GetCertificate,
	}
	return nil
}

// tlsVersion maps a configured minimum version, defaulting to TLS 1.2
func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
