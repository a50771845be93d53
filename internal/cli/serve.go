package cli

import (
	"fmt"

	"resumatch/internal/config"
	"resumatch/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that exposes resume scoring and advice as a REST API.

Available endpoints:
- POST /rank: Rank uploaded resumes (multipart form: resumes[] files, role)
- POST /analyze: Analyze a resume against a role
- POST /advise: Career advice for a role and experience level
- POST /feedback: Resume formatting and content feedback
- POST /skills: Skill development plan for a role
- GET /health: Health check with AI model status
- GET /stats: Limits and circuit breaker state

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

var serveFlags struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeOverrides copies explicitly set flags over the loaded config
func applyServeOverrides(cmd *cobra.Command, sc config.ServerConfig) config.ServerConfig {
	flags := cmd.Flags()
	if flags.Changed("port") {
		sc.Port = serveFlags.port
	}
	if flags.Changed("host") {
		sc.Host = serveFlags.host
	}
	if flags.Changed("tls-mode") {
		sc.TLS.Mode = serveFlags.tlsMode
	}
	if flags.Changed("cert-file") {
		sc.TLS.CertFile = serveFlags.certFile
	}
	if flags.Changed("key-file") {
		sc.TLS.KeyFile = serveFlags.keyFile
	}
	return sc
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	serverSettings := applyServeOverrides(cmd, cfg.Server)

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: serverSettings}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	a, shutdown, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	serverCfg := server.ServerConfig{
		Host:          serverSettings.Host,
		Port:          serverSettings.Port,
		Version:       Version,
		TLSConfig:     serverSettings.TLS,
		ReadTimeout:   serverSettings.ReadTimeout,
		WriteTimeout:  serverSettings.WriteTimeout,
		IdleTimeout:   serverSettings.IdleTimeout,
		MaxUploadSize: serverSettings.MaxUploadSize,
		MaxFiles:      serverSettings.MaxFiles,
	}
	return server.NewServer(a, serverCfg, logger).Start(cmd.Context())
}
