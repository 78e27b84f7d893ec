// Package main is the entry point for the mailyard ingestion server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailyard/mailyard/internal/blob"
	"github.com/mailyard/mailyard/internal/config"
	"github.com/mailyard/mailyard/internal/ingest"
	"github.com/mailyard/mailyard/internal/smtp"
	"github.com/mailyard/mailyard/internal/store"
	smtptls "github.com/mailyard/mailyard/internal/tls"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	// Load or generate TLS certificates
	tlsConfig, err := smtptls.Load(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		slog.Error("failed to setup TLS", "error", err)
		os.Exit(1)
	}

	tlsMode := "self-signed"
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		tlsMode = "file"
	}

	// Open the message store; its lifecycle is the process lifecycle and the
	// handle is passed explicitly into the coordinator.
	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open message store", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	blobs := selectBlobStore(cfg)

	coordinator := ingest.NewCoordinator(ingest.CoordinatorConfig{
		Storage:       st,
		Blobs:         blobs,
		ThreadRetries: cfg.Ingest.ThreadRetries,
	})

	// Create SMTP server
	server := smtp.New(smtp.ServerConfig{
		ListenAddr:     cfg.SMTP.Listen,
		Hostname:       cfg.SMTP.Hostname,
		Ingestor:       coordinator,
		TLSConfig:      tlsConfig,
		MaxMessageSize: cfg.SMTP.MaxMessageSize,
	})

	slog.Info("starting mailyard",
		"listen", cfg.SMTP.Listen,
		"storage", cfg.Storage.Path,
		"blob_backend", blobs.Name(),
		"tls_mode", tlsMode,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	// Start the server (blocks until context is cancelled)
	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("mailyard stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectBlobStore chooses the content storage backend based on configuration.
// With no directory configured, HTML bodies and attachment bytes are
// discarded; the database keeps the retrieval keys either way.
func selectBlobStore(cfg *config.Config) blob.Store {
	if cfg.Blob.Dir == "" {
		slog.Info("no blob directory configured, discarding message content blobs")
		return blob.NewDiscard()
	}

	d, err := blob.NewDirStore(cfg.Blob.Dir)
	if err != nil {
		slog.Error("failed to create blob directory store", "dir", cfg.Blob.Dir, "error", err)
		os.Exit(1)
	}
	slog.Info("using directory blob store", "dir", cfg.Blob.Dir)
	return d
}
