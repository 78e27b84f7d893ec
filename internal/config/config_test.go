package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every configuration environment variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SMTP_LISTEN", "SMTP_HOSTNAME", "SMTP_MAX_MESSAGE_SIZE",
		"STORAGE_PATH", "BLOB_DIR", "INGEST_THREAD_RETRIES",
		"TLS_CERT_FILE", "TLS_KEY_FILE", "LOG_LEVEL",
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SMTP.Listen != ":2525" {
		t.Errorf("SMTP.Listen: got %q, want %q", cfg.SMTP.Listen, ":2525")
	}
	if cfg.SMTP.Hostname != "localhost" {
		t.Errorf("SMTP.Hostname: got %q, want %q", cfg.SMTP.Hostname, "localhost")
	}
	if cfg.SMTP.MaxMessageSize != 26214400 {
		t.Errorf("SMTP.MaxMessageSize: got %d, want %d", cfg.SMTP.MaxMessageSize, 26214400)
	}
	if cfg.Storage.Path != "mailyard.db" {
		t.Errorf("Storage.Path: got %q, want %q", cfg.Storage.Path, "mailyard.db")
	}
	if cfg.Blob.Dir != "" {
		t.Errorf("Blob.Dir: got %q, want empty", cfg.Blob.Dir)
	}
	if cfg.Ingest.ThreadRetries != 3 {
		t.Errorf("Ingest.ThreadRetries: got %d, want 3", cfg.Ingest.ThreadRetries)
	}
	if cfg.TLS.CertFile != "" {
		t.Errorf("TLS.CertFile: got %q, want empty", cfg.TLS.CertFile)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("SMTP_LISTEN", ":9025")
	t.Setenv("SMTP_HOSTNAME", "mail.example.com")
	t.Setenv("SMTP_MAX_MESSAGE_SIZE", "10485760")
	t.Setenv("STORAGE_PATH", "/data/mail.db")
	t.Setenv("BLOB_DIR", "/data/blobs")
	t.Setenv("INGEST_THREAD_RETRIES", "5")
	t.Setenv("TLS_CERT_FILE", "/certs/cert.pem")
	t.Setenv("TLS_KEY_FILE", "/certs/key.pem")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SMTP.Listen != ":9025" {
		t.Errorf("SMTP.Listen: got %q, want %q", cfg.SMTP.Listen, ":9025")
	}
	if cfg.SMTP.Hostname != "mail.example.com" {
		t.Errorf("SMTP.Hostname: got %q, want %q", cfg.SMTP.Hostname, "mail.example.com")
	}
	if cfg.SMTP.MaxMessageSize != 10485760 {
		t.Errorf("SMTP.MaxMessageSize: got %d, want %d", cfg.SMTP.MaxMessageSize, 10485760)
	}
	if cfg.Storage.Path != "/data/mail.db" {
		t.Errorf("Storage.Path: got %q, want %q", cfg.Storage.Path, "/data/mail.db")
	}
	if cfg.Blob.Dir != "/data/blobs" {
		t.Errorf("Blob.Dir: got %q, want %q", cfg.Blob.Dir, "/data/blobs")
	}
	if cfg.Ingest.ThreadRetries != 5 {
		t.Errorf("Ingest.ThreadRetries: got %d, want 5", cfg.Ingest.ThreadRetries)
	}
	if cfg.TLS.CertFile != "/certs/cert.pem" {
		t.Errorf("TLS.CertFile: got %q, want %q", cfg.TLS.CertFile, "/certs/cert.pem")
	}
	if cfg.TLS.KeyFile != "/certs/key.pem" {
		t.Errorf("TLS.KeyFile: got %q, want %q", cfg.TLS.KeyFile, "/certs/key.pem")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadFromFile(t *testing.T) {
	yamlContent := `
smtp:
  listen: ":3025"
  hostname: "yaml.example.com"
  max_message_size: 5242880
storage:
  path: "/yaml/mail.db"
blob:
  dir: "/yaml/blobs"
ingest:
  thread_retries: 7
tls:
  cert_file: "/yaml/cert.pem"
  key_file: "/yaml/key.pem"
logging:
  level: "warn"
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SMTP.Listen != ":3025" {
		t.Errorf("SMTP.Listen: got %q, want %q", cfg.SMTP.Listen, ":3025")
	}
	if cfg.SMTP.Hostname != "yaml.example.com" {
		t.Errorf("SMTP.Hostname: got %q, want %q", cfg.SMTP.Hostname, "yaml.example.com")
	}
	if cfg.SMTP.MaxMessageSize != 5242880 {
		t.Errorf("SMTP.MaxMessageSize: got %d, want %d", cfg.SMTP.MaxMessageSize, 5242880)
	}
	if cfg.Storage.Path != "/yaml/mail.db" {
		t.Errorf("Storage.Path: got %q, want %q", cfg.Storage.Path, "/yaml/mail.db")
	}
	if cfg.Blob.Dir != "/yaml/blobs" {
		t.Errorf("Blob.Dir: got %q, want %q", cfg.Blob.Dir, "/yaml/blobs")
	}
	if cfg.Ingest.ThreadRetries != 7 {
		t.Errorf("Ingest.ThreadRetries: got %d, want 7", cfg.Ingest.ThreadRetries)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "warn")
	}
}

func TestLoadFromFile_EnvOverridesYAML(t *testing.T) {
	yamlContent := `
smtp:
  listen: ":3025"
  hostname: "yaml.example.com"
logging:
  level: "warn"
`

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	t.Setenv("SMTP_LISTEN", ":9025")
	t.Setenv("SMTP_HOSTNAME", "")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env var should override YAML
	if cfg.SMTP.Listen != ":9025" {
		t.Errorf("SMTP.Listen: got %q, want %q (env should override YAML)", cfg.SMTP.Listen, ":9025")
	}
	// Empty env var should NOT override YAML value
	if cfg.SMTP.Hostname != "yaml.example.com" {
		t.Errorf("SMTP.Hostname: got %q, want %q (empty env should not override YAML)", cfg.SMTP.Hostname, "yaml.example.com")
	}
	// Env var should override YAML
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level: got %q, want %q (env should override YAML)", cfg.Logging.Level, "error")
	}
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{{invalid yaml"), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidMaxMessageSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_MAX_MESSAGE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Invalid value should be ignored, keeping the default
	if cfg.SMTP.MaxMessageSize != 26214400 {
		t.Errorf("SMTP.MaxMessageSize: got %d, want %d (should keep default for invalid input)", cfg.SMTP.MaxMessageSize, 26214400)
	}
}

func TestLoad_InvalidThreadRetries(t *testing.T) {
	clearEnv(t)
	t.Setenv("INGEST_THREAD_RETRIES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Non-positive retry counts keep the default
	if cfg.Ingest.ThreadRetries != 3 {
		t.Errorf("Ingest.ThreadRetries: got %d, want 3 (should keep default for non-positive input)", cfg.Ingest.ThreadRetries)
	}
}
