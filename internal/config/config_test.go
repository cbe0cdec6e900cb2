package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// unsetEnv clears variables for the duration of the test
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "FACE_REC_API_URL", "CORS_ORIGIN", "PORT", "HOST", "DELETE_CONCURRENCY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8004 {
		t.Errorf("expected default port 8004, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if len(cfg.CORS.Origins) != 1 || cfg.CORS.Origins[0] != "https://identify.mavistech.cloud" {
		t.Errorf("unexpected default origins: %v", cfg.CORS.Origins)
	}
	if cfg.Delete.Concurrency != 1 {
		t.Errorf("expected default delete concurrency 1, got %d", cfg.Delete.Concurrency)
	}
}

func TestLoad_TrimsUpstreamURL(t *testing.T) {
	t.Setenv("FACE_REC_API_URL", "  https://faces.example.com/api/ ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FaceRec.URL != "https://faces.example.com/api" {
		t.Errorf("expected trimmed URL, got '%s'", cfg.FaceRec.URL)
	}
}

func TestLoad_MultipleOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGIN", "https://a.example.com, https://b.example.com,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.CORS.Origins) != 2 {
		t.Fatalf("expected 2 origins, got %d: %v", len(cfg.CORS.Origins), cfg.CORS.Origins)
	}
	if cfg.CORS.Origins[1] != "https://b.example.com" {
		t.Errorf("expected second origin 'https://b.example.com', got '%s'", cfg.CORS.Origins[1])
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid PORT")
	}
}

func TestLoad_ConcurrencyClamped(t *testing.T) {
	t.Setenv("DELETE_CONCURRENCY", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Delete.Concurrency != 1 {
		t.Errorf("expected concurrency clamped to 1, got %d", cfg.Delete.Concurrency)
	}
}

func TestRequireUpstream(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireUpstream(); !errors.Is(err, ErrMissingFaceRecURL) {
		t.Errorf("expected ErrMissingFaceRecURL, got %v", err)
	}

	cfg.FaceRec.URL = "http://localhost:9000"
	if err := cfg.RequireUpstream(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestTLSAvailable(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "privkey.pem")
	cert := filepath.Join(dir, "fullchain.pem")

	cfg := TLSConfig{KeyPath: key, CertPath: cert}
	if cfg.Available() {
		t.Error("expected TLS unavailable when files are missing")
	}

	if err := os.WriteFile(key, []byte("key"), 0600); err != nil {
		t.Fatal(err)
	}
	if cfg.Available() {
		t.Error("expected TLS unavailable when certificate is missing")
	}

	if err := os.WriteFile(cert, []byte("cert"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.Available() {
		t.Error("expected TLS available when both files exist")
	}

	empty := TLSConfig{}
	if empty.Available() {
		t.Error("expected TLS unavailable with empty paths")
	}
}
