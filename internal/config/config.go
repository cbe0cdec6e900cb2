package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig
	FaceRec   FaceRecConfig
	CORS      CORSConfig
	TLS       TLSConfig
	Delete    DeleteConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port int    `env:"PORT" envDefault:"8004"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
}

type FaceRecConfig struct {
	URL string `env:"FACE_REC_API_URL"` // base URL of the upstream face recognition API
}

type CORSConfig struct {
	Origins        []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"https://identify.mavistech.cloud"`
	AllowLocalhost bool     `env:"CORS_ALLOW_LOCALHOST" envDefault:"false"` // permit http(s)://localhost:* for development
}

type TLSConfig struct {
	KeyPath  string `env:"SSL_PRIVATE_KEY_PATH"`
	CertPath string `env:"SSL_FULLCHAIN_CERT_PATH"`
}

// Available reports whether both the private key and certificate chain exist on disk.
func (c *TLSConfig) Available() bool {
	if c.KeyPath == "" || c.CertPath == "" {
		return false
	}
	for _, p := range []string{c.KeyPath, c.CertPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

type DeleteConfig struct {
	Concurrency int `env:"DELETE_CONCURRENCY" envDefault:"1"` // parallel per-id deletes, 1 = sequential
}

type TelemetryConfig struct {
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// ErrMissingFaceRecURL is returned by RequireUpstream when FACE_REC_API_URL is unset.
var ErrMissingFaceRecURL = errors.New("FACE_REC_API_URL environment variable is required")

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.FaceRec.URL = strings.TrimRight(strings.TrimSpace(cfg.FaceRec.URL), "/")
	cfg.CORS.Origins = trimOrigins(cfg.CORS.Origins)
	if cfg.Delete.Concurrency < 1 {
		cfg.Delete.Concurrency = 1
	}
	return &cfg, nil
}

// RequireUpstream returns an error if the upstream API URL is not configured.
func (c *Config) RequireUpstream() error {
	if c.FaceRec.URL == "" {
		return ErrMissingFaceRecURL
	}
	return nil
}

func trimOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
