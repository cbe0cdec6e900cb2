// Package faceapi is a client for the upstream face recognition API.
// Every call authenticates with the caller's identity token; the client itself
// holds no credentials.
package faceapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/face-portal/internal/constants"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client represents a client for the face recognition API
type Client struct {
	URL        string
	parsedURL  *url.URL
	httpClient *http.Client
	captureDir string
	timeouts   timeouts
}

// timeouts are the fixed wait bounds per upstream operation.
type timeouts struct {
	upstream  time.Duration
	recognize time.Duration
	delete    time.Duration
}

var defaultTimeouts = timeouts{
	upstream:  constants.UpstreamTimeout,
	recognize: constants.RecognizeTimeout,
	delete:    constants.DeleteTimeout,
}

// NewClient creates a new face recognition API client
func NewClient(rawURL string) (*Client, error) {
	return NewClientWithCapture(rawURL, "")
}

// NewClientWithCapture creates a new client with optional response capturing.
// Pass an empty captureDir to disable capturing.
func NewClientWithCapture(rawURL, captureDir string) (*Client, error) {
	apiURL := strings.TrimRight(rawURL, "/")
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid face recognition API URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid face recognition API URL %q: scheme must be http or https", rawURL)
	}

	c := &Client{
		URL:       apiURL,
		parsedURL: parsed,
		// Timeouts are applied per call through the request context.
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeouts:   defaultTimeouts,
	}
	if captureDir != "" {
		if err := c.SetCaptureDir(captureDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// resolveURL builds a full URL from the base API URL and the given path segments.
// Segments are expected to be path-escaped already.
func (c *Client) resolveURL(pathSegments ...string) string {
	if len(pathSegments) == 0 {
		return c.parsedURL.String()
	}
	return c.parsedURL.JoinPath(pathSegments...).String()
}

// SetCaptureDir enables API response capturing to the specified directory.
// Pass an empty string to disable capturing.
func (c *Client) SetCaptureDir(dir string) error {
	if dir == "" {
		c.captureDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create capture directory: %w", err)
	}
	c.captureDir = dir
	return nil
}

// captureResponse saves a JSON response body to a file if capturing is enabled.
func (c *Client) captureResponse(endpoint string, body []byte) {
	if c.captureDir == "" || !json.Valid(body) {
		return
	}

	// Sanitize endpoint for filename
	filename := strings.ReplaceAll(endpoint, "/", "_")
	filename = strings.TrimPrefix(filename, "_")
	timestamp := time.Now().Format("20060102_150405")
	filename = fmt.Sprintf("%s_%s.json", filename, timestamp)

	path := filepath.Join(c.captureDir, filename)

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err == nil {
		body = prettyJSON.Bytes()
	}

	// WriteFile error is non-critical for capturing - log and continue
	if err := os.WriteFile(path, body, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to capture response to %s: %v\n", path, err)
	}
}
