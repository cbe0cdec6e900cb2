// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Upstream timeouts
const (
	// UpstreamTimeout bounds simple upstream calls (register, list)
	UpstreamTimeout = 30 * time.Second

	// RecognizeTimeout bounds the wait for recognition response headers.
	// The streamed body is not covered.
	RecognizeTimeout = 45 * time.Second

	// DeleteTimeout bounds each single-entry delete issued by delete-by-name
	DeleteTimeout = 15 * time.Second
)

// Server constants
const (
	// DefaultPort is the port the gateway listens on when neither flag nor env sets one
	DefaultPort = 8004

	// ShutdownTimeout is how long in-flight requests get during graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

// File upload constants
const (
	// MaxUploadSize is the maximum accepted multipart request size in bytes (100MB)
	MaxUploadSize = 100 << 20

	// MaxUploadMemory is how much of a multipart form is kept in memory before spilling to disk
	MaxUploadMemory = 32 << 20
)

// Header names shared between the browser client, this gateway and the upstream API
const (
	// IdentityHeader carries the caller's identity token on JSON endpoints
	IdentityHeader = "X-Portal-UID"

	// AuthenticationHeader carries the identity token to the upstream API
	AuthenticationHeader = "Authentication"

	// ResultHeader is the upstream result code header
	ResultHeader = "Result"

	// ResponseTypeHeader is the upstream response-type tag header
	ResponseTypeHeader = "X-Response-Type"

	// ResponseTextHeader is the upstream human-readable response text header
	ResponseTextHeader = "X-Response-Text"
)

// RelayedHeaders lists the custom upstream headers copied back to the caller.
var RelayedHeaders = []string{ResultHeader, ResponseTypeHeader, ResponseTextHeader}
