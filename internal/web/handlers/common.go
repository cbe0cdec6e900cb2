package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-portal/internal/faceapi"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// errorResponse is the JSON body of every error produced by the gateway itself.
type errorResponse struct {
	Error         string `json:"error"`
	Details       string `json:"details,omitempty"`
	BackendStatus int    `json:"backend_status,omitempty"`
}

// upstreamMessages are the error texts reported for one kind of upstream call.
type upstreamMessages struct {
	// rejected is the fallback body error when the upstream rejects with an empty body
	rejected string
	// unavailable is reported when no response was received
	unavailable string
	// internal is reported for failures that are neither rejections nor transport errors
	internal string
}

var (
	registerMessages = upstreamMessages{
		rejected:    "Backend API error",
		unavailable: "Could not connect to backend API (no response)",
		internal:    "An error occurred while preparing the request",
	}
	recognizeMessages = upstreamMessages{
		rejected:    "Backend API error during recognition",
		unavailable: "Could not connect to backend API (no response for recognition)",
		internal:    "An error occurred while preparing the request",
	}
	listMessages = upstreamMessages{
		rejected:    "Backend API error listing faces",
		unavailable: "Could not connect to backend API (no response)",
		internal:    "An error occurred while preparing the request",
	}
	deleteListMessages = upstreamMessages{
		rejected:    "Failed to list faces for deletion",
		unavailable: "Could not connect to backend API (no response)",
		internal:    "Failed to list faces due to proxy/network error",
	}
)

const timeoutMessage = "Connection to backend API timed out"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// rejectionFallback builds the body sent when the upstream rejected a request without a body.
func rejectionFallback(status int, message string) errorResponse {
	return errorResponse{
		Error:         message,
		Details:       fmt.Sprintf("Request failed with status code %d", status),
		BackendStatus: status,
	}
}

// relayResponse writes a buffered upstream response back to the caller: status,
// custom headers and body. A non-2xx response without a body gets a structured
// fallback error instead.
func relayResponse(w http.ResponseWriter, resp *faceapi.Response, rejected string) {
	resp.RelayHeaders(w.Header())

	if len(resp.Body) == 0 && !resp.IsSuccess() {
		respondJSON(w, resp.StatusCode, rejectionFallback(resp.StatusCode, rejected))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

// respondUpstreamError maps a failed upstream call to the caller-facing status.
// Upstream rejections are relayed, timeouts become 504, unreachable upstreams 503
// and everything else 500.
func respondUpstreamError(w http.ResponseWriter, err error, msgs upstreamMessages) {
	var se *faceapi.StatusError
	switch {
	case errors.As(err, &se):
		relayResponse(w, &faceapi.Response{StatusCode: se.StatusCode, Header: se.Header, Body: se.Body}, msgs.rejected)
	case errors.Is(err, faceapi.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, timeoutMessage)
	case errors.Is(err, faceapi.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, msgs.unavailable)
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: msgs.internal, Details: err.Error()})
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "UP",
		"message": "Proxy backend is running",
	})
}

func logUpstreamError(prefix string, err error) {
	log.Printf("[%s] Error during request to backend API: %v", prefix, err)
}
