package faceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrTimeout means the upstream accepted the request but did not answer within
	// the fixed wait bound.
	ErrTimeout = errors.New("upstream request timed out")

	// ErrUnavailable means no response was received at all (refused, reset, DNS).
	ErrUnavailable = errors.New("upstream unavailable")
)

// StatusError is returned when the upstream answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message())
}

// Message extracts a human-readable reason: the "error" field of a JSON object
// body, else the body text, else the status text.
func (e *StatusError) Message() string {
	var obj struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &obj); err == nil {
		if s, ok := obj.Error.(string); ok && s != "" {
			return s
		}
	}
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		return body
	}
	return http.StatusText(e.StatusCode)
}

// IsNotFoundError returns true if the error indicates a 404 Not Found response.
func IsNotFoundError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// HTTPStatus maps an upstream error to the status reported to our caller:
// the upstream status for rejections, 504 for timeouts, 503 when unreachable
// and 500 for anything else.
func HTTPStatus(err error) int {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.StatusCode
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the reason to report for a failed upstream call.
func ErrorMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message()
	}
	return err.Error()
}

// classifyTransportError tags errors from http.Client.Do with ErrTimeout or ErrUnavailable.
func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// outcomeOf labels a transport error for metrics.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
