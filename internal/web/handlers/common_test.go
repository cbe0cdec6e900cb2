package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-portal/internal/faceapi"
)

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("Ann\r\nfake entry"); got != "Annfake entry" {
		t.Errorf("expected newlines stripped, got %q", got)
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "UP" {
		t.Errorf("expected status 'UP', got '%s'", result["status"])
	}
	if result["message"] != "Proxy backend is running" {
		t.Errorf("unexpected message '%s'", result["message"])
	}
}

func TestRelayResponse(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Result", "REGISTERED")
	header.Set("X-Response-Type", "info")
	header.Set("X-Response-Text", "Face saved")
	header.Set("X-Internal", "secret")

	recorder := httptest.NewRecorder()
	relayResponse(recorder, &faceapi.Response{
		StatusCode: http.StatusCreated,
		Header:     header,
		Body:       []byte(`{"ok":true}`),
	}, "fallback")

	assertStatusCode(t, recorder, http.StatusCreated)
	assertContentType(t, recorder, "application/json; charset=utf-8")
	if recorder.Body.String() != `{"ok":true}` {
		t.Errorf("expected body relayed verbatim, got %s", recorder.Body.String())
	}
	for _, name := range []string{"Result", "X-Response-Type", "X-Response-Text"} {
		if recorder.Header().Get(name) != header.Get(name) {
			t.Errorf("expected header %s relayed", name)
		}
	}
	if recorder.Header().Get("X-Internal") != "" {
		t.Error("expected unrelated upstream headers dropped")
	}
}

func TestRelayResponse_EmptyRejection(t *testing.T) {
	recorder := httptest.NewRecorder()
	relayResponse(recorder, &faceapi.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}, "Backend API error")

	assertStatusCode(t, recorder, http.StatusBadGateway)

	var result errorResponse
	parseJSONResponse(t, recorder, &result)
	if result.Error != "Backend API error" {
		t.Errorf("expected fallback error, got '%s'", result.Error)
	}
	if result.BackendStatus != http.StatusBadGateway {
		t.Errorf("expected backend_status 502, got %d", result.BackendStatus)
	}
	if result.Details == "" {
		t.Error("expected details in fallback")
	}
}

func TestRespondUpstreamError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "timeout",
			err:            fmt.Errorf("could not send request: %w", faceapi.ErrTimeout),
			expectedStatus: http.StatusGatewayTimeout,
			expectedError:  "Connection to backend API timed out",
		},
		{
			name:           "unavailable",
			err:            fmt.Errorf("could not send request: %w", faceapi.ErrUnavailable),
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "Could not connect to backend API (no response)",
		},
		{
			name:           "preparation failure",
			err:            errors.New("image data is required"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "An error occurred while preparing the request",
		},
		{
			name:           "upstream rejection",
			err:            fmt.Errorf("list faces: %w", &faceapi.StatusError{StatusCode: http.StatusUnauthorized, Header: http.Header{}, Body: []byte(`{"error":"bad uid"}`)}),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "bad uid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondUpstreamError(recorder, tt.err, registerMessages)

			assertStatusCode(t, recorder, tt.expectedStatus)
			assertJSONError(t, recorder, tt.expectedError)
		})
	}
}

func TestRespondUpstreamError_RecognizeUnavailable(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondUpstreamError(recorder, faceapi.ErrUnavailable, recognizeMessages)

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "Could not connect to backend API (no response for recognition)")
}
