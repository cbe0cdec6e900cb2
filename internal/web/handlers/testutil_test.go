package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-portal/internal/faceapi"
	"github.com/kozaktomas/face-portal/internal/web/middleware"
)

// setupMockUpstream creates a mock face recognition API for handler tests
func setupMockUpstream(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// createFaceAPIClient creates a client connected to a mock upstream
func createFaceAPIClient(t *testing.T, server *httptest.Server) *faceapi.Client {
	t.Helper()
	client, err := faceapi.NewClient(server.URL)
	if err != nil {
		t.Fatalf("failed to create face API client: %v", err)
	}
	return client
}

// uploadForm describes a multipart request sent by the browser client
type uploadForm struct {
	fields   map[string]string
	filename string
	image    []byte
}

// newUploadRequest builds a multipart request; the image part is omitted when image is nil
func newUploadRequest(t *testing.T, path string, form uploadForm) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range form.fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if form.image != nil {
		part, err := writer.CreateFormFile("image", form.filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(form.image)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithIdentity creates a request carrying an identity token in context
func requestWithIdentity(t *testing.T, method, path, uid, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.SetIdentityInContext(req.Context(), uid)
	return req.WithContext(ctx)
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}

// unreachableURL returns the URL of a server that has already been shut down
func unreachableURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}
