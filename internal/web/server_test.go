package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kozaktomas/face-portal/internal/config"
	"github.com/kozaktomas/face-portal/internal/faceapi"
)

func newTestServer(t *testing.T, upstream http.Handler) *Server {
	t.Helper()

	backend := httptest.NewServer(upstream)
	t.Cleanup(backend.Close)

	client, err := faceapi.NewClient(backend.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 0, Host: "127.0.0.1"},
		CORS:   config.CORSConfig{Origins: []string{"https://identify.mavistech.cloud"}},
		Delete: config.DeleteConfig{Concurrency: 1},
	}
	return NewServer(cfg, client)
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"status":"UP"`) {
		t.Errorf("unexpected body: %s", recorder.Body.String())
	}
}

func TestRoutes_IdentityRequired(t *testing.T) {
	var upstreamCalls atomic.Int32
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/proxy/faces/list"},
		{http.MethodDelete, "/api/proxy/faces/deletebyname"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"name":"Ann"}`))
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Errorf("%s %s: expected status 400, got %d", tc.method, tc.path, recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), "X-Portal-UID header is required") {
			t.Errorf("%s %s: unexpected body %s", tc.method, tc.path, recorder.Body.String())
		}
	}

	if n := upstreamCalls.Load(); n != 0 {
		t.Errorf("expected no upstream calls, got %d", n)
	}
}

func TestRoutes_ListFacesForwardsIdentity(t *testing.T) {
	s := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/faces/list" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authentication"); got != "device-9" {
			t.Errorf("expected Authentication 'device-9', got '%s'", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"registered_face_entries":[]}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/proxy/faces/list", nil)
	req.Header.Set("X-Portal-UID", "device-9")
	req.Header.Set("Origin", "https://identify.mavistech.cloud")
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "https://identify.mavistech.cloud" {
		t.Error("expected CORS header on proxied response")
	}
}

func TestRoutes_MethodMismatch(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/proxy/register", nil)
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", recorder.Code)
	}
}

func TestRoutes_Metrics(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())

	// Generate at least one observation.
	s.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "face_portal_http_requests_total") {
		t.Error("expected http request counter in exposition")
	}
}
