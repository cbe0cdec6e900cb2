package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/face-portal/internal/config"
	"github.com/kozaktomas/face-portal/internal/faceapi"
	"github.com/kozaktomas/face-portal/internal/facedelete"
	"github.com/kozaktomas/face-portal/internal/web/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server represents the proxy gateway
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	client     *faceapi.Client
	deleter    *facedelete.Deleter
}

// NewServer creates a new gateway forwarding to the upstream reached through client
func NewServer(cfg *config.Config, client *faceapi.Client) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:  cfg,
		router:  r,
		client:  client,
		deleter: facedelete.New(client, facedelete.WithConcurrency(cfg.Delete.Concurrency)),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Metrics)

	// Set up routes
	s.setupRoutes()

	// Create HTTP server. No write timeout: recognition results are streamed.
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           otelhttp.NewHandler(r, "face-portal"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute, // large uploads
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start serves HTTPS when both certificate files exist and plain HTTP otherwise
func (s *Server) Start() error {
	var err error
	if s.config.TLS.Available() {
		log.Printf("Starting HTTPS proxy server on %s", s.httpServer.Addr)
		s.logTargets()
		err = s.httpServer.ListenAndServeTLS(s.config.TLS.CertPath, s.config.TLS.KeyPath)
	} else {
		log.Printf("WARNING: SSL certificate files not found, falling back to HTTP")
		log.Printf("Starting HTTP proxy server on %s", s.httpServer.Addr)
		s.logTargets()
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) logTargets() {
	log.Printf("Proxying to Face Rec API: %s", s.client.URL)
	log.Printf("Accepting requests from origins: %v", s.config.CORS.Origins)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down proxy server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
