package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-portal/internal/metrics"
	"github.com/kozaktomas/face-portal/internal/web/handlers"
	"github.com/kozaktomas/face-portal/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	// Create handlers
	proxyHandler := handlers.NewProxyHandler(s.client)
	deleteHandler := handlers.NewDeleteHandler(s.deleter)

	s.router.Get("/api/health", handlers.HealthCheck)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api/proxy", func(r chi.Router) {
		// Multipart endpoints carry the uid as a form field
		r.Post("/register", proxyHandler.Register)
		r.Post("/recognize", proxyHandler.Recognize)

		// JSON endpoints carry the uid in the X-Portal-UID header
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity)

			r.Get("/faces/list", proxyHandler.ListFaces)
			r.Delete("/faces/deletebyname", deleteHandler.DeleteByName)
		})
	})
}
