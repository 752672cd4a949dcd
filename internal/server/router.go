package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler builds the routed http.Handler for s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	setupCommonMiddleware(r, s.logger)
	s.setupRoutes(r)

	return r
}

func setupCommonMiddleware(r *chi.Mux, logger *slog.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLogging(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
}

func (s *Server) setupRoutes(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Post("/", s.handleSubmit)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleAPIGenerate)
		r.Get("/batches/{batchID}", s.handleAPIBatch)
	})

	// The single-segment forms serve the flat layout.
	r.Get("/images/{filename}", s.handleImage)
	r.Get("/images/{batchID}/{filename}", s.handleImage)
	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/download/{batchID}/{filename}", s.handleDownload)
}

func withLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"dur_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
