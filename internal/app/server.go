package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/estavel/ingesta/internal/api/handlers"
	appMiddleware "github.com/estavel/ingesta/internal/api/middlewares"
	"github.com/estavel/ingesta/internal/config"
	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes. When no JWT secret is configured
// the ingest endpoint is left open (local development).
func NewServer(cfg *config.Config, ingest *services.IngestService, search *services.SearchService, obj core.ObjectClient, logger *slog.Logger) *Server {
	ingestHandler := handlers.NewIngestHandler(ingest, obj, logger)
	searchHandler := handlers.NewSearchHandler(search, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Get("/healthz", handlers.Healthz)
		api.Post("/search", searchHandler.Search)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			if cfg.JWTSecret != "" {
				protected.Use(appMiddleware.JWT(cfg.JWTSecret))
			}
			protected.Post("/documents/ingest", ingestHandler.IngestDocument)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
