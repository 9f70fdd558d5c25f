package rest

import (
	"classifieds-browser/internal/core/port"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты API
func NewRouter(handler *BrowseHandler, allowedOrigins []string, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ads", handler.GetAds)
		r.Get("/ads/{adID}", handler.GetAd)
		r.Get("/ads/{adID}/image", handler.GetAdImage)

		r.Put("/favorites/{adID}", handler.AddFavorite)
		r.Delete("/favorites/{adID}", handler.RemoveFavorite)
		r.Delete("/favorites", handler.PurgeFavorites)

		r.Post("/catalog/refresh", handler.RefreshCatalog)
		r.Post("/system/free-resources", handler.FreeResources)
	})

	return r
}

func NewServer(port string, handler *BrowseHandler, allowedOrigins []string, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           NewRouter(handler, allowedOrigins, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
