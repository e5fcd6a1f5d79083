package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"toy-catalog/internal/config"
	custommiddleware "toy-catalog/internal/middleware"
	"toy-catalog/internal/repository"
	"toy-catalog/internal/service"
	"toy-catalog/internal/storage"
	"toy-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker reports backend status for /health
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Dependencies are the backends chosen at startup.
type Dependencies struct {
	Toys   repository.ToyRepository
	Users  repository.UserRepository
	Images storage.ImageStore
	// Static serves stored uploads under the public path. Nil when the
	// store is not local.
	Static http.FileSystem
	Health HealthChecker
	// Redis enables rate limiting when set.
	Redis *redis.Client
	// Closers run in order on Close.
	Closers []func() error
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// NewRouter wires middleware, handlers and static uploads onto a chi router.
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.IsProduction()))

	if deps.Redis != nil {
		router.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	router.Get("/health", healthHandler(deps.Health))

	toyService := service.NewToyService(deps.Toys, deps.Images, cfg.ImagePublicPath())
	userService := service.NewUserService(deps.Users)

	uploads := transport.UploadLimits{
		MaxFileSize: cfg.Uploads.MaxFileSize,
		MaxFiles:    cfg.Uploads.MaxFiles,
	}

	transport.NewToyHandler(toyService, uploads, logger).RegisterRoutes(router)
	transport.NewUserHandler(userService, logger).RegisterRoutes(router)

	if deps.Static != nil && cfg.Uploads.PublicPath != "" {
		prefix := cfg.Uploads.PublicPath
		router.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(deps.Static)))
	}

	return router
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{"status": "ok"}
		status := http.StatusOK

		if checker != nil {
			db := checker.Health(r.Context())
			resp["database"] = db
			if db["status"] != "up" {
				resp["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		custommiddleware.RespondWithJSON(w, status, resp)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for _, closeFn := range s.deps.Closers {
		if err := closeFn(); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
