package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/YassineKADER/Drawniness-Iot-Project/config"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/auth"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/db"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/handlers"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/notify"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/services"
	"github.com/YassineKADER/Drawniness-Iot-Project/internal/store"
)

// Server wraps the HTTP server, router and the process-wide resources they
// depend on: the store adapter, the notifier and the credential service.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      *store.InfluxStore
	notifier   *notify.Notifier
	logger     *zap.Logger
}

// New constructs a Server. It fails when the signing secret is absent or the
// time-series store is unreachable; the process must not start half-wired.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	creds, err := auth.New(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	influxClient, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	influxStore := store.NewInfluxStore(influxClient, cfg.Influx.Database, logger)

	notifier, err := notify.FromConfig(ctx, cfg.Notify)
	if err != nil {
		_ = influxStore.Close()
		return nil, err
	}

	userService := services.NewUserService(influxStore, creds)

	// A typed nil *Notifier must not become a non-nil interface.
	var telemetryNotifier services.Notifier
	if notifier != nil {
		telemetryNotifier = notifier
	}
	telemetryService := services.NewTelemetryService(influxStore, telemetryNotifier, logger)

	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(influxStore))
	handlers.AuthRouter(router, userService, creds, tokenTTL, logger)
	handlers.TelemetryRouter(router, telemetryService, handlers.RequireAuth(creds), logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		store:      influxStore,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the store and notifier.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.notifier != nil {
		_ = s.notifier.Close()
	}
	_ = s.store.Close()
	return err
}
