package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"farmwatch/internal/api/handlers"
	"farmwatch/internal/config"
	"farmwatch/internal/services"
	"farmwatch/internal/services/livestream"
)

type Server struct {
	config    *config.Config
	router    *gin.Engine
	server    *http.Server
	container *services.ServiceContainer

	healthHandler    *handlers.HealthHandler
	videoHandler     *handlers.VideoHandler
	liveHandler      *handlers.LiveHandler
	historyHandler   *handlers.HistoryHandler
	detectionHandler *handlers.DetectionHandler
	emailHandler     *handlers.EmailHandler
	systemHandler    *handlers.SystemHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) (*Server, error) {
	if container == nil {
		return nil, errors.New("service container is required")
	}
	if cfg.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		router:    gin.New(),
		container: container,

		healthHandler: handlers.NewHealthHandler(cfg.WorkerID, cfg.Version, cfg.UploadDir, cfg.ProcessedDir, container.Detector, container.Notifier),
		videoHandler: handlers.NewVideoHandler(handlers.UploadSettings{
			UploadDir:         cfg.UploadDir,
			MaxUploadSize:     cfg.MaxUploadSize,
			AllowedExtensions: cfg.AllowedExtensions,
		}, container.Runner, container.Jobs),
		liveHandler:      handlers.NewLiveHandler(container.Live, container.Preview),
		historyHandler:   handlers.NewHistoryHandler(container.History),
		detectionHandler: handlers.NewDetectionHandler(container.Detector),
		emailHandler:     handlers.NewEmailHandler(container.Notifier),
		systemHandler:    handlers.NewSystemHandler(cfg.WorkerID, container.Dispatcher),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s, nil
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting farmwatch API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the live stream, drains HTTP requests, waits for running
// jobs and then releases the services.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping farmwatch API")

	var errs []error
	// MJPEG viewers stay connected while a stream is live.
	if err := s.container.Live.Stop(); err != nil && !errors.Is(err, livestream.ErrNotActive) {
		errs = append(errs, fmt.Errorf("live stream stop: %w", err))
	}
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := s.container.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("services shutdown: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Server) Router() http.Handler {
	return s.router
}
