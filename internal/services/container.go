package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"farmwatch/internal/config"
	"farmwatch/internal/logging"
	"farmwatch/internal/models"
	"farmwatch/internal/services/annotation"
	"farmwatch/internal/services/detection"
	"farmwatch/internal/services/history"
	"farmwatch/internal/services/jobs"
	"farmwatch/internal/services/livestream"
	"farmwatch/internal/services/messaging"
	"farmwatch/internal/services/notification"
	"farmwatch/internal/services/pipeline"
	"farmwatch/internal/services/publisher/mjpeg"
	"farmwatch/internal/video"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config     *config.Config
	Detector   *detection.Service
	Pipeline   *pipeline.Pipeline
	History    *history.Store
	Notifier   *notification.Service
	Dispatcher *notification.Dispatcher
	Messaging  *messaging.Service
	Events     *messaging.Events
	Jobs       *jobs.Tracker
	Runner     *jobs.Runner
	Preview    *mjpeg.Publisher
	Live       *livestream.Controller

	stopDispatcher context.CancelFunc
}

// NewServiceContainer creates a new service container. Missing optional
// dependencies (detector, SMTP, NATS) degrade the service instead of failing.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	sc := &ServiceContainer{Config: cfg}

	// Detection model client
	detLogger := logging.NewServiceLogger(cfg, "detection")
	var client detection.ModelClient
	grpcClient, err := detection.NewGRPCClient(cfg.DetectorGRPCURL, detLogger)
	if err != nil {
		detLogger.Error().Err(err).Str("endpoint", cfg.DetectorGRPCURL).Msg("Failed to create detector client")
	} else {
		client = grpcClient
	}
	sc.Detector = detection.NewService(client, cfg.ConfidenceThreshold, cfg.DetectorTimeout, detLogger)
	if cfg.SpeciesConfigPath != "" {
		overrides, err := detection.LoadOverrides(cfg.SpeciesConfigPath)
		if err != nil {
			return nil, err
		}
		if err := sc.Detector.ApplyOverrides(overrides); err != nil {
			return nil, err
		}
	}

	// Video pipeline
	encode := models.EncodeOptions{
		Quality:   cfg.ImageQuality,
		MaxWidth:  cfg.MaxImageWidth,
		MaxHeight: cfg.MaxImageHeight,
	}
	sc.Pipeline = pipeline.New(
		video.NewIO(),
		sc.Detector,
		annotation.NewAnnotator(logging.NewServiceLogger(cfg, "annotation")),
		encode,
		logging.NewServiceLogger(cfg, "pipeline"),
	)

	sc.History = history.NewStore(cfg.HistoryFile, cfg.HistoryLimit, logging.NewServiceLogger(cfg, "history"))

	// Email alerts
	alertLogger := logging.NewServiceLogger(cfg, "notification")
	limiter := notification.NewRateLimiter(cfg.RateLimitFile, cfg.MaxEmailsPerHour, cfg.MinAlertInterval, alertLogger)
	transport := notification.NewSMTPTransport(notification.SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		FromName: cfg.FromName,
		Timeout:  cfg.SMTPTimeout,
	})
	sc.Notifier = notification.NewService(notification.Options{
		Configured:       cfg.EmailConfigured(),
		DefaultRecipient: cfg.AlertEmail,
	}, transport, limiter, sc.Detector, alertLogger)
	if !sc.Notifier.Configured() {
		alertLogger.Warn().Msg("Email credentials not configured, alerts are disabled")
	}

	sc.Dispatcher = notification.NewDispatcher(sc.Notifier, cfg.AlertQueueSize, cfg.AlertRetries, cfg.AlertBackoffMax, logging.NewServiceLogger(cfg, "alerts"))
	dispatchCtx, cancel := context.WithCancel(context.Background())
	sc.stopDispatcher = cancel
	sc.Dispatcher.Start(dispatchCtx)

	// Events
	eventsLogger := logging.NewServiceLogger(cfg, "messaging")
	var publisher models.MessagePublisher
	if cfg.NatsEnabled {
		msg, err := messaging.NewService(cfg, eventsLogger)
		if err != nil {
			eventsLogger.Warn().Err(err).Str("url", cfg.NatsURL).Msg("NATS unavailable, events are disabled")
		} else {
			sc.Messaging = msg
			publisher = msg
		}
	}
	sc.Events = messaging.NewEvents(publisher, cfg.EventsSubjectPrefix, eventsLogger)
	sc.Notifier.SetPublisher(sc.Events)

	// Batch jobs
	sc.Jobs = jobs.NewTracker()
	sc.Runner = jobs.NewRunner(sc.Pipeline, sc.Jobs, sc.History, sc.Dispatcher, sc.Events, cfg.ProcessedDir, logging.NewServiceLogger(cfg, "jobs"))

	// Live stream
	liveLogger := logging.NewServiceLogger(cfg, "livestream")
	sc.Preview = mjpeg.NewPublisher(func() ([]byte, error) {
		return annotation.Placeholder("No active stream", cfg.ImageQuality)
	}, liveLogger)
	sc.Live = livestream.NewController(sc.Pipeline, sc.Preview, sc.Dispatcher, sc.Events, livestream.Options{
		SampleInterval: cfg.LiveSampleInterval,
		StopTimeout:    cfg.LiveStopTimeout,
	}, liveLogger)

	log.Info().
		Bool("detector_ready", sc.Detector.ModelLoaded()).
		Bool("email_configured", sc.Notifier.Configured()).
		Bool("events_enabled", sc.Messaging != nil).
		Msg("Services initialized")

	return sc, nil
}

// Shutdown gracefully shuts down all services. The HTTP server must already
// be stopped so no new jobs or streams are started.
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	var errs []error

	if sc.Live != nil {
		if err := sc.Live.Stop(); err != nil && !errors.Is(err, livestream.ErrNotActive) {
			errs = append(errs, err)
		}
	}
	if sc.Runner != nil {
		if err := sc.Runner.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if sc.Preview != nil {
		sc.Preview.Shutdown()
	}
	if sc.Dispatcher != nil {
		sc.Dispatcher.Stop()
		sc.stopDispatcher()
	}
	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if sc.Detector != nil {
		if err := sc.Detector.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
