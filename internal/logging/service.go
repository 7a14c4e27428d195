package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"farmwatch/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("worker_id", cfg.WorkerID).Str("service", service).Logger()
}

func WithJob(base zerolog.Logger, jobID string) zerolog.Logger {
	return base.With().Str("job_id", jobID).Logger()
}

// WithStream tags a logger with the live source. Credentials embedded in the
// URL are never logged.
func WithStream(base zerolog.Logger, sourceURL string) zerolog.Logger {
	return base.With().Str("source", RedactURL(sourceURL)).Logger()
}
