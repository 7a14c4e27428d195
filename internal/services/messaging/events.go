package messaging

import (
	"github.com/rs/zerolog"

	"farmwatch/internal/models"
)

const (
	SubjectAlertSent      = "alerts.sent"
	SubjectJobCompleted   = "jobs.completed"
	SubjectLiveDetections = "live.detections"
)

// Events publishes domain events under a subject prefix. A nil *Events or a
// nil publisher drops events silently.
type Events struct {
	publisher models.MessagePublisher
	prefix    string
	logger    zerolog.Logger
}

func NewEvents(publisher models.MessagePublisher, prefix string, logger zerolog.Logger) *Events {
	return &Events{
		publisher: publisher,
		prefix:    prefix,
		logger:    logger,
	}
}

// Subject returns the full subject name for suffix.
func (e *Events) Subject(suffix string) string {
	if e.prefix == "" {
		return suffix
	}
	return e.prefix + "." + suffix
}

func (e *Events) PublishAlertSent(event models.AlertEvent) {
	e.publish(SubjectAlertSent, event)
}

func (e *Events) PublishJobCompleted(event models.JobCompletedEvent) {
	e.publish(SubjectJobCompleted, event)
}

func (e *Events) PublishLiveDetections(event models.LiveDetectionEvent) {
	e.publish(SubjectLiveDetections, event)
}

func (e *Events) publish(suffix string, data interface{}) {
	if e == nil || e.publisher == nil {
		return
	}
	subject := e.Subject(suffix)
	if err := e.publisher.Publish(subject, data); err != nil {
		e.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
		return
	}
	e.logger.Debug().Str("subject", subject).Msg("Published event")
}
