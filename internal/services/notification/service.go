package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"farmwatch/internal/models"
)

var (
	ErrNotConfigured = errors.New("email not configured")
	ErrNoRecipient   = errors.New("no recipient email address available")
	ErrNoSpecies     = errors.New("no species to alert on")
	ErrRateLimited   = errors.New("alert rate limited")
	// ErrDelivery wraps transport failures. It is the only retryable error.
	ErrDelivery = errors.New("alert delivery failed")
)

// PriorityResolver maps a species to its alert priority.
type PriorityResolver interface {
	PriorityOf(species string) models.Priority
}

// AlertPublisher is told about every delivered alert.
type AlertPublisher interface {
	PublishAlertSent(event models.AlertEvent)
}

type Options struct {
	Configured       bool
	DefaultRecipient string
}

// Service renders and sends detection alerts subject to rate limiting.
type Service struct {
	opts       Options
	transport  Transport
	limiter    *RateLimiter
	priorities PriorityResolver
	events     AlertPublisher
	logger     zerolog.Logger
	now        func() time.Time

	// sendMu makes the rate check, the send and the record one step.
	sendMu sync.Mutex
}

// Statistics is the payload of the email statistics endpoint.
type Statistics struct {
	RateStats
	Configured       bool   `json:"configured"`
	DefaultRecipient string `json:"default_recipient,omitempty"`
}

func NewService(opts Options, transport Transport, limiter *RateLimiter, priorities PriorityResolver, logger zerolog.Logger) *Service {
	return &Service{
		opts:       opts,
		transport:  transport,
		limiter:    limiter,
		priorities: priorities,
		logger:     logger,
		now:        time.Now,
	}
}

// SetPublisher attaches an event publisher for delivered alerts.
func (s *Service) SetPublisher(p AlertPublisher) {
	s.events = p
}

func (s *Service) Configured() bool {
	return s.opts.Configured && s.transport != nil
}

// Notify sends an alert and reports whether it was delivered. Failures are
// logged, never returned.
func (s *Service) Notify(ctx context.Context, req models.AlertRequest) bool {
	return s.Deliver(ctx, req) == nil
}

// Deliver sends an alert. Skips caused by configuration or rate limiting are
// logged at the appropriate level and returned as sentinel errors.
func (s *Service) Deliver(ctx context.Context, req models.AlertRequest) error {
	if !s.Configured() {
		s.logger.Warn().Msg("Email not configured. Skipping alert.")
		return ErrNotConfigured
	}
	if len(req.Species) == 0 {
		return ErrNoSpecies
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	now := s.now()
	key := AlertKey(req.Species)
	if ok, reason := s.limiter.Allow(key, now); !ok {
		s.logger.Info().Str("alert_key", key).Msg("Skipping alert: " + reason)
		return ErrRateLimited
	}

	recipient := lo.Ternary(req.Recipient != "", req.Recipient, s.opts.DefaultRecipient)
	if recipient == "" {
		s.logger.Error().Msg("No recipient email address available")
		return ErrNoRecipient
	}

	priority := s.priorityOf(req.Species)
	rendered, err := Render(priority, req.Species, now, req.Live, len(req.Snapshot) > 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error rendering alert email")
		return err
	}

	msg := Message{
		To:       recipient,
		Subject:  rendered.Subject,
		HTML:     rendered.HTML,
		Snapshot: req.Snapshot,
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("recipient", recipient).Msg("Error sending alert email")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := s.limiter.Record(key, now); err != nil {
		s.logger.Error().Err(err).Msg("Error saving rate limit data")
	}

	s.logger.Info().
		Str("recipient", recipient).
		Strs("species", req.Species).
		Str("priority", string(priority)).
		Bool("live", req.Live).
		Msg("Alert email sent")

	if s.events != nil {
		s.events.PublishAlertSent(models.AlertEvent{
			Species:   req.Species,
			Priority:  priority,
			Recipient: recipient,
			Live:      req.Live,
			SentAt:    now,
		})
	}
	return nil
}

func (s *Service) priorityOf(species []string) models.Priority {
	if s.priorities == nil {
		return models.PriorityLow
	}
	return models.MaxPriority(lo.Map(species, func(sp string, _ int) models.Priority {
		return s.priorities.PriorityOf(sp)
	})...)
}

// TestConfiguration checks SMTP connectivity and credentials.
func (s *Service) TestConfiguration(ctx context.Context) error {
	if !s.Configured() {
		s.logger.Warn().Msg("Email configuration incomplete. Set EMAIL_USER and EMAIL_PASS environment variables.")
		return ErrNotConfigured
	}
	if err := s.transport.Verify(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Email configuration test failed")
		return err
	}
	s.logger.Info().Msg("Email configuration test successful")
	return nil
}

// SendTest sends a sample cow and goat alert to recipient or the default.
func (s *Service) SendTest(ctx context.Context, recipient string) error {
	if recipient == "" {
		recipient = s.opts.DefaultRecipient
	}
	if recipient == "" {
		s.logger.Error().Msg("No recipient email address for test")
		return ErrNoRecipient
	}

	s.logger.Info().Str("recipient", recipient).Msg("Sending test email")
	return s.Deliver(ctx, models.AlertRequest{
		Species:   []string{"cow", "goat"},
		Recipient: recipient,
	})
}

func (s *Service) Statistics() Statistics {
	return Statistics{
		RateStats:        s.limiter.Stats(s.now()),
		Configured:       s.Configured(),
		DefaultRecipient: s.opts.DefaultRecipient,
	}
}
