package detection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"farmwatch/internal/models"
)

// inferenceQuality is the JPEG quality of frames sent to the model.
const inferenceQuality = 95

// Service maps raw model output onto the farm species vocabulary. Without a
// ready model every call yields no detections.
type Service struct {
	client  ModelClient
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	threshold float64
	vocab     vocabulary
}

func NewService(client ModelClient, threshold float64, timeout time.Duration, logger zerolog.Logger) *Service {
	s := &Service{
		client:    client,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
		threshold: threshold,
		vocab:     newVocabulary(),
	}
	if !s.ModelLoaded() {
		logger.Warn().Msg("Detection model not loaded, detections will be empty")
	}
	return s
}

func (s *Service) ModelLoaded() bool {
	return s.client != nil && s.client.Ready()
}

// Detect runs the model on one frame. Failures are logged and produce an
// empty result.
func (s *Service) Detect(ctx context.Context, frame models.Frame) []models.Detection {
	if frame == nil || !s.ModelLoaded() {
		return nil
	}

	jpeg, err := frame.JPEG(models.EncodeOptions{Quality: inferenceQuality})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode frame for detection")
		return nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.client.Infer(ctx, jpeg)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error in frame detection")
		return nil
	}
	return s.Filter(raw)
}

// Filter keeps vocabulary classes at or above the confidence threshold and
// attaches their priority. Input order is preserved.
func (s *Service) Filter(raw []models.RawDetection) []models.Detection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var out []models.Detection
	for _, r := range raw {
		species, ok := s.vocab.species[r.ClassID]
		if !ok || r.Confidence < s.threshold {
			continue
		}
		out = append(out, models.Detection{
			Species:    species,
			ClassID:    r.ClassID,
			Confidence: r.Confidence,
			BBox:       r.BBox,
			Priority:   s.vocab.priorityOf(species),
			Timestamp:  now,
		})
	}
	return out
}

// PriorityOf returns the configured priority, LOW for unmapped species.
func (s *Service) PriorityOf(species string) models.Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.priorityOf(species)
}

func (s *Service) SupportedSpecies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.names()
}

func (s *Service) ConfidenceThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

func (s *Service) SetConfidenceThreshold(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("confidence threshold %.2f out of range [0, 1]", v)
	}
	s.mu.Lock()
	s.threshold = v
	s.mu.Unlock()

	s.logger.Info().Float64("threshold", v).Msg("Updated confidence threshold")
	return nil
}

// Priorities returns a copy of the species priority table.
func (s *Service) Priorities() map[string]models.Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Priority, len(s.vocab.priorities))
	for k, v := range s.vocab.priorities {
		out[k] = v
	}
	return out
}

// SetPriorities merges updates into the priority table.
func (s *Service) SetPriorities(updates map[string]models.Priority) error {
	if err := validatePriorities(updates); err != nil {
		return err
	}
	s.mu.Lock()
	for species, p := range updates {
		s.vocab.priorities[species] = p
	}
	s.mu.Unlock()

	s.logger.Info().Int("count", len(updates)).Msg("Updated priority configuration")
	return nil
}

func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
