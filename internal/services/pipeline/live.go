package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
)

// DefaultSampleInterval runs detection on every 30th live frame.
const DefaultSampleInterval = 30

// FramePublisher receives encoded preview frames.
type FramePublisher interface {
	Publish(jpeg []byte)
}

// AlertSink queues alerts without blocking the caller.
type AlertSink interface {
	Enqueue(req models.AlertRequest) bool
}

type LiveRequest struct {
	SourceURL      string
	SampleInterval int

	// Optional collaborators
	Preview      FramePublisher
	Alerts       AlertSink
	Stats        *LiveStats
	OnDetections func(frameIndex int, detections []models.Detection)
}

// RunLive processes a live source until ctx is cancelled or the stream ends.
// ready is called exactly once: with nil after the source opened, or with the
// open error. A read failure ends the stream and is not retried.
func (p *Pipeline) RunLive(ctx context.Context, req LiveRequest, ready func(error)) (err error) {
	if ready == nil {
		ready = func(error) {}
	}
	logger := logging.WithStream(p.logger, req.SourceURL)

	src, err := p.io.OpenSource(req.SourceURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open live stream")
		err = errors.Join(ErrSourceUnavailable, err)
		ready(err)
		return err
	}
	defer src.Close()
	ready(nil)

	interval := req.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("live stream panic: %v", rec)
			logger.Error().Err(err).Msg("Error in live stream processing")
		}
	}()

	logger.Info().Int("sample_interval", interval).Msg("Started live stream processing")

	var (
		count   int
		overlay []models.Detection
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Int("frames", count).Msg("Live stream processing stopped")
			return nil
		default:
		}

		frame, err := src.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn().Err(err).Msg("Failed to read frame from stream")
			}
			logger.Info().Int("frames", count).Msg("Live stream ended")
			return nil
		}
		count++
		req.Stats.frameRead()

		if count%interval == 0 {
			overlay = p.detector.Detect(ctx, frame)
			req.Stats.sampled(len(overlay), p.now())
			if len(overlay) > 0 {
				frame = p.annotator.Annotate(frame, overlay)
				p.handleLiveDetections(req, count, overlay, frame)
			}
		} else if len(overlay) > 0 && req.Preview != nil {
			frame = p.annotator.Annotate(frame, overlay)
		}

		if req.Preview != nil {
			if jpeg, err := frame.JPEG(p.encode); err == nil {
				req.Preview.Publish(jpeg)
			}
		}
		frame.Close()
	}
}

func (p *Pipeline) handleLiveDetections(req LiveRequest, frameIndex int, dets []models.Detection, frame models.Frame) {
	species := make([]string, 0, len(dets))
	for _, d := range dets {
		species = append(species, d.Species)
	}
	p.logger.Info().
		Int("frame", frameIndex).
		Strs("species", species).
		Msg("Live detection")

	if req.OnDetections != nil {
		req.OnDetections(frameIndex, dets)
	}
	if req.Alerts == nil {
		return
	}

	snapshot, err := frame.JPEG(p.encode)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to encode alert snapshot")
		snapshot = nil
	}
	if !req.Alerts.Enqueue(models.AlertRequest{Species: species, Snapshot: snapshot, Live: true}) {
		p.logger.Warn().Strs("species", species).Msg("Alert queue full, dropping live alert")
	}
}
