package livestream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
	"farmwatch/internal/services/pipeline"
)

var (
	ErrAlreadyActive = errors.New("live stream is already active")
	ErrStreamFailed  = errors.New("stream failed to start")
	ErrNotActive     = errors.New("no live stream is active")
	ErrStopTimeout   = errors.New("live stream did not stop in time")
)

type LiveRunner interface {
	RunLive(ctx context.Context, req pipeline.LiveRequest, ready func(error)) error
}

// Preview is the MJPEG feed the annotated live frames go to.
type Preview interface {
	pipeline.FramePublisher
	Activate()
	Reset()
}

type LiveEventPublisher interface {
	PublishLiveDetections(event models.LiveDetectionEvent)
}

type Options struct {
	SampleInterval int
	StopTimeout    time.Duration
}

// Controller owns the single live stream. Start and Stop are serialised and
// both wait for the stream loop to acknowledge.
type Controller struct {
	runner  LiveRunner
	preview Preview
	alerts  pipeline.AlertSink
	events  LiveEventPublisher
	opts    Options
	logger  zerolog.Logger

	mu      sync.Mutex
	active  atomic.Bool
	current atomic.Pointer[session]
	now     func() time.Time
}

type session struct {
	source  string
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}
	stats   *pipeline.LiveStats
}

func NewController(runner LiveRunner, preview Preview, alerts pipeline.AlertSink, events LiveEventPublisher, opts Options, logger zerolog.Logger) *Controller {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = pipeline.DefaultSampleInterval
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 10 * time.Second
	}
	return &Controller{
		runner:  runner,
		preview: preview,
		alerts:  alerts,
		events:  events,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Start opens sourceURL and returns once the source is open or has failed.
func (c *Controller) Start(ctx context.Context, sourceURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active.Load() {
		return ErrAlreadyActive
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		source:  sourceURL,
		started: c.now(),
		cancel:  cancel,
		done:    make(chan struct{}),
		stats:   &pipeline.LiveStats{},
	}
	req := pipeline.LiveRequest{
		SourceURL:      sourceURL,
		SampleInterval: c.opts.SampleInterval,
		Alerts:         c.alerts,
		Stats:          sess.stats,
		OnDetections: func(frameIndex int, dets []models.Detection) {
			if c.events != nil {
				c.events.PublishLiveDetections(models.LiveDetectionEvent{
					Source:     logging.RedactURL(sourceURL),
					FrameIndex: frameIndex,
					Detections: dets,
					Timestamp:  c.now(),
				})
			}
		},
	}
	if c.preview != nil {
		req.Preview = c.preview
		c.preview.Activate()
	}

	ready := make(chan error, 1)
	go c.run(runCtx, sess, req, ready)

	var err error
	select {
	case err = <-ready:
	case <-sess.done:
		select {
		case err = <-ready:
		default:
			err = errors.New("stream loop exited before opening the source")
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		c.resetPreview()
		return errors.Join(ErrStreamFailed, err)
	}

	c.current.Store(sess)
	c.active.Store(true)
	// The loop may already have ended before it was published as current.
	select {
	case <-sess.done:
		c.finish(sess)
	default:
	}

	logger := logging.WithStream(c.logger, sourceURL)
	logger.Info().Msg("Live stream started")
	return nil
}

func (c *Controller) run(ctx context.Context, sess *session, req pipeline.LiveRequest, ready chan<- error) {
	err := c.runner.RunLive(ctx, req, func(err error) { ready <- err })
	close(sess.done)
	if err != nil && !errors.Is(err, pipeline.ErrSourceUnavailable) {
		logger := logging.WithStream(c.logger, sess.source)
		logger.Error().Err(err).Msg("Live stream ended with error")
	}
	c.finish(sess)
}

// finish clears sess if it is still current.
func (c *Controller) finish(sess *session) {
	if c.current.CompareAndSwap(sess, nil) {
		c.active.Store(false)
		c.resetPreview()
		logger := logging.WithStream(c.logger, sess.source)
		logger.Info().Msg("Live stream ended")
	}
}

// Stop cancels the stream and waits for the loop to exit.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.current.Swap(nil)
	if sess == nil {
		return ErrNotActive
	}
	c.active.Store(false)
	sess.cancel()
	c.resetPreview()

	select {
	case <-sess.done:
		logger := logging.WithStream(c.logger, sess.source)
		logger.Info().Msg("Live stream stopped")
		return nil
	case <-time.After(c.opts.StopTimeout):
		return fmt.Errorf("%w after %s", ErrStopTimeout, c.opts.StopTimeout)
	}
}

func (c *Controller) resetPreview() {
	if c.preview != nil {
		c.preview.Reset()
	}
}

func (c *Controller) Active() bool {
	return c.active.Load()
}

type Status struct {
	Active  bool    `json:"active"`
	RTSPURL *string `json:"rtsp_url"`
}

func (c *Controller) Status() Status {
	sess := c.current.Load()
	if sess == nil || !c.active.Load() {
		return Status{}
	}
	source := sess.source
	return Status{Active: true, RTSPURL: &source}
}

type Stats struct {
	Status
	Uptime               string     `json:"uptime"`
	FPS                  float64    `json:"fps"`
	FramesRead           int64      `json:"frames_read"`
	FramesSampled        int64      `json:"frames_sampled"`
	DetectionsLastMinute int        `json:"detections_last_minute"`
	TotalDetections      int64      `json:"total_detections"`
	LastDetection        *time.Time `json:"last_detection,omitempty"`
	StreamQuality        string     `json:"stream_quality"`
}

// Stats reports measured throughput and detection counts of the running stream.
func (c *Controller) Stats() Stats {
	status := c.Status()
	sess := c.current.Load()
	if !status.Active || sess == nil {
		return Stats{Status: status, Uptime: formatUptime(0), StreamQuality: "Offline"}
	}

	now := c.now()
	uptime := now.Sub(sess.started)
	snap := sess.stats.Snapshot(now)
	var fps float64
	if secs := uptime.Seconds(); secs > 0 {
		fps = float64(snap.FramesRead) / secs
	}
	return Stats{
		Status:               status,
		Uptime:               formatUptime(uptime),
		FPS:                  fps,
		FramesRead:           snap.FramesRead,
		FramesSampled:        snap.FramesSampled,
		DetectionsLastMinute: snap.DetectionsLastMinute,
		TotalDetections:      snap.TotalDetections,
		LastDetection:        snap.LastDetection,
		StreamQuality:        quality(fps),
	}
}

func formatUptime(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

func quality(fps float64) string {
	switch {
	case fps >= 15:
		return "Good"
	case fps >= 5:
		return "Fair"
	default:
		return "Poor"
	}
}
