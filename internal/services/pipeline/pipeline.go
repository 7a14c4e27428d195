package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"farmwatch/internal/models"
)

// ErrSourceUnavailable is returned when a file or stream cannot be opened.
var ErrSourceUnavailable = errors.New("video source unavailable")

type Detector interface {
	Detect(ctx context.Context, frame models.Frame) []models.Detection
}

type Annotator interface {
	Annotate(frame models.Frame, detections []models.Detection) models.Frame
}

// ProgressSink receives batch progress snapshots keyed by job id.
type ProgressSink interface {
	Update(jobID string, p models.Progress)
}

// Pipeline reads video, runs detection, draws results and writes or streams
// the annotated frames.
type Pipeline struct {
	io        models.VideoIO
	detector  Detector
	annotator Annotator
	encode    models.EncodeOptions
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a pipeline. encode controls live previews and alert snapshots.
func New(io models.VideoIO, detector Detector, annotator Annotator, encode models.EncodeOptions, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		io:        io,
		detector:  detector,
		annotator: annotator,
		encode:    encode,
		logger:    logger,
		now:       time.Now,
	}
}

// ExtractDetectionFrame re-reads the frame a detection came from and draws it.
func (p *Pipeline) ExtractDetectionFrame(path string, d models.Detection) ([]byte, error) {
	index := d.FrameIndex - 1
	if index < 0 {
		index = 0
	}
	frame, err := p.io.ReadFrameAt(path, index)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	frame = p.annotator.Annotate(frame, []models.Detection{d})
	return frame.JPEG(p.encode)
}

// Probe reports source metadata without processing it.
func (p *Pipeline) Probe(path string) (models.VideoMetadata, error) {
	src, err := p.io.OpenSource(path)
	if err != nil {
		return models.VideoMetadata{}, errors.Join(ErrSourceUnavailable, err)
	}
	defer src.Close()

	meta := models.VideoMetadata{
		TotalFrames: src.FrameCount(),
		FPS:         src.FPS(),
	}
	if meta.FPS > 0 {
		meta.Duration = float64(meta.TotalFrames) / meta.FPS
	}
	return meta, nil
}
