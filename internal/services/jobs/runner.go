package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
	"farmwatch/internal/services/detection"
	"farmwatch/internal/services/history"
	"farmwatch/internal/services/pipeline"
)

// BatchPipeline is the part of the video pipeline used by batch jobs.
type BatchPipeline interface {
	Probe(path string) (models.VideoMetadata, error)
	Process(ctx context.Context, req pipeline.BatchRequest, sink pipeline.ProgressSink) (pipeline.BatchResult, error)
	ExtractDetectionFrame(path string, d models.Detection) ([]byte, error)
}

type HistoryAppender interface {
	Append(rec models.HistoryRecord) (models.HistoryRecord, error)
}

type JobEventPublisher interface {
	PublishJobCompleted(event models.JobCompletedEvent)
}

// SubmitRequest describes an upload already saved to disk.
type SubmitRequest struct {
	SourcePath       string
	StoredFilename   string
	OriginalFilename string
}

// Runner executes batch jobs in background goroutines. Jobs cannot be
// cancelled once submitted.
type Runner struct {
	pipeline     BatchPipeline
	tracker      *Tracker
	history      HistoryAppender
	alerts       pipeline.AlertSink
	events       JobEventPublisher
	processedDir string
	logger       zerolog.Logger

	wg sync.WaitGroup
}

func NewRunner(p BatchPipeline, tracker *Tracker, store HistoryAppender, alerts pipeline.AlertSink, events JobEventPublisher, processedDir string, logger zerolog.Logger) *Runner {
	return &Runner{
		pipeline:     p,
		tracker:      tracker,
		history:      store,
		alerts:       alerts,
		events:       events,
		processedDir: processedDir,
		logger:       logger,
	}
}

// Submit probes the source, registers a job and starts processing it.
func (r *Runner) Submit(req SubmitRequest) (models.Job, error) {
	meta, err := r.pipeline.Probe(req.SourcePath)
	if err != nil {
		return models.Job{}, fmt.Errorf("probe %s: %w", req.StoredFilename, err)
	}
	meta.OriginalFilename = req.OriginalFilename

	processed := ProcessedName(req.StoredFilename)
	job := r.tracker.Create(models.Job{
		ID:             uuid.NewString(),
		SourcePath:     req.SourcePath,
		OutputPath:     filepath.Join(r.processedDir, processed),
		ProcessedVideo: processed,
		Metadata:       meta,
	})

	logger := logging.WithJob(r.logger, job.ID)
	logger.Info().
		Str("filename", req.OriginalFilename).
		Int("total_frames", meta.TotalFrames).
		Float64("duration", meta.Duration).
		Msg("Starting video processing")

	r.wg.Add(1)
	go r.run(job)
	return job, nil
}

// Wait blocks until all running jobs finish or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(job models.Job) {
	defer r.wg.Done()
	logger := logging.WithJob(r.logger, job.ID)
	start := time.Now()

	sink := &heldSink{tracker: r.tracker}
	res, err := r.pipeline.Process(context.Background(), pipeline.BatchRequest{
		JobID:      job.ID,
		InputPath:  job.SourcePath,
		OutputPath: job.OutputPath,
	}, sink)
	elapsed := time.Since(start)

	if err != nil {
		final := sink.final
		if final.Status != models.JobStatusError {
			final = models.Progress{
				Status:    models.JobStatusError,
				Message:   fmt.Sprintf("Error processing video: %v", err),
				Error:     err.Error(),
				Timestamp: time.Now(),
			}
		}
		if ferr := r.tracker.Fail(job.ID, final); ferr != nil {
			logger.Warn().Err(ferr).Msg("Failed to record job failure")
		}
		r.publish(models.JobCompletedEvent{
			JobID:          job.ID,
			Status:         models.JobStatusError,
			ProcessedVideo: job.ProcessedVideo,
			Summary:        detection.Summarize(nil),
			ProcessingTime: elapsed.Seconds(),
			Error:          err.Error(),
			Timestamp:      time.Now(),
		})
		return
	}

	var recordID string
	if r.history != nil {
		rec, herr := r.history.Append(history.NewRecord(job.ProcessedVideo, res.Detections, elapsed))
		if herr != nil {
			logger.Error().Err(herr).Msg("Failed to save detection record")
		} else {
			recordID = rec.ID
		}
	}

	if cerr := r.tracker.Complete(job.ID, sink.final, res.Detections, recordID, elapsed); cerr != nil {
		logger.Warn().Err(cerr).Msg("Failed to record job completion")
	}

	summary := detection.Summarize(res.Detections)
	r.publish(models.JobCompletedEvent{
		JobID:          job.ID,
		Status:         models.JobStatusCompleted,
		ProcessedVideo: job.ProcessedVideo,
		RecordID:       recordID,
		Summary:        summary,
		ProcessingTime: elapsed.Seconds(),
		Timestamp:      time.Now(),
	})

	logger.Info().
		Int("detections", len(res.Detections)).
		Dur("elapsed", elapsed).
		Msg("Video processing completed")

	if len(res.Detections) > 0 {
		r.alert(logger, job.SourcePath, res.Detections)
	}
}

func (r *Runner) alert(logger zerolog.Logger, source string, dets []models.Detection) {
	if r.alerts == nil {
		return
	}
	snapshot, err := r.pipeline.ExtractDetectionFrame(source, dets[0])
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to extract detection frame")
		snapshot = nil
	}
	species := detection.SpeciesOf(dets)
	if !r.alerts.Enqueue(models.AlertRequest{Species: species, Snapshot: snapshot}) {
		logger.Warn().Strs("species", species).Msg("Alert queue full, dropping job alert")
	}
}

func (r *Runner) publish(event models.JobCompletedEvent) {
	if r.events != nil {
		r.events.PublishJobCompleted(event)
	}
}

// heldSink forwards in-flight progress to the tracker and holds the terminal
// snapshot until results are attached.
type heldSink struct {
	tracker *Tracker
	final   models.Progress
}

func (s *heldSink) Update(jobID string, p models.Progress) {
	if p.Status.Terminal() {
		s.final = p
		return
	}
	s.tracker.Update(jobID, p)
}
