package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
)

// progressEveryFrames is the fixed reporting cadence, alongside every 1%.
const progressEveryFrames = 30

type BatchRequest struct {
	JobID      string
	InputPath  string
	OutputPath string
}

type BatchResult struct {
	Detections      []models.Detection
	FramesProcessed int
	TotalFrames     int
	FPS             float64
	Elapsed         time.Duration
}

// Process runs detection on every frame of InputPath and writes the annotated
// video to OutputPath. On any failure after the source is open the sink gets a
// single error update and the result carries no detections.
func (p *Pipeline) Process(ctx context.Context, req BatchRequest, sink ProgressSink) (BatchResult, error) {
	logger := logging.WithJob(p.logger, req.JobID)

	src, err := p.io.OpenSource(req.InputPath)
	if err != nil {
		logger.Error().Err(err).Str("input", req.InputPath).Msg("Failed to open video")
		return BatchResult{}, errors.Join(ErrSourceUnavailable, err)
	}
	defer src.Close()

	run := &batchRun{
		p:      p,
		ctx:    ctx,
		req:    req,
		src:    src,
		sink:   sink,
		logger: logger,
		total:  src.FrameCount(),
		fps:    src.FPS(),
		start:  p.now(),
	}

	logger.Info().
		Int("total_frames", run.total).
		Float64("fps", run.fps).
		Msg("Processing video")

	err = run.execute()
	result := BatchResult{
		FramesProcessed: run.frame,
		TotalFrames:     run.total,
		FPS:             run.fps,
		Elapsed:         p.now().Sub(run.start),
	}
	if err != nil {
		logger.Error().Err(err).Int("frame", run.frame).Msg("Error processing video")
		run.report(run.errorProgress(err))
		return result, err
	}

	result.Detections = run.detections
	run.report(run.completedProgress())
	logger.Info().
		Int("frames", run.frame).
		Int("detections", len(run.detections)).
		Dur("elapsed", result.Elapsed).
		Msg("Video processing complete")
	return result, nil
}

type batchRun struct {
	p      *Pipeline
	ctx    context.Context
	req    BatchRequest
	src    models.VideoSource
	sink   ProgressSink
	logger zerolog.Logger

	total      int
	fps        float64
	start      time.Time
	frame      int
	detections []models.Detection
}

func (r *batchRun) execute() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic at frame %d: %v", r.frame, rec)
		}
	}()

	out, err := r.p.io.CreateSink(r.req.OutputPath, r.fps, r.src.Width(), r.src.Height())
	if err != nil {
		return fmt.Errorf("create output video: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("finalize output video: %w", cerr)
		}
	}()

	for {
		frame, err := r.src.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame %d: %w", r.frame+1, err)
		}

		r.frame++
		if err := r.step(frame, out); err != nil {
			return err
		}

		if progressDue(r.frame, r.total) {
			p := r.processingProgress()
			r.report(p)
			r.logger.Debug().
				Float64("progress", p.ProgressPercentage).
				Int("frame", r.frame).
				Msg("Processing progress")
		}
	}
}

func (r *batchRun) step(frame models.Frame, out models.VideoSink) error {
	defer frame.Close()

	if dets := r.p.detector.Detect(r.ctx, frame); len(dets) > 0 {
		frame = r.p.annotator.Annotate(frame, dets)
		now := r.p.now()
		for i := range dets {
			dets[i].FrameIndex = r.frame
			dets[i].Timestamp = now
			if r.fps > 0 {
				dets[i].VideoTime = float64(r.frame) / r.fps
			}
		}
		r.detections = append(r.detections, dets...)
	}

	if err := out.Write(frame); err != nil {
		return fmt.Errorf("write frame %d: %w", r.frame, err)
	}
	return nil
}

func (r *batchRun) report(p models.Progress) {
	if r.sink != nil {
		r.sink.Update(r.req.JobID, p)
	}
}

// progressDue reports on every 1% of total frames and every 30 frames,
// whichever comes first.
func progressDue(frame, total int) bool {
	step := max(1, total/100)
	return frame%step == 0 || frame%progressEveryFrames == 0
}

func (r *batchRun) throughput() float64 {
	elapsed := r.p.now().Sub(r.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(r.frame) / elapsed
}

func (r *batchRun) processingProgress() models.Progress {
	fps := r.throughput()
	var pct, eta float64
	if r.total > 0 {
		pct = min(100, float64(r.frame)/float64(r.total)*100)
	}
	if remaining := r.total - r.frame; fps > 0 && remaining > 0 {
		eta = float64(remaining) / fps
	}
	return models.Progress{
		Status:                 models.JobStatusProcessing,
		ProgressPercentage:     pct,
		CurrentFrame:           r.frame,
		TotalFrames:            r.total,
		DetectionsSoFar:        len(r.detections),
		EstimatedTimeRemaining: eta,
		ProcessingFPS:          fps,
		Message:                fmt.Sprintf("Processing frame %d/%d...", r.frame, r.total),
		Timestamp:              r.p.now(),
	}
}

func (r *batchRun) completedProgress() models.Progress {
	return models.Progress{
		Status:             models.JobStatusCompleted,
		ProgressPercentage: 100,
		CurrentFrame:       r.frame,
		TotalFrames:        r.total,
		DetectionsSoFar:    len(r.detections),
		ProcessingFPS:      r.throughput(),
		Message:            fmt.Sprintf("Processing complete! Found %d detections.", len(r.detections)),
		Timestamp:          r.p.now(),
	}
}

func (r *batchRun) errorProgress(err error) models.Progress {
	return models.Progress{
		Status:          models.JobStatusError,
		CurrentFrame:    r.frame,
		TotalFrames:     r.total,
		DetectionsSoFar: len(r.detections),
		Message:         fmt.Sprintf("Error processing video: %v", err),
		Error:           err.Error(),
		Timestamp:       r.p.now(),
	}
}
