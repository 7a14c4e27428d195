package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"farmwatch/internal/logging"
	"farmwatch/internal/models"
	"farmwatch/internal/services/detection"
	"farmwatch/internal/services/jobs"
	"farmwatch/internal/services/pipeline"
)

// JobSubmitter starts batch processing of a saved upload.
type JobSubmitter interface {
	Submit(req jobs.SubmitRequest) (models.Job, error)
}

// JobStore exposes job snapshots.
type JobStore interface {
	Get(id string) (models.Job, error)
	Subscribe(id string) (<-chan models.Job, func(), error)
}

type UploadSettings struct {
	UploadDir         string
	MaxUploadSize     int64
	AllowedExtensions []string
}

type VideoHandler struct {
	settings  UploadSettings
	submitter JobSubmitter
	jobs      JobStore
}

func NewVideoHandler(settings UploadSettings, submitter JobSubmitter, store JobStore) *VideoHandler {
	return &VideoHandler{
		settings:  settings,
		submitter: submitter,
		jobs:      store,
	}
}

type UploadResponse struct {
	Success           bool                 `json:"success" example:"true"`
	Message           string               `json:"message"`
	JobID             string               `json:"job_id"`
	Status            models.JobStatus     `json:"status" example:"starting"`
	ProcessedVideo    string               `json:"processed_video"`
	ProcessedVideoURL string               `json:"processed_video_url"`
	ProgressURL       string               `json:"progress_url"`
	ProgressStreamURL string               `json:"progress_stream_url"`
	ResultURL         string               `json:"result_url"`
	VideoMetadata     models.VideoMetadata `json:"video_metadata"`
}

type ProgressResponse struct {
	VideoID string `json:"video_id"`
	models.Progress
}

type NotFoundResponse struct {
	Error   string `json:"error" example:"Video processing not found"`
	VideoID string `json:"video_id"`
	Status  string `json:"status" example:"not_found"`
}

type ResultStatistics struct {
	TotalDetections          int `json:"total_detections"`
	UniqueAnimals            int `json:"unique_animals"`
	HighConfidenceDetections int `json:"high_confidence_detections"`
	FramesWithDetections     int `json:"frames_with_detections"`
}

type ResultResponse struct {
	Success           bool                    `json:"success" example:"true"`
	Message           string                  `json:"message"`
	JobID             string                  `json:"job_id"`
	RecordID          string                  `json:"record_id"`
	ProcessedVideo    string                  `json:"processed_video"`
	ProcessedVideoURL string                  `json:"processed_video_url"`
	Detections        []models.Detection      `json:"detections"`
	ProcessingTime    float64                 `json:"processing_time"`
	VideoMetadata     models.VideoMetadata    `json:"video_metadata"`
	Statistics        ResultStatistics        `json:"statistics"`
	Summary           models.DetectionSummary `json:"summary"`
}

func processedURL(name string) string {
	return "/static/processed/" + name
}

// @Summary Upload a video for detection
// @Description Save the uploaded video and start processing it in the background. Poll the progress URL or subscribe to the progress stream for updates.
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file (mp4, avi, mov, mkv, wmv, flv, webm)"
// @Success 202 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/upload_video [post]
func (h *VideoHandler) UploadVideo(c *gin.Context) {
	if h.settings.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.settings.MaxUploadSize)
	}

	file, err := c.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("File too large. Maximum size is %d MB", h.settings.MaxUploadSize/(1024*1024)),
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No video file provided"})
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file selected"})
		return
	}
	if !jobs.AllowedExtension(file.Filename, h.settings.AllowedExtensions) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid file type. Allowed: " + strings.Join(h.settings.AllowedExtensions, ", "),
		})
		return
	}

	original := jobs.SanitizeFilename(file.Filename)
	if original == "" || !jobs.AllowedExtension(original, h.settings.AllowedExtensions) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid file name"})
		return
	}
	stored := jobs.UniqueFilename(original, time.Now())
	path := filepath.Join(h.settings.UploadDir, stored)

	if err := os.MkdirAll(h.settings.UploadDir, 0o755); err != nil {
		logging.Error(c).Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save upload", Details: err.Error()})
		return
	}
	if err := c.SaveUploadedFile(file, path); err != nil {
		logging.Error(c).Err(err).Str("path", path).Msg("Failed to save upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save upload", Details: err.Error()})
		return
	}

	job, err := h.submitter.Submit(jobs.SubmitRequest{
		SourcePath:       path,
		StoredFilename:   stored,
		OriginalFilename: original,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrSourceUnavailable) {
			os.Remove(path)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read video file", Details: err.Error()})
			return
		}
		logging.Error(c).Err(err).Msg("Failed to start video processing")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error processing video", Details: err.Error()})
		return
	}

	logging.SetJobID(c, job.ID)
	logging.Info(c).
		Str("filename", original).
		Int("total_frames", job.Metadata.TotalFrames).
		Msg("Video accepted for processing")

	c.JSON(http.StatusAccepted, UploadResponse{
		Success:           true,
		Message:           "Video accepted for processing",
		JobID:             job.ID,
		Status:            job.Status,
		ProcessedVideo:    job.ProcessedVideo,
		ProcessedVideoURL: processedURL(job.ProcessedVideo),
		ProgressURL:       "/api/processing_progress/" + job.ID,
		ProgressStreamURL: "/api/processing_progress/" + job.ID + "/stream",
		ResultURL:         "/api/jobs/" + job.ID + "/result",
		VideoMetadata:     job.Metadata,
	})
}

func (h *VideoHandler) notFound(c *gin.Context, id string) {
	c.JSON(http.StatusNotFound, NotFoundResponse{
		Error:   "Video processing not found",
		VideoID: id,
		Status:  "not_found",
	})
}

// @Summary Get processing progress
// @Description Get the latest progress snapshot of a video processing job
// @Tags videos
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} ProgressResponse
// @Failure 404 {object} NotFoundResponse
// @Router /api/processing_progress/{id} [get]
func (h *VideoHandler) GetProgress(c *gin.Context) {
	id := c.Param("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		h.notFound(c, id)
		return
	}
	c.JSON(http.StatusOK, ProgressResponse{VideoID: id, Progress: job.Progress})
}

// @Summary Stream processing progress
// @Description Server-Sent Events with a "progress" event per update until the job completes or fails
// @Tags videos
// @Produce text/event-stream
// @Param id path string true "Job ID"
// @Success 200 {object} ProgressResponse
// @Failure 404 {object} NotFoundResponse
// @Router /api/processing_progress/{id}/stream [get]
func (h *VideoHandler) StreamProgress(c *gin.Context) {
	id := c.Param("id")
	updates, cancel, err := h.jobs.Subscribe(id)
	if err != nil {
		h.notFound(c, id)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("progress", ProgressResponse{VideoID: id, Progress: job.Progress})
			c.Writer.Flush()
			if job.Status.Terminal() {
				return
			}
		}
	}
}

// @Summary Get job result
// @Description Get detections and statistics of a completed job
// @Tags videos
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} ResultResponse
// @Failure 404 {object} NotFoundResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/jobs/{id}/result [get]
func (h *VideoHandler) GetResult(c *gin.Context) {
	id := c.Param("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		h.notFound(c, id)
		return
	}

	switch job.Status {
	case models.JobStatusCompleted:
	case models.JobStatusError:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Video processing failed", Details: job.Progress.Error})
		return
	default:
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Video processing not finished", Details: string(job.Status)})
		return
	}

	detections := job.Detections
	if detections == nil {
		detections = []models.Detection{}
	}
	summary := detection.Summarize(detections)

	c.JSON(http.StatusOK, ResultResponse{
		Success:           true,
		Message:           fmt.Sprintf("Video processed successfully! Found %d animals.", len(detections)),
		JobID:             job.ID,
		RecordID:          job.RecordID,
		ProcessedVideo:    job.ProcessedVideo,
		ProcessedVideoURL: processedURL(job.ProcessedVideo),
		Detections:        detections,
		ProcessingTime:    job.ProcessingTime,
		VideoMetadata:     job.Metadata,
		Statistics: ResultStatistics{
			TotalDetections:          summary.TotalDetections,
			UniqueAnimals:            len(summary.UniqueAnimals),
			HighConfidenceDetections: summary.HighConfidenceCount,
			FramesWithDetections:     summary.FramesWithDetections,
		},
		Summary: summary,
	})
}
