package models

import "time"

type JobStatus string

const (
	JobStatusStarting   JobStatus = "starting"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// Terminal reports whether no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Progress is a snapshot of batch processing published by the pipeline.
type Progress struct {
	Status                 JobStatus `json:"status"`
	ProgressPercentage     float64   `json:"progress_percentage"`
	CurrentFrame           int       `json:"current_frame"`
	TotalFrames            int       `json:"total_frames"`
	DetectionsSoFar        int       `json:"detections_so_far"`
	EstimatedTimeRemaining float64   `json:"estimated_time_remaining"`
	ProcessingFPS          float64   `json:"processing_fps"`
	Message                string    `json:"message"`
	Error                  string    `json:"error,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
}

// VideoMetadata describes an uploaded source video.
type VideoMetadata struct {
	TotalFrames      int     `json:"total_frames"`
	FPS              float64 `json:"fps"`
	Duration         float64 `json:"duration"`
	OriginalFilename string  `json:"original_filename"`
}

// Job is one submitted video and its processing state.
type Job struct {
	ID             string        `json:"job_id"`
	SourcePath     string        `json:"-"`
	OutputPath     string        `json:"-"`
	ProcessedVideo string        `json:"processed_video"`
	Status         JobStatus     `json:"status"`
	Progress       Progress      `json:"progress"`
	Metadata       VideoMetadata `json:"video_metadata"`
	Detections     []Detection   `json:"detections,omitempty"`
	RecordID       string        `json:"record_id,omitempty"`
	ProcessingTime float64       `json:"processing_time,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}
