package models

import "time"

// AlertRequest asks the notification service to email about detected species.
type AlertRequest struct {
	Species   []string `json:"species"`
	Snapshot  []byte   `json:"-"` // JPEG, optional
	Recipient string   `json:"recipient,omitempty"`
	Live      bool     `json:"is_live"`
}

// AlertEvent is emitted after an alert email was delivered.
type AlertEvent struct {
	Species   []string  `json:"species"`
	Priority  Priority  `json:"priority"`
	Recipient string    `json:"recipient"`
	Live      bool      `json:"is_live"`
	SentAt    time.Time `json:"sent_at"`
}

// JobCompletedEvent is published when a batch job reaches a terminal state.
type JobCompletedEvent struct {
	JobID          string           `json:"job_id"`
	Status         JobStatus        `json:"status"`
	ProcessedVideo string           `json:"processed_video"`
	RecordID       string           `json:"record_id,omitempty"`
	Summary        DetectionSummary `json:"summary"`
	ProcessingTime float64          `json:"processing_time"`
	Error          string           `json:"error,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// LiveDetectionEvent is published for each sampled live frame with detections.
type LiveDetectionEvent struct {
	Source     string      `json:"source"`
	FrameIndex int         `json:"frame_index"`
	Detections []Detection `json:"detections"`
	Timestamp  time.Time   `json:"timestamp"`
}

// MessagePublisher interface for publishing events
type MessagePublisher interface {
	Publish(subject string, data interface{}) error
}
