package models

import (
	"encoding/json"
	"time"
)

// HistoryRecord is one completed detection run. DetectionCount always equals
// len(Detections).
type HistoryRecord struct {
	ID             string      `json:"id"`
	Filename       string      `json:"filename"`
	Timestamp      time.Time   `json:"timestamp"`
	Detections     []Detection `json:"detections"`
	ProcessingTime float64     `json:"processing_time"`
	DetectionCount int         `json:"animal_count"`
}

// UnmarshalJSON accepts naive ISO-8601 timestamps as well as RFC 3339.
func (r *HistoryRecord) UnmarshalJSON(b []byte) error {
	type plain HistoryRecord
	aux := struct {
		*plain
		Timestamp Timestamp `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Timestamp = time.Time(aux.Timestamp)
	return nil
}

// HistoryStats aggregates the stored history.
type HistoryStats struct {
	TotalDetections int             `json:"total_detections"`
	TotalVideos     int             `json:"total_videos"`
	AnimalCounts    map[string]int  `json:"animal_counts"`
	RecentActivity  []HistoryRecord `json:"recent_activity"`
}
