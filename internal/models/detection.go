package models

import (
	"encoding/json"
	"time"
)

// Priority is the alert severity attached to a species.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

var priorityRank = map[Priority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

// Valid reports whether p is one of the four known levels.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Rank orders priorities LOW < MEDIUM < HIGH < CRITICAL. Unknown values rank as LOW.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// MaxPriority returns the highest priority in ps, or LOW when ps is empty.
func MaxPriority(ps ...Priority) Priority {
	highest := PriorityLow
	for _, p := range ps {
		if p.Valid() && p.Rank() > highest.Rank() {
			highest = p
		}
	}
	return highest
}

// BoundingBox holds pixel coordinates as [x1, y1, x2, y2].
type BoundingBox [4]int

func (b BoundingBox) X1() int { return b[0] }
func (b BoundingBox) Y1() int { return b[1] }
func (b BoundingBox) X2() int { return b[2] }
func (b BoundingBox) Y2() int { return b[3] }

// Detection is a single animal found in a frame. It is not modified after
// the pipeline attaches frame information.
type Detection struct {
	Species    string      `json:"animal"`
	ClassID    int         `json:"class_id"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
	Priority   Priority    `json:"priority"`
	Timestamp  time.Time   `json:"timestamp"`

	// Set by the batch pipeline
	FrameIndex int     `json:"frame_number,omitempty"`
	VideoTime  float64 `json:"timestamp_in_video,omitempty"`
}

// UnmarshalJSON accepts naive ISO-8601 timestamps as well as RFC 3339.
func (d *Detection) UnmarshalJSON(b []byte) error {
	type plain Detection
	aux := struct {
		*plain
		Timestamp Timestamp `json:"timestamp"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.Timestamp = time.Time(aux.Timestamp)
	return nil
}

// RawDetection is one unfiltered prediction returned by the model.
type RawDetection struct {
	ClassID    int
	Confidence float64
	BBox       BoundingBox
}

// DetectionSummary aggregates the detections of one run.
type DetectionSummary struct {
	TotalDetections      int              `json:"total_detections"`
	UniqueAnimals        []string         `json:"unique_animals"`
	AnimalCounts         map[string]int   `json:"animal_counts"`
	PriorityDistribution map[Priority]int `json:"priority_distribution"`
	AverageConfidence    float64          `json:"average_confidence"`
	HighestConfidence    float64          `json:"highest_confidence"`
	LowestConfidence     float64          `json:"lowest_confidence"`
	HighConfidenceCount  int              `json:"high_confidence_detections"`
	FramesWithDetections int              `json:"frames_with_detections"`
}
