package pipeline

import (
	"sync"
	"sync/atomic"
	"time"
)

// LiveStats counts live stream activity. A nil *LiveStats ignores updates.
type LiveStats struct {
	framesRead    atomic.Int64
	framesSampled atomic.Int64
	detections    atomic.Int64

	mu            sync.Mutex
	recent        []time.Time
	lastDetection time.Time
}

type LiveStatsSnapshot struct {
	FramesRead           int64      `json:"frames_read"`
	FramesSampled        int64      `json:"frames_sampled"`
	TotalDetections      int64      `json:"total_detections"`
	DetectionsLastMinute int        `json:"detections_last_minute"`
	LastDetection        *time.Time `json:"last_detection,omitempty"`
}

func (s *LiveStats) frameRead() {
	if s != nil {
		s.framesRead.Add(1)
	}
}

func (s *LiveStats) sampled(detections int, at time.Time) {
	if s == nil {
		return
	}
	s.framesSampled.Add(1)
	if detections == 0 {
		return
	}
	s.detections.Add(int64(detections))

	s.mu.Lock()
	for i := 0; i < detections; i++ {
		s.recent = append(s.recent, at)
	}
	s.lastDetection = at
	s.prune(at)
	s.mu.Unlock()
}

// prune drops detection times older than one minute. Caller holds mu.
func (s *LiveStats) prune(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(s.recent) && !s.recent[i].After(cutoff) {
		i++
	}
	s.recent = s.recent[i:]
}

func (s *LiveStats) Snapshot(now time.Time) LiveStatsSnapshot {
	if s == nil {
		return LiveStatsSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	snap := LiveStatsSnapshot{
		FramesRead:           s.framesRead.Load(),
		FramesSampled:        s.framesSampled.Load(),
		TotalDetections:      s.detections.Load(),
		DetectionsLastMinute: len(s.recent),
	}
	if !s.lastDetection.IsZero() {
		last := s.lastDetection
		snap.LastDetection = &last
	}
	return snap
}
