package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"farmwatch/internal/models"
)

type fakeFrame struct {
	index  int
	closed *atomic.Int64
}

func (f *fakeFrame) Width() int  { return 640 }
func (f *fakeFrame) Height() int { return 480 }
func (f *fakeFrame) JPEG(models.EncodeOptions) ([]byte, error) {
	return []byte{0xff, 0xd8, byte(f.index), 0xff, 0xd9}, nil
}
func (f *fakeFrame) Close() error {
	f.closed.Add(1)
	return nil
}

// fakeSource yields total frames (endless when total < 0) and fails the
// read numbered failAt when it is positive.
type fakeSource struct {
	total  int
	failAt int
	fps    float64
	read   int
	closed atomic.Int64
}

func (s *fakeSource) Read() (models.Frame, error) {
	next := s.read + 1
	if s.failAt > 0 && next == s.failAt {
		return nil, errors.New("corrupt packet")
	}
	if s.total >= 0 && next > s.total {
		return nil, io.EOF
	}
	s.read = next
	return &fakeFrame{index: next, closed: &s.closed}, nil
}

func (s *fakeSource) FPS() float64 { return s.fps }
func (s *fakeSource) FrameCount() int {
	if s.total < 0 {
		return 0
	}
	return s.total
}
func (s *fakeSource) Width() int   { return 640 }
func (s *fakeSource) Height() int  { return 480 }
func (s *fakeSource) Close() error { return nil }

type fakeSink struct {
	written int
	failAt  int
	closed  bool
}

func (s *fakeSink) Write(models.Frame) error {
	if s.failAt > 0 && s.written+1 == s.failAt {
		return errors.New("disk full")
	}
	s.written++
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

type fakeIO struct {
	source  *fakeSource
	sink    *fakeSink
	openErr error
}

func (f *fakeIO) OpenSource(string) (models.VideoSource, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.source, nil
}

func (f *fakeIO) CreateSink(string, float64, int, int) (models.VideoSink, error) {
	return f.sink, nil
}

func (f *fakeIO) ReadFrameAt(_ string, index int) (models.Frame, error) {
	return &fakeFrame{index: index, closed: &f.source.closed}, nil
}

// fakeDetector reports one cow on every frame whose index is a multiple of every.
type fakeDetector struct {
	every   int
	panicAt int
	calls   atomic.Int64
}

func (d *fakeDetector) Detect(_ context.Context, frame models.Frame) []models.Detection {
	d.calls.Add(1)
	idx := frame.(*fakeFrame).index
	if d.panicAt > 0 && idx == d.panicAt {
		panic("model exploded")
	}
	if d.every > 0 && idx%d.every == 0 {
		return []models.Detection{{Species: "cow", Confidence: 0.8, Priority: models.PriorityLow}}
	}
	return nil
}

type countingAnnotator struct {
	calls atomic.Int64
}

func (a *countingAnnotator) Annotate(frame models.Frame, _ []models.Detection) models.Frame {
	a.calls.Add(1)
	return frame
}

type recordingProgress struct {
	mu      sync.Mutex
	updates []models.Progress
}

func (r *recordingProgress) Update(_ string, p models.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, p)
}

func (r *recordingProgress) all() []models.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Progress(nil), r.updates...)
}

type recordingAlerts struct {
	mu       sync.Mutex
	requests []models.AlertRequest
}

func (r *recordingAlerts) Enqueue(req models.AlertRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return true
}

type recordingPreview struct {
	frames atomic.Int64
}

func (r *recordingPreview) Publish([]byte) { r.frames.Add(1) }
