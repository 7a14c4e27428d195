package jobs

import (
	"errors"
	"sort"
	"sync"
	"time"

	"farmwatch/internal/models"
)

var (
	ErrNotFound = errors.New("job not found")
	// ErrFinished is returned for transitions out of a terminal state.
	ErrFinished = errors.New("job already finished")
)

// Tracker holds job state in memory for the lifetime of the process.
// Readers always get whole-value snapshots.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*entry
	now  func() time.Time
}

type entry struct {
	job  models.Job
	subs map[chan models.Job]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*entry),
		now:  time.Now,
	}
}

// Create registers job in the starting state.
func (t *Tracker) Create(job models.Job) models.Job {
	now := t.now()
	job.Status = models.JobStatusStarting
	job.CreatedAt = now
	job.UpdatedAt = now
	job.Progress = models.Progress{
		Status:      models.JobStatusStarting,
		TotalFrames: job.Metadata.TotalFrames,
		Message:     "Initializing video processing...",
		Timestamp:   now,
	}

	t.mu.Lock()
	t.jobs[job.ID] = &entry{job: job, subs: make(map[chan models.Job]struct{})}
	t.mu.Unlock()
	return job
}

func (t *Tracker) Get(id string) (models.Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return e.job, nil
}

// List returns all jobs, newest first.
func (t *Tracker) List() []models.Job {
	t.mu.RLock()
	out := make([]models.Job, 0, len(t.jobs))
	for _, e := range t.jobs {
		out = append(out, e.job)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Update stores a progress snapshot. Updates to finished or unknown jobs are
// dropped.
func (t *Tracker) Update(id string, p models.Progress) {
	_ = t.apply(id, func(job *models.Job) error {
		job.Progress = p
		if p.Status != "" {
			job.Status = p.Status
		}
		return nil
	})
}

// Complete marks the job completed with its results.
func (t *Tracker) Complete(id string, p models.Progress, detections []models.Detection, recordID string, processing time.Duration) error {
	return t.apply(id, func(job *models.Job) error {
		now := t.now()
		p.Status = models.JobStatusCompleted
		job.Status = models.JobStatusCompleted
		job.Progress = p
		job.Detections = detections
		job.RecordID = recordID
		job.ProcessingTime = processing.Seconds()
		job.CompletedAt = &now
		return nil
	})
}

// Fail marks the job failed. p should carry the error text.
func (t *Tracker) Fail(id string, p models.Progress) error {
	return t.apply(id, func(job *models.Job) error {
		now := t.now()
		p.Status = models.JobStatusError
		job.Status = models.JobStatusError
		job.Progress = p
		job.Detections = nil
		job.CompletedAt = &now
		return nil
	})
}

func (t *Tracker) apply(id string, fn func(*models.Job) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if e.job.Status.Terminal() {
		return ErrFinished
	}

	if err := fn(&e.job); err != nil {
		return err
	}
	e.job.UpdatedAt = t.now()

	for ch := range e.subs {
		offer(ch, e.job)
		if e.job.Status.Terminal() {
			close(ch)
		}
	}
	if e.job.Status.Terminal() {
		e.subs = make(map[chan models.Job]struct{})
	}
	return nil
}

// offer replaces any unread snapshot in ch with job. Caller holds mu, which
// makes it the only sender.
func offer(ch chan models.Job, job models.Job) {
	select {
	case ch <- job:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- job
}

// Subscribe returns a channel carrying the latest snapshot of the job. Slow
// readers only see the most recent state. The channel is closed after the
// terminal snapshot; cancel releases it earlier.
func (t *Tracker) Subscribe(id string) (<-chan models.Job, func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.jobs[id]
	if !ok {
		return nil, nil, ErrNotFound
	}

	ch := make(chan models.Job, 1)
	ch <- e.job
	if e.job.Status.Terminal() {
		close(ch)
		return ch, func() {}, nil
	}

	e.subs[ch] = struct{}{}
	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}
