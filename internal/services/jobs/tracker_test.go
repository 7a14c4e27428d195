package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwatch/internal/models"
)

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker()
	job := tr.Create(models.Job{ID: "j1", Metadata: models.VideoMetadata{TotalFrames: 300}})
	assert.Equal(t, models.JobStatusStarting, job.Status)
	assert.Equal(t, 300, job.Progress.TotalFrames)

	tr.Update("j1", models.Progress{Status: models.JobStatusProcessing, CurrentFrame: 30, TotalFrames: 300})
	got, err := tr.Get("j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, got.Status)
	assert.Equal(t, 30, got.Progress.CurrentFrame)

	dets := []models.Detection{{Species: "cow"}}
	require.NoError(t, tr.Complete("j1", models.Progress{ProgressPercentage: 100}, dets, "rec-1", 2*time.Second))

	got, _ = tr.Get("j1")
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, models.JobStatusCompleted, got.Progress.Status)
	assert.Equal(t, "rec-1", got.RecordID)
	assert.Equal(t, 2.0, got.ProcessingTime)
	assert.NotNil(t, got.CompletedAt)
	assert.Len(t, got.Detections, 1)
}

func TestTracker_TerminalStatesAreFinal(t *testing.T) {
	tr := NewTracker()
	tr.Create(models.Job{ID: "j1"})
	require.NoError(t, tr.Fail("j1", models.Progress{Error: "boom"}))

	tr.Update("j1", models.Progress{Status: models.JobStatusProcessing})
	assert.ErrorIs(t, tr.Complete("j1", models.Progress{}, nil, "", 0), ErrFinished)
	assert.ErrorIs(t, tr.Fail("j1", models.Progress{}), ErrFinished)

	got, _ := tr.Get("j1")
	assert.Equal(t, models.JobStatusError, got.Status)
	assert.Equal(t, "boom", got.Progress.Error)
}

func TestTracker_UnknownJob(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = tr.Subscribe("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotPanics(t, func() { tr.Update("missing", models.Progress{}) })
}

func TestTracker_SubscribeLatestWins(t *testing.T) {
	tr := NewTracker()
	tr.Create(models.Job{ID: "j1"})

	ch, cancel, err := tr.Subscribe("j1")
	require.NoError(t, err)
	defer cancel()

	initial := <-ch
	assert.Equal(t, models.JobStatusStarting, initial.Status)

	for i := 1; i <= 5; i++ {
		tr.Update("j1", models.Progress{Status: models.JobStatusProcessing, CurrentFrame: i})
	}
	latest := <-ch
	assert.Equal(t, 5, latest.Progress.CurrentFrame, "unread snapshots are replaced")

	require.NoError(t, tr.Complete("j1", models.Progress{}, nil, "", 0))
	final, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, models.JobStatusCompleted, final.Status)

	_, ok = <-ch
	assert.False(t, ok, "closed after the terminal snapshot")
	assert.NotPanics(t, cancel)
}

func TestTracker_SubscribeFinishedJob(t *testing.T) {
	tr := NewTracker()
	tr.Create(models.Job{ID: "j1"})
	require.NoError(t, tr.Complete("j1", models.Progress{}, nil, "", 0))

	ch, cancel, err := tr.Subscribe("j1")
	require.NoError(t, err)
	defer cancel()

	snap := <-ch
	assert.Equal(t, models.JobStatusCompleted, snap.Status)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestTracker_CancelSubscription(t *testing.T) {
	tr := NewTracker()
	tr.Create(models.Job{ID: "j1"})

	ch, cancel, err := tr.Subscribe("j1")
	require.NoError(t, err)
	<-ch
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		tr.Update("j1", models.Progress{Status: models.JobStatusProcessing})
	})
}

func TestTracker_ListNewestFirst(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	tr.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	tr.Create(models.Job{ID: "old"})
	tr.Create(models.Job{ID: "new"})

	list := tr.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
}
