package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwatch/internal/models"
	"farmwatch/internal/services/jobs"
	"farmwatch/internal/services/pipeline"
)

type fakeSubmitter struct {
	tracker *jobs.Tracker
	err     error

	mu  sync.Mutex
	got []jobs.SubmitRequest
}

func (f *fakeSubmitter) Submit(req jobs.SubmitRequest) (models.Job, error) {
	f.mu.Lock()
	f.got = append(f.got, req)
	f.mu.Unlock()
	if f.err != nil {
		return models.Job{}, f.err
	}
	return f.tracker.Create(models.Job{
		ID:             "job-1",
		SourcePath:     req.SourcePath,
		ProcessedVideo: jobs.ProcessedName(req.StoredFilename),
		Metadata: models.VideoMetadata{
			TotalFrames:      300,
			FPS:              30,
			Duration:         10,
			OriginalFilename: req.OriginalFilename,
		},
	}), nil
}

func newVideoRouter(t *testing.T, submitErr error) (*gin.Engine, *fakeSubmitter, *jobs.Tracker, string) {
	t.Helper()
	dir := t.TempDir()
	tracker := jobs.NewTracker()
	sub := &fakeSubmitter{tracker: tracker, err: submitErr}
	h := NewVideoHandler(UploadSettings{
		UploadDir:         filepath.Join(dir, "uploads"),
		MaxUploadSize:     1 << 20,
		AllowedExtensions: []string{"mp4", "avi"},
	}, sub, tracker)

	r := gin.New()
	r.POST("/api/upload_video", h.UploadVideo)
	r.GET("/api/processing_progress/:id", h.GetProgress)
	r.GET("/api/processing_progress/:id/stream", h.StreamProgress)
	r.GET("/api/jobs/:id/result", h.GetResult)
	return r, sub, tracker, filepath.Join(dir, "uploads")
}

func TestUploadVideo_Accepted(t *testing.T) {
	r, sub, _, uploads := newVideoRouter(t, nil)
	body, ct := multipartBody(t, "video", "barn cam.mp4", []byte("fake video"))

	w := serve(r, http.MethodPost, "/api/upload_video", body, ct)
	assertStatus(t, http.StatusAccepted, w)

	resp := decode[UploadResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, models.JobStatusStarting, resp.Status)
	assert.Equal(t, "/api/processing_progress/job-1", resp.ProgressURL)
	assert.Equal(t, "/api/processing_progress/job-1/stream", resp.ProgressStreamURL)
	assert.Equal(t, "/api/jobs/job-1/result", resp.ResultURL)
	assert.Equal(t, "/static/processed/"+resp.ProcessedVideo, resp.ProcessedVideoURL)
	assert.Equal(t, 300, resp.VideoMetadata.TotalFrames)

	require.Len(t, sub.got, 1)
	req := sub.got[0]
	assert.Equal(t, "barn_cam.mp4", req.OriginalFilename)
	assert.True(t, strings.HasPrefix(req.StoredFilename, "barn_cam_"))
	assert.True(t, strings.HasSuffix(req.StoredFilename, ".mp4"))

	saved, err := os.ReadFile(filepath.Join(uploads, req.StoredFilename))
	require.NoError(t, err)
	assert.Equal(t, "fake video", string(saved))
}

func TestUploadVideo_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		wantErr  string
	}{
		{"no file field", "", "", "No video file provided"},
		{"wrong extension", "video", "notes.txt", "Invalid file type. Allowed: mp4, avi"},
		{"no extension", "video", "video", "Invalid file type. Allowed: mp4, avi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sub, _, _ := newVideoRouter(t, nil)
			body, ct := multipartBody(t, tt.field, tt.filename, []byte("x"))

			w := serve(r, http.MethodPost, "/api/upload_video", body, ct)
			assertStatus(t, http.StatusBadRequest, w)
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w).Error)
			assert.Empty(t, sub.got)
		})
	}
}

func TestUploadVideo_UnreadableSourceIsRemoved(t *testing.T) {
	r, sub, _, uploads := newVideoRouter(t, fmt.Errorf("probe: %w", pipeline.ErrSourceUnavailable))
	body, ct := multipartBody(t, "video", "clip.avi", []byte("garbage"))

	w := serve(r, http.MethodPost, "/api/upload_video", body, ct)
	assertStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, "Could not read video file", decode[ErrorResponse](t, w).Error)

	require.Len(t, sub.got, 1)
	_, err := os.Stat(filepath.Join(uploads, sub.got[0].StoredFilename))
	assert.True(t, os.IsNotExist(err))
}

func TestGetProgress(t *testing.T) {
	r, _, tracker, _ := newVideoRouter(t, nil)
	tracker.Create(models.Job{ID: "abc", Metadata: models.VideoMetadata{TotalFrames: 100}})
	tracker.Update("abc", models.Progress{
		Status:             models.JobStatusProcessing,
		ProgressPercentage: 42,
		CurrentFrame:       42,
		TotalFrames:        100,
	})

	w := serveJSON(r, http.MethodGet, "/api/processing_progress/abc", "")
	assertStatus(t, http.StatusOK, w)
	resp := decode[ProgressResponse](t, w)
	assert.Equal(t, "abc", resp.VideoID)
	assert.Equal(t, models.JobStatusProcessing, resp.Status)
	assert.Equal(t, 42.0, resp.ProgressPercentage)
}

func TestGetProgress_NotFound(t *testing.T) {
	r, _, _, _ := newVideoRouter(t, nil)

	w := serveJSON(r, http.MethodGet, "/api/processing_progress/missing", "")
	assertStatus(t, http.StatusNotFound, w)
	resp := decode[NotFoundResponse](t, w)
	assert.Equal(t, "Video processing not found", resp.Error)
	assert.Equal(t, "missing", resp.VideoID)
	assert.Equal(t, "not_found", resp.Status)
}

func TestStreamProgress_UntilCompleted(t *testing.T) {
	r, _, tracker, _ := newVideoRouter(t, nil)
	tracker.Create(models.Job{ID: "abc", Metadata: models.VideoMetadata{TotalFrames: 10}})

	go func() {
		time.Sleep(20 * time.Millisecond)
		tracker.Update("abc", models.Progress{Status: models.JobStatusProcessing, CurrentFrame: 5, TotalFrames: 10})
		_ = tracker.Complete("abc", models.Progress{ProgressPercentage: 100}, nil, "rec-1", time.Second)
	}()

	w := serveJSON(r, http.MethodGet, "/api/processing_progress/abc/stream", "")
	assertStatus(t, http.StatusOK, w)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event:progress")
	assert.Contains(t, body, `"status":"starting"`)
	assert.Contains(t, body, `"status":"completed"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "}"), "stream ends after the terminal snapshot")
}

func TestStreamProgress_NotFound(t *testing.T) {
	r, _, _, _ := newVideoRouter(t, nil)

	w := serveJSON(r, http.MethodGet, "/api/processing_progress/missing/stream", "")
	assertStatus(t, http.StatusNotFound, w)
}

func TestGetResult(t *testing.T) {
	r, _, tracker, _ := newVideoRouter(t, nil)
	tracker.Create(models.Job{ID: "abc", ProcessedVideo: "processed_clip.mp4"})

	w := serveJSON(r, http.MethodGet, "/api/jobs/abc/result", "")
	assertStatus(t, http.StatusConflict, w)

	dets := []models.Detection{
		{Species: "cow", Confidence: 0.9, Priority: models.PriorityLow, FrameIndex: 3},
		{Species: "cow", Confidence: 0.7, Priority: models.PriorityLow, FrameIndex: 3},
		{Species: "elephant", Confidence: 0.95, Priority: models.PriorityCritical, FrameIndex: 9},
	}
	require.NoError(t, tracker.Complete("abc", models.Progress{ProgressPercentage: 100}, dets, "rec-1", 2*time.Second))

	w = serveJSON(r, http.MethodGet, "/api/jobs/abc/result", "")
	assertStatus(t, http.StatusOK, w)
	resp := decode[ResultResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "rec-1", resp.RecordID)
	assert.Equal(t, "/static/processed/processed_clip.mp4", resp.ProcessedVideoURL)
	assert.Equal(t, 2.0, resp.ProcessingTime)
	assert.Len(t, resp.Detections, 3)
	assert.Equal(t, 3, resp.Statistics.TotalDetections)
	assert.Equal(t, 2, resp.Statistics.UniqueAnimals)
	assert.Equal(t, 2, resp.Statistics.FramesWithDetections)
}

func TestGetResult_FailedJob(t *testing.T) {
	r, _, tracker, _ := newVideoRouter(t, nil)
	tracker.Create(models.Job{ID: "abc"})
	require.NoError(t, tracker.Fail("abc", models.Progress{Error: "decoder crashed"}))

	w := serveJSON(r, http.MethodGet, "/api/jobs/abc/result", "")
	assertStatus(t, http.StatusConflict, w)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "Video processing failed", resp.Error)
	assert.Equal(t, "decoder crashed", resp.Details)
}
