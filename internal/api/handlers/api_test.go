package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwatch/internal/models"
	"farmwatch/internal/services/detection"
	"farmwatch/internal/services/history"
	"farmwatch/internal/services/notification"
)

type fakeHistory struct {
	records []models.HistoryRecord
	err     error
}

func (f fakeHistory) List() ([]models.HistoryRecord, error) {
	return f.records, f.err
}

func (f fakeHistory) Stats() (models.HistoryStats, error) {
	if f.err != nil {
		return models.HistoryStats{}, f.err
	}
	return history.Aggregate(f.records), nil
}

func TestHistoryEndpoints(t *testing.T) {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store := fakeHistory{records: []models.HistoryRecord{
		{ID: "old", Timestamp: base, Detections: []models.Detection{{Species: "cow"}}, DetectionCount: 1},
		{ID: "new", Timestamp: base.Add(time.Hour), Detections: []models.Detection{{Species: "cow"}, {Species: "goat"}}, DetectionCount: 2},
	}}
	h := NewHistoryHandler(store)
	r := gin.New()
	r.GET("/api/history", h.GetHistory)
	r.GET("/api/detection_statistics", h.GetStatistics)

	w := serveJSON(r, http.MethodGet, "/api/history", "")
	assertStatus(t, http.StatusOK, w)
	hist := decode[HistoryResponse](t, w)
	require.Len(t, hist.Records, 2)
	assert.Equal(t, "new", hist.Records[0].ID)
	assert.Equal(t, 2, hist.Total)

	w = serveJSON(r, http.MethodGet, "/api/detection_statistics", "")
	assertStatus(t, http.StatusOK, w)
	stats := decode[models.HistoryStats](t, w)
	assert.Equal(t, 3, stats.TotalDetections)
	assert.Equal(t, 2, stats.TotalVideos)
	assert.Equal(t, map[string]int{"cow": 2, "goat": 1}, stats.AnimalCounts)
}

func TestHistoryEndpoints_ReadError(t *testing.T) {
	h := NewHistoryHandler(fakeHistory{err: errors.New("corrupt")})
	r := gin.New()
	r.GET("/api/history", h.GetHistory)

	w := serveJSON(r, http.MethodGet, "/api/history", "")
	assertStatus(t, http.StatusInternalServerError, w)
}

func newDetectionRouter() (*gin.Engine, *detection.Service) {
	svc := detection.NewService(nil, 0.6, time.Second, zerolog.Nop())
	h := NewDetectionHandler(svc)
	r := gin.New()
	r.GET("/api/supported_animals", h.GetSupportedAnimals)
	r.GET("/api/config/detection", h.GetConfig)
	r.PUT("/api/config/confidence", h.UpdateConfidence)
	r.PUT("/api/config/priorities", h.UpdatePriorities)
	return r, svc
}

func TestSupportedAnimals(t *testing.T) {
	r, svc := newDetectionRouter()

	w := serveJSON(r, http.MethodGet, "/api/supported_animals", "")
	assertStatus(t, http.StatusOK, w)
	resp := decode[SupportedAnimalsResponse](t, w)
	assert.Equal(t, svc.SupportedSpecies(), resp.Animals)
	assert.Equal(t, len(resp.Animals), resp.TotalCount)
	assert.Contains(t, resp.Animals, "elephant")
}

func TestUpdateConfidence(t *testing.T) {
	r, svc := newDetectionRouter()

	w := serveJSON(r, http.MethodPut, "/api/config/confidence", `{"confidence_threshold":0.75}`)
	assertStatus(t, http.StatusOK, w)
	assert.Equal(t, 0.75, decode[DetectionConfigResponse](t, w).ConfidenceThreshold)
	assert.Equal(t, 0.75, svc.ConfidenceThreshold())

	for _, body := range []string{`{}`, `{"confidence_threshold":1.5}`, `not json`} {
		w = serveJSON(r, http.MethodPut, "/api/config/confidence", body)
		assertStatus(t, http.StatusBadRequest, w)
	}
	assert.Equal(t, 0.75, svc.ConfidenceThreshold())
}

func TestUpdatePriorities(t *testing.T) {
	r, svc := newDetectionRouter()

	w := serveJSON(r, http.MethodPut, "/api/config/priorities", `{"priorities":{"cow":"HIGH"}}`)
	assertStatus(t, http.StatusOK, w)
	assert.Equal(t, models.PriorityHigh, decode[DetectionConfigResponse](t, w).Priorities["cow"])
	assert.Equal(t, models.PriorityHigh, svc.PriorityOf("cow"))
	assert.Equal(t, models.PriorityCritical, svc.PriorityOf("elephant"))

	w = serveJSON(r, http.MethodPut, "/api/config/priorities", `{"priorities":{"cow":"URGENT"}}`)
	assertStatus(t, http.StatusBadRequest, w)
	assert.Equal(t, models.PriorityHigh, svc.PriorityOf("cow"))

	w = serveJSON(r, http.MethodPut, "/api/config/priorities", `{"priorities":{}}`)
	assertStatus(t, http.StatusBadRequest, w)
}

type fakeEmail struct {
	err       error
	recipient string
}

func (f *fakeEmail) Statistics() notification.Statistics {
	return notification.Statistics{
		RateStats:  notification.RateStats{TotalEmailsSent: 4, MaxPerHour: 10},
		Configured: true,
	}
}

func (f *fakeEmail) SendTest(_ context.Context, recipient string) error {
	f.recipient = recipient
	return f.err
}

func TestEmailEndpoints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"sent", nil, http.StatusOK},
		{"not configured", notification.ErrNotConfigured, http.StatusBadRequest},
		{"no recipient", notification.ErrNoRecipient, http.StatusBadRequest},
		{"rate limited", notification.ErrRateLimited, http.StatusTooManyRequests},
		{"smtp failure", errors.Join(notification.ErrDelivery, errors.New("auth failed")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &fakeEmail{err: tt.err}
			h := NewEmailHandler(email)
			r := gin.New()
			r.POST("/api/email/test", h.SendTest)

			w := serveJSON(r, http.MethodPost, "/api/email/test", `{"recipient":"farmer@example.com"}`)
			assertStatus(t, tt.want, w)
			assert.Equal(t, "farmer@example.com", email.recipient)
		})
	}
}

func TestEmailStatistics(t *testing.T) {
	h := NewEmailHandler(&fakeEmail{})
	r := gin.New()
	r.GET("/api/email/statistics", h.GetStatistics)

	w := serveJSON(r, http.MethodGet, "/api/email/statistics", "")
	assertStatus(t, http.StatusOK, w)
	body := decode[map[string]any](t, w)
	assert.Equal(t, 4.0, body["total_emails_sent"])
	assert.Equal(t, 10.0, body["rate_limit_max_per_hour"])
	assert.Equal(t, true, body["configured"])
}

type staticStatus bool

func (s staticStatus) ModelLoaded() bool { return bool(s) }
func (s staticStatus) Configured() bool  { return bool(s) }

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	require.NoError(t, os.Mkdir(uploads, 0o755))

	tests := []struct {
		name       string
		model      staticStatus
		wantStatus string
	}{
		{"model ready", true, "healthy"},
		{"model missing", false, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("farm-1", "1.2.3", uploads, filepath.Join(dir, "missing"), tt.model, staticStatus(false))
			r := gin.New()
			r.GET("/health", h.HealthCheck)

			w := serveJSON(r, http.MethodGet, "/health", "")
			assertStatus(t, http.StatusOK, w)
			resp := decode[HealthResponse](t, w)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "farm-1", resp.WorkerID)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Equal(t, bool(tt.model), resp.Services.Detector)
			assert.False(t, resp.Services.EmailAlerts)
			assert.True(t, resp.Services.UploadFolder)
			assert.False(t, resp.Services.ProcessedFolder)
		})
	}
}

type fakeQueue struct{}

func (fakeQueue) Stats() notification.DispatcherStats {
	return notification.DispatcherStats{Queued: 1, Sent: 2}
}

func TestSystemStats(t *testing.T) {
	h := NewSystemHandler("farm-1", fakeQueue{})
	r := gin.New()
	r.GET("/system/stats", h.GetStats)

	w := serveJSON(r, http.MethodGet, "/system/stats", "")
	assertStatus(t, http.StatusOK, w)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["success"])
	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "farm-1", stats["worker_id"])
	assert.Contains(t, stats, "alert_queue")
}
