package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMAIL_USER", "")
	t.Setenv("EMAIL_PASS", "")
	t.Setenv("ALERT_EMAIL", "")
	t.Setenv("CONFIDENCE_THRESHOLD", "")

	cfg := Load()

	assert.Equal(t, 0.6, cfg.ConfidenceThreshold)
	assert.Equal(t, 30, cfg.LiveSampleInterval)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 10, cfg.MaxEmailsPerHour)
	assert.Equal(t, 5*time.Minute, cfg.MinAlertInterval)
	assert.Equal(t, int64(500*1024*1024), cfg.MaxUploadSize)
	assert.Contains(t, cfg.AllowedExtensions, "mp4")
	assert.False(t, cfg.EmailConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "0.75")
	t.Setenv("MIN_ALERT_INTERVAL", "2m")
	t.Setenv("EMAIL_USER", "farm@example.com")
	t.Setenv("EMAIL_PASS", "secret")
	t.Setenv("ALERT_EMAIL", "")
	t.Setenv("ALLOWED_EXTENSIONS", ".MP4, avi")
	t.Setenv("LIVE_SAMPLE_INTERVAL", "not-a-number")

	cfg := Load()

	assert.Equal(t, 0.75, cfg.ConfidenceThreshold)
	assert.Equal(t, 2*time.Minute, cfg.MinAlertInterval)
	assert.True(t, cfg.EmailConfigured())
	assert.Equal(t, "farm@example.com", cfg.AlertEmail, "alert recipient falls back to the sender")
	assert.Equal(t, []string{"mp4", "avi"}, cfg.AllowedExtensions)
	assert.Equal(t, 30, cfg.LiveSampleInterval, "invalid ints keep the default")
}
