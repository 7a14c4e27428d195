package mjpeg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeholderJPEG() ([]byte, error) { return []byte("PLACEHOLDER"), nil }

func TestStream_IdleServesPlaceholderOnce(t *testing.T) {
	p := NewPublisher(placeholderJPEG, zerolog.Nop())

	rec := httptest.NewRecorder()
	p.StreamMJPEGHTTP(rec, httptest.NewRequest(http.MethodGet, "/video_feed", nil))

	body := rec.Body.String()
	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(body, "--frame\r\n"))
	assert.Contains(t, body, "Content-Length: 11\r\n\r\nPLACEHOLDER\r\n")
	assert.Zero(t, p.Viewers())
}

func TestStream_PlaceholderError(t *testing.T) {
	p := NewPublisher(func() ([]byte, error) { return nil, errors.New("no gui") }, zerolog.Nop())

	rec := httptest.NewRecorder()
	p.StreamMJPEGHTTP(rec, httptest.NewRequest(http.MethodGet, "/video_feed", nil))
	assert.Empty(t, rec.Body.String())
}

func TestStream_ActiveFeedUntilReset(t *testing.T) {
	p := NewPublisher(placeholderJPEG, zerolog.Nop())
	p.Activate()
	p.Publish([]byte("FIRST"))

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.StreamMJPEGHTTP(rec, httptest.NewRequest(http.MethodGet, "/video_feed", nil))
	}()

	require.Eventually(t, func() bool { return p.Viewers() == 1 }, time.Second, time.Millisecond)
	p.Publish([]byte("SECOND"))
	time.Sleep(20 * time.Millisecond)
	p.Reset()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("viewer not released on reset")
	}

	body := rec.Body.String()
	assert.Contains(t, body, "FIRST")
	assert.Contains(t, body, "SECOND")
	assert.NotContains(t, body, "PLACEHOLDER")
	assert.False(t, p.Active())
	assert.Zero(t, p.Viewers())
}

func TestStream_ClientDisconnect(t *testing.T) {
	p := NewPublisher(placeholderJPEG, zerolog.Nop())
	p.Activate()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/video_feed", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.StreamMJPEGHTTP(httptest.NewRecorder(), req)
	}()

	require.Eventually(t, func() bool { return p.Viewers() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("viewer not released on disconnect")
	}
	assert.Zero(t, p.Viewers())
	assert.True(t, p.Active(), "feed stays live for other viewers")
}

func TestStream_KeepaliveResendsLatest(t *testing.T) {
	p := NewPublisher(placeholderJPEG, zerolog.Nop())
	p.keepalive = 5 * time.Millisecond
	p.Activate()
	p.Publish([]byte("STILL"))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	p.StreamMJPEGHTTP(rec, httptest.NewRequest(http.MethodGet, "/video_feed", nil).WithContext(ctx))

	assert.Greater(t, strings.Count(rec.Body.String(), "STILL"), 1)
}
