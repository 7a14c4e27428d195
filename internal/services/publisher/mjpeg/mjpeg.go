package mjpeg

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const boundary = "frame"

// Publisher fans the latest annotated live frame out to MJPEG viewers.
type Publisher struct {
	placeholder func() ([]byte, error)
	keepalive   time.Duration
	logger      zerolog.Logger

	mu      sync.RWMutex
	active  bool
	latest  []byte
	viewers map[chan struct{}]struct{}
}

// NewPublisher creates an idle publisher. placeholder renders the frame
// served while no stream is active.
func NewPublisher(placeholder func() ([]byte, error), logger zerolog.Logger) *Publisher {
	return &Publisher{
		placeholder: placeholder,
		keepalive:   2 * time.Second,
		logger:      logger,
		viewers:     make(map[chan struct{}]struct{}),
	}
}

// Activate marks the feed live. Viewers connecting from now on stay attached.
func (p *Publisher) Activate() {
	p.mu.Lock()
	p.active = true
	p.mu.Unlock()
}

// Publish stores jpeg as the latest frame and wakes viewers.
func (p *Publisher) Publish(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest = jpeg
	for notify := range p.viewers {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
}

// Reset drops the latest frame and disconnects all viewers.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = false
	p.latest = nil
	for notify := range p.viewers {
		close(notify)
	}
	p.viewers = make(map[chan struct{}]struct{})
}

func (p *Publisher) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

func (p *Publisher) Viewers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.viewers)
}

func (p *Publisher) current() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// subscribe registers a viewer, or returns nil when the feed is idle.
func (p *Publisher) subscribe() chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return nil
	}
	notify := make(chan struct{}, 1)
	p.viewers[notify] = struct{}{}
	return notify
}

func (p *Publisher) unsubscribe(notify chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.viewers[notify]; ok {
		delete(p.viewers, notify)
		close(notify)
	}
}

// StreamMJPEGHTTP serves multipart/x-mixed-replace until the client leaves or
// the stream stops. An idle feed gets a single placeholder frame.
func (p *Publisher) StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	writePart := func(jpeg []byte) bool {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "Content-Type: image/jpeg\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(jpeg))); err != nil {
			return false
		}
		if _, err := w.Write(jpeg); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	notify := p.subscribe()
	if notify == nil {
		if p.placeholder == nil {
			return
		}
		jpeg, err := p.placeholder()
		if err != nil {
			p.logger.Warn().Err(err).Msg("Failed to render placeholder frame")
			return
		}
		writePart(jpeg)
		return
	}
	defer p.unsubscribe(notify)

	if first := p.current(); len(first) > 0 {
		if !writePart(first) {
			return
		}
	}

	keepaliveTicker := time.NewTicker(p.keepalive)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notify:
			if !ok {
				return
			}
			if buf := p.current(); len(buf) > 0 {
				if !writePart(buf) {
					return
				}
			}
		case <-keepaliveTicker.C:
			if buf := p.current(); len(buf) > 0 {
				if !writePart(buf) {
					return
				}
			}
		}
	}
}

func (p *Publisher) Shutdown() {
	p.Reset()
	p.logger.Info().Msg("MJPEG publisher shut down")
}
