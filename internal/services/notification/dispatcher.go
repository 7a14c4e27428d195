package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"farmwatch/internal/models"
)

// Notifier delivers one alert. Errors wrapping ErrDelivery are retried.
type Notifier interface {
	Deliver(ctx context.Context, req models.AlertRequest) error
}

// Dispatcher queues alerts and sends them from a single worker so producers
// never wait on SMTP.
type Dispatcher struct {
	notifier    Notifier
	queue       chan models.AlertRequest
	retries     int
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      zerolog.Logger

	stopped atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	sent    atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

type DispatcherStats struct {
	Queued  int   `json:"queued"`
	Sent    int64 `json:"sent"`
	Dropped int64 `json:"dropped"`
	Failed  int64 `json:"failed"`
}

func NewDispatcher(notifier Notifier, queueSize, retries int, backoffMax time.Duration, logger zerolog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 16
	}
	if retries < 0 {
		retries = 0
	}
	if backoffMax <= 0 {
		backoffMax = 30 * time.Second
	}
	return &Dispatcher{
		notifier:    notifier,
		queue:       make(chan models.AlertRequest, queueSize),
		retries:     retries,
		backoffBase: time.Second,
		backoffMax:  backoffMax,
		logger:      logger,
	}
}

// Start launches the worker. It runs until Stop or ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.run(ctx)
	d.logger.Info().Int("queue_size", cap(d.queue)).Msg("Alert dispatcher started")
}

// Enqueue adds req without blocking. It returns false when the queue is full
// or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(req models.AlertRequest) bool {
	if d.stopped.Load() {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.queue <- req:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Stop cancels in-flight retries and waits for the worker. Queued alerts are
// discarded.
func (d *Dispatcher) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	if n := len(d.queue); n > 0 {
		d.logger.Warn().Int("pending", n).Msg("Alert dispatcher stopped with pending alerts")
	}
	d.logger.Info().Msg("Alert dispatcher stopped")
}

func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Queued:  len(d.queue),
		Sent:    d.sent.Load(),
		Dropped: d.dropped.Load(),
		Failed:  d.failed.Load(),
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			d.deliver(ctx, req)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, req models.AlertRequest) {
	for attempt := 0; ; attempt++ {
		err := d.notifier.Deliver(ctx, req)
		if err == nil {
			d.sent.Add(1)
			return
		}
		if !errors.Is(err, ErrDelivery) {
			return
		}
		if attempt >= d.retries {
			d.failed.Add(1)
			d.logger.Error().Err(err).Strs("species", req.Species).Int("attempts", attempt+1).Msg("Giving up on alert")
			return
		}

		wait := d.backoff(attempt)
		d.logger.Warn().Err(err).Dur("retry_in", wait).Int("attempt", attempt+1).Msg("Alert delivery failed, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// backoff doubles from backoffBase, capped at backoffMax.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	wait := d.backoffBase << attempt
	if wait <= 0 || wait > d.backoffMax {
		return d.backoffMax
	}
	return wait
}
