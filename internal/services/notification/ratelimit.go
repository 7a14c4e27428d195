package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"farmwatch/internal/models"
)

const (
	// rateWindow is the span of the hourly send log.
	rateWindow = time.Hour
	// statsWindow bounds the daily log kept for statistics.
	statsWindow = 24 * time.Hour
)

type rateState struct {
	EmailHistory []models.Timestamp          `json:"email_history"`
	LastAlerts   map[string]models.Timestamp `json:"last_alerts"`
	DailyHistory []models.Timestamp          `json:"daily_history,omitempty"`
}

// RateLimiter enforces an hourly send cap and a minimum interval between
// alerts for the same species set. State survives restarts through a JSON file.
type RateLimiter struct {
	path        string
	maxPerHour  int
	minInterval time.Duration
	logger      zerolog.Logger

	mu      sync.Mutex
	history []time.Time // sends within rateWindow
	daily   []time.Time // sends within statsWindow
	last    map[string]time.Time
}

// RateStats is the limiter view served by the email statistics endpoint.
type RateStats struct {
	TotalEmailsSent    int                  `json:"total_emails_sent"`
	EmailsLast24h      int                  `json:"emails_last_24h"`
	EmailsLastHour     int                  `json:"emails_last_hour"`
	MaxPerHour         int                  `json:"rate_limit_max_per_hour"`
	MinIntervalMinutes float64              `json:"min_interval_minutes"`
	LastAlerts         map[string]time.Time `json:"last_alerts"`
}

// NewRateLimiter loads state from path. An unreadable file starts empty.
func NewRateLimiter(path string, maxPerHour int, minInterval time.Duration, logger zerolog.Logger) *RateLimiter {
	r := &RateLimiter{
		path:        path,
		maxPerHour:  maxPerHour,
		minInterval: minInterval,
		logger:      logger,
		last:        map[string]time.Time{},
	}
	if err := r.load(); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Error loading rate limit data")
	}
	return r
}

// AlertKey is the canonical key for a species set: sorted, de-duplicated and
// joined with "|".
func AlertKey(species []string) string {
	keys := lo.Uniq(species)
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// legacyKey is the older "_" joined form still found in state files.
func legacyKey(key string) string {
	return strings.ReplaceAll(key, "|", "_")
}

// Allow reports whether an alert for key may be sent at now, and why not.
func (r *RateLimiter) Allow(key string, now time.Time) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(now)
	if sent := len(r.history); sent >= r.maxPerHour {
		return false, fmt.Sprintf("rate limit exceeded: %d emails in the last hour", sent)
	}
	if last, ok := r.lastSent(key); ok && now.Sub(last) < r.minInterval {
		return false, fmt.Sprintf("alert for %s sent %s ago", key, now.Sub(last).Round(time.Second))
	}
	return true, ""
}

// Caller holds mu.
func (r *RateLimiter) lastSent(key string) (time.Time, bool) {
	if t, ok := r.last[key]; ok {
		return t, true
	}
	t, ok := r.last[legacyKey(key)]
	return t, ok
}

// Record marks a successful send for key and persists the state.
func (r *RateLimiter) Record(key string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, now)
	r.daily = append(r.daily, now)
	r.prune(now)
	if legacy := legacyKey(key); legacy != key {
		delete(r.last, legacy)
	}
	r.last[key] = now
	return r.save()
}

func (r *RateLimiter) Stats(now time.Time) RateStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(now)
	return RateStats{
		TotalEmailsSent:    len(r.daily),
		EmailsLast24h:      len(r.daily),
		EmailsLastHour:     len(r.history),
		MaxPerHour:         r.maxPerHour,
		MinIntervalMinutes: r.minInterval.Minutes(),
		LastAlerts:         lo.Assign(r.last),
	}
}

// prune drops entries outside each log's window. Caller holds mu.
func (r *RateLimiter) prune(now time.Time) {
	r.history = since(r.history, now.Add(-rateWindow))
	r.daily = since(r.daily, now.Add(-statsWindow))
}

func since(times []time.Time, cutoff time.Time) []time.Time {
	return lo.Filter(times, func(t time.Time, _ int) bool { return t.After(cutoff) })
}

func (r *RateLimiter) load() error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var state rateState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	toTime := func(t models.Timestamp, _ int) time.Time { return time.Time(t) }
	r.history = lo.Map(state.EmailHistory, toTime)
	r.daily = lo.Map(state.DailyHistory, toTime)
	if len(r.daily) == 0 {
		r.daily = append([]time.Time(nil), r.history...)
	}
	for key, t := range state.LastAlerts {
		r.last[key] = time.Time(t)
	}
	return nil
}

// Caller holds mu.
func (r *RateLimiter) save() error {
	if r.path == "" {
		return nil
	}
	toStamp := func(t time.Time, _ int) models.Timestamp { return models.Timestamp(t) }
	state := rateState{
		EmailHistory: lo.Map(r.history, toStamp),
		LastAlerts:   lo.MapValues(r.last, func(t time.Time, _ string) models.Timestamp { return models.Timestamp(t) }),
		DailyHistory: lo.Map(r.daily, toStamp),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(r.path, data, 0o644)
}
