package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"farmwatch/internal/models"
)

// DefaultLimit is the number of records kept on disk.
const DefaultLimit = 100

// Store keeps detection records in a single JSON array file. Appends are
// serialised within the process; concurrent writers from other processes are
// not supported.
type Store struct {
	path   string
	limit  int
	logger zerolog.Logger

	mu sync.Mutex
}

func NewStore(path string, limit int, logger zerolog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		path:   path,
		limit:  limit,
		logger: logger,
	}
}

// NewRecord builds a record for a finished run.
func NewRecord(filename string, detections []models.Detection, processing time.Duration) models.HistoryRecord {
	if detections == nil {
		detections = []models.Detection{}
	}
	return models.HistoryRecord{
		ID:             uuid.NewString(),
		Filename:       filename,
		Timestamp:      time.Now(),
		Detections:     detections,
		ProcessingTime: processing.Seconds(),
		DetectionCount: len(detections),
	}
}

// Append adds rec and truncates the file to the newest records.
func (s *Store) Append(rec models.HistoryRecord) (models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Detections == nil {
		rec.Detections = []models.Detection{}
	}
	rec.DetectionCount = len(rec.Detections)

	records, err := s.read()
	if err != nil {
		return models.HistoryRecord{}, err
	}
	records = append(records, rec)
	if len(records) > s.limit {
		records = records[len(records)-s.limit:]
	}

	if err := s.write(records); err != nil {
		return models.HistoryRecord{}, err
	}

	s.logger.Debug().
		Str("record_id", rec.ID).
		Str("filename", rec.Filename).
		Int("detections", rec.DetectionCount).
		Msg("Saved detection record")
	return rec, nil
}

// List returns all records in insertion order. A missing file is empty.
func (s *Store) List() ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() ([]models.HistoryRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return []models.HistoryRecord{}, nil
	}

	var records []models.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", s.path, err)
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	return records, nil
}

func (s *Store) write(records []models.HistoryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
