package history

import (
	"sort"

	"github.com/samber/lo"

	"farmwatch/internal/models"
)

const recentActivityLimit = 10

// Aggregate computes totals over records. Recent activity lists the newest
// records first.
func Aggregate(records []models.HistoryRecord) models.HistoryStats {
	all := lo.FlatMap(records, func(r models.HistoryRecord, _ int) []models.Detection { return r.Detections })

	stats := models.HistoryStats{
		TotalDetections: len(all),
		TotalVideos:     len(records),
		AnimalCounts:    lo.CountValuesBy(all, func(d models.Detection) string { return d.Species }),
		RecentActivity:  NewestFirst(records),
	}
	if len(stats.RecentActivity) > recentActivityLimit {
		stats.RecentActivity = stats.RecentActivity[:recentActivityLimit]
	}
	return stats
}

// NewestFirst returns a copy of records sorted by timestamp, newest first.
func NewestFirst(records []models.HistoryRecord) []models.HistoryRecord {
	out := make([]models.HistoryRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Stats aggregates the stored records.
func (s *Store) Stats() (models.HistoryStats, error) {
	records, err := s.List()
	if err != nil {
		return models.HistoryStats{}, err
	}
	return Aggregate(records), nil
}
