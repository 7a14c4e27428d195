package detection

import (
	"github.com/samber/lo"

	"farmwatch/internal/models"
)

// highConfidence is the cut-off for the high confidence counter.
const highConfidence = 0.8

// Summarize aggregates the detections of one run.
func Summarize(detections []models.Detection) models.DetectionSummary {
	summary := models.DetectionSummary{
		UniqueAnimals:        []string{},
		AnimalCounts:         map[string]int{},
		PriorityDistribution: map[models.Priority]int{},
	}
	if len(detections) == 0 {
		return summary
	}

	summary.TotalDetections = len(detections)
	summary.UniqueAnimals = lo.Uniq(lo.Map(detections, func(d models.Detection, _ int) string { return d.Species }))
	summary.AnimalCounts = lo.CountValuesBy(detections, func(d models.Detection) string { return d.Species })
	summary.PriorityDistribution = lo.CountValuesBy(detections, func(d models.Detection) models.Priority { return d.Priority })

	confidences := lo.Map(detections, func(d models.Detection, _ int) float64 { return d.Confidence })
	summary.AverageConfidence = lo.Sum(confidences) / float64(len(confidences))
	summary.HighestConfidence = lo.Max(confidences)
	summary.LowestConfidence = lo.Min(confidences)
	summary.HighConfidenceCount = lo.CountBy(confidences, func(c float64) bool { return c >= highConfidence })
	summary.FramesWithDetections = len(lo.Uniq(lo.Map(detections, func(d models.Detection, _ int) int { return d.FrameIndex })))
	return summary
}

// SpeciesOf lists the distinct species in detection order.
func SpeciesOf(detections []models.Detection) []string {
	return lo.Uniq(lo.Map(detections, func(d models.Detection, _ int) string { return d.Species }))
}
