package search

import (
	"math"

	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
)

// Calibration constants for answer confidence. Changing them changes every
// reported confidence value.
const (
	confidenceDivisor = 10.0
	confidenceCap     = 1.0
	neutralConfidence = 0.5
)

// estimateConfidence maps the mean absolute score of the filtered results to [0, 1]:
// min(1, mean(|score|) / 10), or 0.5 when the mean is zero.
// Callers only invoke it with at least one result.
func estimateConfidence(results []result.Result) float64 {
	if len(results) == 0 {
		return neutralConfidence
	}

	var sum float64
	for _, r := range results {
		sum += math.Abs(r.Score())
	}
	avg := sum / float64(len(results))

	if avg > 0 {
		return math.Min(confidenceCap, avg/confidenceDivisor)
	}
	return neutralConfidence
}
