package store

import (
	"math"
)

// Stats summarizes completed work
type Stats struct {
	Completed            int
	AvgEstimateMinutes   int
	AvgActualMinutes     int
	AvgLatenessMinutes   int
	ProcrastinationCoeff float64
}

// Analyze computes completion statistics over the given tasks, considering
// only those that are done. The suggested coefficient is the ratio of
// average actual to average estimated minutes, clamped to the allowed range,
// and 1 when either average is zero.
func Analyze(tasks []Task) Stats {
	var (
		total                     int
		sumEst, sumActual, sumLat float64
	)
	for _, t := range tasks {
		if !t.Done() {
			continue
		}
		total++
		if t.EstimatedMinutes != nil {
			sumEst += float64(*t.EstimatedMinutes)
		}
		sumActual += float64(t.ActualMinutes)
		if t.CompletedAt != nil && t.DueAt != nil {
			// whole minutes late, truncated like a minute difference
			late := math.Trunc(t.CompletedAt.Sub(*t.DueAt).Minutes())
			if late > 0 {
				sumLat += late
			}
		}
	}

	div := float64(total)
	if total == 0 {
		div = 1
	}
	stats := Stats{
		Completed:            total,
		AvgEstimateMinutes:   int(math.Round(sumEst / div)),
		AvgActualMinutes:     int(math.Round(sumActual / div)),
		AvgLatenessMinutes:   int(math.Round(sumLat / div)),
		ProcrastinationCoeff: DefaultProcrastinationCoeff,
	}
	if stats.AvgActualMinutes > 0 && stats.AvgEstimateMinutes > 0 {
		stats.ProcrastinationCoeff = clampCoeff(float64(stats.AvgActualMinutes) / float64(stats.AvgEstimateMinutes))
	}
	return stats
}
