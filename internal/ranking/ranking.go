// Package ranking orders scored channels and flags the ones well above average.
package ranking

import (
	"cmp"
	"slices"

	"tgscout/internal/channel"
)

type Flagged struct {
	channel.Scored
	PercentAboveAverage float64
}

type Evaluation struct {
	// Sorted is every channel by descending score, ties in their original order.
	Sorted  []channel.Scored
	Flagged []Flagged
	Average float64
}

// Average is the mean score, 0 for no channels.
func Average(scored []channel.Scored) float64 {
	if len(scored) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scored {
		sum += s.Score
	}
	return float64(sum) / float64(len(scored))
}

// Sort returns a copy of the channels ordered by descending score. The sort is stable.
func Sort(scored []channel.Scored) []channel.Scored {
	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, func(a, b channel.Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return sorted
}

// Evaluate sorts the channels and flags every channel scoring more than thresholdPercent
// above the average. Nothing is flagged when the average is 0.
func Evaluate(scored []channel.Scored, thresholdPercent float64) Evaluation {
	sorted := Sort(scored)
	average := Average(sorted)

	var flagged []Flagged
	if average > 0 {
		limit := average * (1 + thresholdPercent/100)
		for _, s := range sorted {
			if float64(s.Score) <= limit {
				continue
			}
			flagged = append(flagged, Flagged{
				Scored:              s,
				PercentAboveAverage: (float64(s.Score)/average - 1) * 100,
			})
		}
	}

	return Evaluation{
		Sorted:  sorted,
		Flagged: flagged,
		Average: average,
	}
}
