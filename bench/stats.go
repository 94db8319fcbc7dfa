package bench

import (
	"errors"
	"math"
	"sort"
)

// ErrNoSamples is returned when statistics are requested over an empty
// sample set.
var ErrNoSamples = errors.New("no samples")

// SummaryStats holds aggregated latency statistics for one benchmark run.
// All durations are in seconds.
type SummaryStats struct {
	MeanLatencyS   float64 `json:"mean_latency_s"`
	MedianLatencyS float64 `json:"median_latency_s"`
	P95LatencyS    float64 `json:"p95_latency_s"`
	P99LatencyS    float64 `json:"p99_latency_s"`
	MinLatencyS    float64 `json:"min_latency_s"`
	MaxLatencyS    float64 `json:"max_latency_s"`
	StdDevS        float64 `json:"std_dev_s"`
}

// Percentile returns the nearest-rank percentile of samples: the value at
// the zero-indexed rank floor(n*p/100), clamped to the last index. The
// input is copied and sorted internally.
func Percentile(samples []float64, p float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p), nil
}

func percentileSorted(sorted []float64, p float64) float64 {
	idx := int(float64(len(sorted)) * p / 100)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Summarize folds a non-empty set of latency samples into SummaryStats.
// The median is computed with the same nearest-rank rule as the higher
// percentiles, so min <= median <= p95 <= p99 <= max holds structurally.
func Summarize(samples []float64) (*SummaryStats, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	// Population standard deviation; zero for a single sample.
	stdDev := 0.0
	if len(sorted) >= 2 {
		sqSum := 0.0
		for _, v := range sorted {
			d := v - mean
			sqSum += d * d
		}
		stdDev = math.Sqrt(sqSum / float64(len(sorted)))
	}

	return &SummaryStats{
		MeanLatencyS:   mean,
		MedianLatencyS: percentileSorted(sorted, 50),
		P95LatencyS:    percentileSorted(sorted, 95),
		P99LatencyS:    percentileSorted(sorted, 99),
		MinLatencyS:    sorted[0],
		MaxLatencyS:    sorted[len(sorted)-1],
		StdDevS:        stdDev,
	}, nil
}
