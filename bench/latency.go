package bench

import (
	"context"
	"log"
	"time"
)

// LatencyConfig parameterizes a latency benchmark run.
type LatencyConfig struct {
	NumRequests int
	Prompt      string
	MaxTokens   int
	OnOutcome   func(Outcome)
}

// LatencyResult holds the outcome of a latency benchmark. SummaryStats is
// nil and Error is set when no request succeeded.
type LatencyResult struct {
	*SummaryStats
	SuccessfulRequests int    `json:"successful_requests"`
	FailedRequests     int    `json:"failed_requests"`
	Error              string `json:"error,omitempty"`
}

// RunLatency issues cfg.NumRequests sequential requests and aggregates
// per-request latencies. A failed request contributes no sample and never
// aborts the loop.
func RunLatency(ctx context.Context, gen Generator, cfg LatencyConfig) *LatencyResult {
	log.Printf("latency benchmark: %d requests, max_tokens=%d", cfg.NumRequests, cfg.MaxTokens)

	latencies := make([]float64, 0, cfg.NumRequests)
	failed := 0

	for i := 0; i < cfg.NumRequests; i++ {
		start := time.Now()
		text, err := gen.Generate(ctx, cfg.Prompt, cfg.MaxTokens)
		elapsed := time.Since(start).Seconds()

		o := Outcome{RequestID: i, LatencyS: elapsed}
		if err != nil {
			failed++
			o.Err = err.Error()
			log.Printf("  error on request %d: %v", i+1, err)
		} else {
			o.OK = true
			o.Tokens = ApproxTokens(text)
			latencies = append(latencies, elapsed)
		}
		if cfg.OnOutcome != nil {
			cfg.OnOutcome(o)
		}

		if (i+1)%10 == 0 {
			log.Printf("  progress: %d/%d requests", i+1, cfg.NumRequests)
		}
	}

	if len(latencies) == 0 {
		return &LatencyResult{
			FailedRequests: failed,
			Error:          "No successful requests",
		}
	}

	stats, err := Summarize(latencies)
	if err != nil {
		// Unreachable: latencies is non-empty here.
		return &LatencyResult{FailedRequests: failed, Error: err.Error()}
	}

	log.Printf("  mean=%.3fs median=%.3fs p95=%.3fs p99=%.3fs min/max=%.3fs/%.3fs",
		stats.MeanLatencyS, stats.MedianLatencyS, stats.P95LatencyS,
		stats.P99LatencyS, stats.MinLatencyS, stats.MaxLatencyS)

	return &LatencyResult{
		SummaryStats:       stats,
		SuccessfulRequests: len(latencies),
		FailedRequests:     failed,
	}
}
