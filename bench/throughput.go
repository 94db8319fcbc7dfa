package bench

import (
	"context"
	"log"
	"time"
)

// ThroughputConfig parameterizes a throughput benchmark run.
type ThroughputConfig struct {
	Duration  time.Duration
	Prompt    string
	MaxTokens int
	OnOutcome func(Outcome)
}

// ThroughputResult holds the outcome of a throughput benchmark.
type ThroughputResult struct {
	DurationS           float64 `json:"duration_s"`
	TotalRequests       int     `json:"total_requests"`
	TotalTokens         int     `json:"total_tokens"`
	RequestsPerSecond   float64 `json:"requests_per_second"`
	TokensPerSecond     float64 `json:"tokens_per_second"`
	Errors              int     `json:"errors"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
}

// RunThroughput issues requests back-to-back until cfg.Duration has
// elapsed. The final in-flight request may push the run past the nominal
// deadline; rates use the measured elapsed time as the denominator, so the
// overshoot is reflected rather than hidden.
func RunThroughput(ctx context.Context, gen Generator, cfg ThroughputConfig) *ThroughputResult {
	log.Printf("throughput benchmark: %v duration, max_tokens=%d", cfg.Duration, cfg.MaxTokens)

	start := time.Now()
	deadline := start.Add(cfg.Duration)

	requests := 0
	totalTokens := 0
	errors := 0
	id := 0

	for time.Now().Before(deadline) {
		reqStart := time.Now()
		text, err := gen.Generate(ctx, cfg.Prompt, cfg.MaxTokens)
		elapsed := time.Since(reqStart).Seconds()

		o := Outcome{RequestID: id, LatencyS: elapsed}
		id++
		if err != nil {
			errors++
			o.Err = err.Error()
			if errors < 5 {
				log.Printf("  error: %v", err)
			}
		} else {
			requests++
			o.OK = true
			o.Tokens = ApproxTokens(text)
			totalTokens += o.Tokens
			if requests%10 == 0 {
				log.Printf("  %d requests in %.1fs", requests, time.Since(start).Seconds())
			}
		}
		if cfg.OnOutcome != nil {
			cfg.OnOutcome(o)
		}
	}

	actual := time.Since(start).Seconds()

	res := &ThroughputResult{
		DurationS:         actual,
		TotalRequests:     requests,
		TotalTokens:       totalTokens,
		RequestsPerSecond: float64(requests) / actual,
		TokensPerSecond:   float64(totalTokens) / actual,
		Errors:            errors,
	}
	if requests > 0 {
		res.AvgTokensPerRequest = float64(totalTokens) / float64(requests)
	}

	log.Printf("  %d requests, %d tokens, %.2f req/s, %.2f tok/s, %d errors",
		res.TotalRequests, res.TotalTokens, res.RequestsPerSecond, res.TokensPerSecond, res.Errors)

	return res
}
