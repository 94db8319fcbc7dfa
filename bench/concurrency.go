package bench

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// maxSampledErrors caps the error descriptions carried by an
// all-requests-failed result.
const maxSampledErrors = 5

// ConcurrencyConfig parameterizes a concurrency benchmark run.
type ConcurrencyConfig struct {
	Concurrent        int
	RequestsPerClient int
	Prompt            string
	MaxTokens         int
	OnOutcome         func(Outcome)
}

// ConcurrencyResult holds the outcome of a concurrency benchmark.
// SummaryStats covers successful requests only and is nil, with Error and
// up to maxSampledErrors entries in Errors, when every request failed.
type ConcurrencyResult struct {
	*SummaryStats
	TotalDurationS       float64  `json:"total_duration_s,omitempty"`
	TotalRequests        int      `json:"total_requests"`
	SuccessfulRequests   int      `json:"successful_requests"`
	FailedRequests       int      `json:"failed_requests"`
	TotalTokens          int      `json:"total_tokens,omitempty"`
	OverallThroughputRPS float64  `json:"overall_throughput_rps,omitempty"`
	OverallThroughputTPS float64  `json:"overall_throughput_tps,omitempty"`
	ConcurrentClients    int      `json:"concurrent_clients,omitempty"`
	Error                string   `json:"error,omitempty"`
	Errors               []string `json:"errors,omitempty"`
}

// RunConcurrency launches Concurrent*RequestsPerClient requests as
// independent goroutines all at once and waits for every one of them. No
// client-side throttling is applied: the endpoint, not the benchmark, sets
// the concurrency ceiling.
func RunConcurrency(ctx context.Context, gen Generator, cfg ConcurrencyConfig) *ConcurrencyResult {
	total := cfg.Concurrent * cfg.RequestsPerClient
	log.Printf("concurrency benchmark: %d clients x %d requests = %d total",
		cfg.Concurrent, cfg.RequestsPerClient, total)

	outcomes := make([]Outcome, total)
	start := time.Now()

	var wg sync.WaitGroup
	for id := 0; id < total; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			outcomes[id] = issueOne(ctx, gen, cfg.Prompt, cfg.MaxTokens, id)
		}(id)
	}
	wg.Wait()

	// Wall-clock duration of the whole batch, not the sum of latencies.
	totalDuration := time.Since(start).Seconds()

	if cfg.OnOutcome != nil {
		for _, o := range outcomes {
			cfg.OnOutcome(o)
		}
	}

	var latencies []float64
	var errDescs []string
	totalTokens := 0
	for _, o := range outcomes {
		if o.OK {
			latencies = append(latencies, o.LatencyS)
			totalTokens += o.Tokens
		} else {
			errDescs = append(errDescs, o.Err)
		}
	}

	if len(latencies) == 0 {
		sample := errDescs
		if len(sample) > maxSampledErrors {
			sample = sample[:maxSampledErrors]
		}
		log.Printf("  all %d requests failed", total)
		return &ConcurrencyResult{
			TotalRequests:  total,
			FailedRequests: len(errDescs),
			Error:          "All requests failed",
			Errors:         sample,
		}
	}

	stats, err := Summarize(latencies)
	if err != nil {
		// Unreachable: latencies is non-empty here.
		return &ConcurrencyResult{TotalRequests: total, Error: err.Error()}
	}

	res := &ConcurrencyResult{
		SummaryStats:         stats,
		TotalDurationS:       totalDuration,
		TotalRequests:        total,
		SuccessfulRequests:   len(latencies),
		FailedRequests:       total - len(latencies),
		TotalTokens:          totalTokens,
		OverallThroughputRPS: float64(len(latencies)) / totalDuration,
		OverallThroughputTPS: float64(totalTokens) / totalDuration,
		ConcurrentClients:    cfg.Concurrent,
	}

	log.Printf("  %d/%d successful in %.2fs, mean=%.3fs p99=%.3fs, %.2f tok/s",
		res.SuccessfulRequests, res.TotalRequests, res.TotalDurationS,
		res.MeanLatencyS, res.P99LatencyS, res.OverallThroughputTPS)

	return res
}

// issueOne times a single request. A panicking Generator is recorded as a
// failed outcome; the batch barrier always completes.
func issueOne(ctx context.Context, gen Generator, prompt string, maxTokens, id int) (o Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			o = Outcome{RequestID: id, Err: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	start := time.Now()
	text, err := gen.Generate(ctx, prompt, maxTokens)
	elapsed := time.Since(start).Seconds()

	o = Outcome{RequestID: id, LatencyS: elapsed}
	if err != nil {
		o.Err = err.Error()
		return o
	}
	o.OK = true
	o.Tokens = ApproxTokens(text)
	return o
}
