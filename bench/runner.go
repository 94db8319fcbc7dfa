package bench

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Benchmark mode selectors accepted by Runner.Run.
const (
	ModeLatency     = "latency"
	ModeThroughput  = "throughput"
	ModeConcurrency = "concurrency"
	ModeFull        = "full"
)

// Default prompts and token budgets per benchmark.
const (
	DefaultLatencyPrompt     = "Write a short paragraph about artificial intelligence."
	DefaultThroughputPrompt  = "Explain the concept of machine learning."
	DefaultConcurrencyPrompt = "Describe a sunset."

	DefaultMaxTokens         = 100
	defaultConcurrencyTokens = 50
)

// Fixed parameters for the quick and full operating modes.
const (
	quickLatencyRequests = 20
	fullLatencyRequests  = 100

	quickThroughputDuration = 30 * time.Second
	fullThroughputDuration  = 60 * time.Second

	quickConcurrentClients = 5
	quickRequestsPerClient = 3
	fullConcurrentClients  = 10
	fullRequestsPerClient  = 5
)

// Metadata identifies one benchmark run.
type Metadata struct {
	Server    string `json:"server"`
	Model     string `json:"model,omitempty"`
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
}

// Report is the aggregate result of a Runner invocation. Field names and
// nesting are consumed by downstream tooling and must stay stable.
type Report struct {
	Metadata    Metadata           `json:"metadata"`
	Latency     *LatencyResult     `json:"latency,omitempty"`
	Throughput  *ThroughputResult  `json:"throughput,omitempty"`
	Concurrency *ConcurrencyResult `json:"concurrency,omitempty"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
}

// Runner executes benchmarks against a single Generator and assembles the
// report. Zero-valued override fields fall back to the quick/full
// constants.
type Runner struct {
	Gen    Generator
	Server string
	Model  string
	Quick  bool

	// Overrides; 0 means "use the operating-mode default".
	NumRequests       int
	Duration          time.Duration
	Concurrent        int
	RequestsPerClient int
	MaxTokens         int

	// OnOutcome, when set, observes every request attempt.
	OnOutcome func(benchmark string, o Outcome)
}

// Run executes the selected benchmark mode and returns the report. A panic
// escaping a benchmark's own failure absorption is caught here: the report
// is marked failed, carries the error description, and still contains
// whatever results were built before the failure.
func (r *Runner) Run(ctx context.Context, mode string) (report *Report) {
	opMode := "full"
	if r.Quick {
		opMode = "quick"
	}
	report = &Report{
		Metadata: Metadata{
			Server:    r.Server,
			Model:     r.Model,
			RunID:     uuid.NewString(),
			Timestamp: time.Now().Format(time.RFC3339),
			Mode:      opMode,
		},
	}

	defer func() {
		if rec := recover(); rec != nil {
			report.Status = "failed"
			report.Error = fmt.Sprint(rec)
			log.Printf("benchmark failed: %v", rec)
		}
	}()

	log.Printf("benchmark run %s against %s (mode=%s)", report.Metadata.RunID, r.Server, opMode)

	switch mode {
	case ModeLatency:
		report.Latency = RunLatency(ctx, r.Gen, r.latencyConfig())
	case ModeThroughput:
		report.Throughput = RunThroughput(ctx, r.Gen, r.throughputConfig())
	case ModeConcurrency:
		report.Concurrency = RunConcurrency(ctx, r.Gen, r.concurrencyConfig())
	case ModeFull:
		report.Latency = RunLatency(ctx, r.Gen, r.latencyConfig())
		report.Throughput = RunThroughput(ctx, r.Gen, r.throughputConfig())
		report.Concurrency = RunConcurrency(ctx, r.Gen, r.concurrencyConfig())
	default:
		panic(fmt.Sprintf("unknown benchmark mode %q", mode))
	}

	report.Status = "completed"
	return report
}

func (r *Runner) latencyConfig() LatencyConfig {
	n := r.NumRequests
	if n == 0 {
		n = fullLatencyRequests
		if r.Quick {
			n = quickLatencyRequests
		}
	}
	return LatencyConfig{
		NumRequests: n,
		Prompt:      DefaultLatencyPrompt,
		MaxTokens:   r.maxTokens(DefaultMaxTokens),
		OnOutcome:   r.observer(ModeLatency),
	}
}

func (r *Runner) throughputConfig() ThroughputConfig {
	d := r.Duration
	if d == 0 {
		d = fullThroughputDuration
		if r.Quick {
			d = quickThroughputDuration
		}
	}
	return ThroughputConfig{
		Duration:  d,
		Prompt:    DefaultThroughputPrompt,
		MaxTokens: r.maxTokens(DefaultMaxTokens),
		OnOutcome: r.observer(ModeThroughput),
	}
}

func (r *Runner) concurrencyConfig() ConcurrencyConfig {
	clients := r.Concurrent
	perClient := r.RequestsPerClient
	if clients == 0 {
		clients = fullConcurrentClients
		if r.Quick {
			clients = quickConcurrentClients
		}
	}
	if perClient == 0 {
		perClient = fullRequestsPerClient
		if r.Quick {
			perClient = quickRequestsPerClient
		}
	}
	return ConcurrencyConfig{
		Concurrent:        clients,
		RequestsPerClient: perClient,
		Prompt:            DefaultConcurrencyPrompt,
		MaxTokens:         r.maxTokens(defaultConcurrencyTokens),
		OnOutcome:         r.observer(ModeConcurrency),
	}
}

// ConcurrentClients returns the concurrency level the concurrency
// benchmark will run with, after applying overrides and mode defaults.
func (r *Runner) ConcurrentClients() int {
	return r.concurrencyConfig().Concurrent
}

func (r *Runner) maxTokens(def int) int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return def
}

func (r *Runner) observer(benchmark string) func(Outcome) {
	if r.OnOutcome == nil {
		return nil
	}
	return func(o Outcome) {
		r.OnOutcome(benchmark, o)
	}
}
