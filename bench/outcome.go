package bench

import (
	"context"
	"strings"
)

// Generator issues one generation request against the target endpoint.
// Implementations return the generated text or an error describing why
// the attempt failed; the benchmarks treat all errors uniformly.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Outcome represents the result of a single request attempt
type Outcome struct {
	RequestID int
	LatencyS  float64
	Tokens    int
	OK        bool
	Err       string
}

// ApproxTokens counts whitespace-delimited words in generated text.
// This is an approximation standing in for real tokenization; replacing
// it with a tokenizer would change all throughput numbers and break
// comparability with historical reports.
func ApproxTokens(text string) int {
	return len(strings.Fields(text))
}
