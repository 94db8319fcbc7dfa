package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generatorFunc adapts a function to the Generator interface for tests.
type generatorFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}

func TestRunLatencyPartialFailures(t *testing.T) {
	// Deterministic interleaving: success, fail, success, fail, success.
	calls := 0
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls%2 == 0 {
			return "", errors.New("boom")
		}
		return "generated text here", nil
	})

	res := RunLatency(context.Background(), gen, LatencyConfig{
		NumRequests: 5,
		Prompt:      "p",
		MaxTokens:   10,
	})

	assert.Equal(t, 3, res.SuccessfulRequests)
	assert.Equal(t, 2, res.FailedRequests)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.SummaryStats)
	assert.GreaterOrEqual(t, res.MinLatencyS, 0.0)
}

func TestRunLatencyAllFail(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", errors.New("always fails")
	})

	res := RunLatency(context.Background(), gen, LatencyConfig{
		NumRequests: 4,
		Prompt:      "p",
		MaxTokens:   10,
	})

	assert.Equal(t, "No successful requests", res.Error)
	assert.Equal(t, 0, res.SuccessfulRequests)
	assert.Equal(t, 4, res.FailedRequests)
	assert.Nil(t, res.SummaryStats)
}

func TestRunLatencyCountsAddUp(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls == 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	res := RunLatency(context.Background(), gen, LatencyConfig{NumRequests: 7, Prompt: "p", MaxTokens: 5})

	assert.Equal(t, 7, res.SuccessfulRequests+res.FailedRequests)
	assert.Equal(t, 7, calls)
}

func TestRunLatencyObserverSeesEveryAttempt(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("first fails")
		}
		return "a b c", nil
	})

	var observed []Outcome
	RunLatency(context.Background(), gen, LatencyConfig{
		NumRequests: 3,
		Prompt:      "p",
		MaxTokens:   5,
		OnOutcome:   func(o Outcome) { observed = append(observed, o) },
	})

	require.Len(t, observed, 3)
	assert.False(t, observed[0].OK)
	assert.Equal(t, "first fails", observed[0].Err)
	assert.True(t, observed[1].OK)
	assert.Equal(t, 3, observed[1].Tokens)
	assert.Equal(t, 2, observed[2].RequestID)
}
