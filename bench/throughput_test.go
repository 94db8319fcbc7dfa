package bench

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunThroughputInstantSuccess(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "four words in response", nil
	})

	res := RunThroughput(context.Background(), gen, ThroughputConfig{
		Duration:  50 * time.Millisecond,
		Prompt:    "p",
		MaxTokens: 10,
	})

	assert.Equal(t, 0, res.Errors)
	assert.Greater(t, res.TotalRequests, 0)
	assert.Equal(t, res.TotalRequests*4, res.TotalTokens)

	// Rates use the measured elapsed time, never the nominal duration.
	assert.GreaterOrEqual(t, res.DurationS, 0.05)
	assert.InDelta(t, float64(res.TotalRequests)/res.DurationS, res.RequestsPerSecond, 1e-9)
	assert.InDelta(t, float64(res.TotalTokens)/res.DurationS, res.TokensPerSecond, 1e-9)

	assert.False(t, math.IsNaN(res.RequestsPerSecond))
	assert.False(t, math.IsInf(res.RequestsPerSecond, 0))
	assert.GreaterOrEqual(t, res.RequestsPerSecond, 0.0)
	assert.GreaterOrEqual(t, res.TokensPerSecond, 0.0)
	assert.InDelta(t, 4.0, res.AvgTokensPerRequest, 1e-9)
}

func TestRunThroughputOvershoot(t *testing.T) {
	// A slow final request pushes the run past the deadline; the measured
	// duration must include that overshoot.
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "ok", nil
	})

	res := RunThroughput(context.Background(), gen, ThroughputConfig{
		Duration:  10 * time.Millisecond,
		Prompt:    "p",
		MaxTokens: 10,
	})

	require.Greater(t, res.TotalRequests, 0)
	assert.Greater(t, res.DurationS, 0.01)
}

func TestRunThroughputErrorsNeverTerminate(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", errors.New("endpoint down")
	})

	res := RunThroughput(context.Background(), gen, ThroughputConfig{
		Duration:  20 * time.Millisecond,
		Prompt:    "p",
		MaxTokens: 10,
	})

	assert.Equal(t, 0, res.TotalRequests)
	assert.Greater(t, res.Errors, 0)
	// No successes: average must be a defined zero, not a division error.
	assert.Equal(t, 0.0, res.AvgTokensPerRequest)
	assert.Equal(t, 0.0, res.RequestsPerSecond)
}
