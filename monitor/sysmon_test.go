package monitor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUFromStat(t *testing.T) {
	// user=30 nice=10 system=20 idle=40 -> 60% used.
	stat := "cpu  30 10 20 40 0 0 0 0 0 0\ncpu0 30 10 20 40 0 0 0 0 0 0\n"

	cpu, err := cpuFromStat(strings.NewReader(stat))
	require.NoError(t, err)
	assert.InDelta(t, 60.0, cpu, 1e-9)
}

func TestCPUFromStatMalformed(t *testing.T) {
	cpu, err := cpuFromStat(strings.NewReader("garbage\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cpu)
}

func TestMemFromMeminfo(t *testing.T) {
	meminfo := strings.Join([]string{
		"MemTotal:       16000000 kB",
		"MemFree:         2000000 kB",
		"MemAvailable:    4000000 kB",
		"Buffers:          500000 kB",
	}, "\n")

	mem, err := memFromMeminfo(strings.NewReader(meminfo))
	require.NoError(t, err)
	assert.InDelta(t, 75.0, mem, 1e-9)
}

func TestMemFromMeminfoMissingTotal(t *testing.T) {
	mem, err := memFromMeminfo(strings.NewReader("MemAvailable: 1 kB\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, mem)
}

func TestGetSystemStats(t *testing.T) {
	stats, err := New().GetSystemStats()
	require.NoError(t, err)

	assert.False(t, stats.Timestamp.IsZero())
	assert.GreaterOrEqual(t, stats.CPUUtilization, 0.0)
	assert.LessOrEqual(t, stats.CPUUtilization, 100.0)
	assert.GreaterOrEqual(t, stats.MemoryUsage, 0.0)
	assert.LessOrEqual(t, stats.MemoryUsage, 100.0)
}
