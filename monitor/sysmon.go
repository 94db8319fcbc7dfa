// Package monitor samples load-generator host statistics so operators can
// verify the benchmark client is not the bottleneck.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// SystemStats holds system-level statistics.
type SystemStats struct {
	CPUUtilization float64
	MemoryUsage    float64
	Timestamp      time.Time
}

// Monitor reads host statistics from /proc.
type Monitor struct{}

// New creates a host monitor.
func New() *Monitor {
	return &Monitor{}
}

// GetSystemStats collects current system statistics.
func (m *Monitor) GetSystemStats() (*SystemStats, error) {
	stats := &SystemStats{
		Timestamp: time.Now(),
	}

	cpuUtil, err := m.cpuUtilization()
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU utilization: %w", err)
	}
	stats.CPUUtilization = cpuUtil

	memUsage, err := m.memoryUsage()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}
	stats.MemoryUsage = memUsage

	return stats, nil
}

func (m *Monitor) cpuUtilization() (float64, error) {
	file, err := os.Open("/proc/stat")
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return cpuFromStat(file)
}

func (m *Monitor) memoryUsage() (float64, error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return memFromMeminfo(file)
}

// cpuFromStat parses the aggregate cpu line of /proc/stat. Note this is a
// since-boot average; tracking deltas over time would give instantaneous
// utilization.
func cpuFromStat(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) >= 5 && fields[0] == "cpu" {
			user, _ := strconv.ParseInt(fields[1], 10, 64)
			nice, _ := strconv.ParseInt(fields[2], 10, 64)
			system, _ := strconv.ParseInt(fields[3], 10, 64)
			idle, _ := strconv.ParseInt(fields[4], 10, 64)

			total := user + nice + system + idle
			used := user + nice + system

			if total > 0 {
				return float64(used) / float64(total) * 100, nil
			}
		}
	}

	return 0, nil
}

// memFromMeminfo parses /proc/meminfo and returns used memory as a
// percentage of total.
func memFromMeminfo(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	var total, available int64

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				total, _ = strconv.ParseInt(fields[1], 10, 64)
			}
		} else if strings.HasPrefix(line, "MemAvailable:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				available, _ = strconv.ParseInt(fields[1], 10, 64)
			}
		}
	}

	if total > 0 {
		used := total - available
		return float64(used) / float64(total) * 100, nil
	}

	return 0, nil
}
