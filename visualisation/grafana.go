// Package visualisation generates a Grafana dashboard for the metrics
// exported by the benchmark's Prometheus endpoint.
package visualisation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GrafanaDashboard represents a Grafana dashboard configuration
type GrafanaDashboard struct {
	Dashboard DashboardConfig `json:"dashboard"`
	FolderID  int             `json:"folderId"`
	Overwrite bool            `json:"overwrite"`
}

// DashboardConfig represents the dashboard configuration
type DashboardConfig struct {
	ID            interface{} `json:"id"`
	Title         string      `json:"title"`
	Tags          []string    `json:"tags"`
	Style         string      `json:"style"`
	Timezone      string      `json:"timezone"`
	Panels        []Panel     `json:"panels"`
	Time          TimeRange   `json:"time"`
	Refresh       string      `json:"refresh"`
	SchemaVersion int         `json:"schemaVersion"`
	Version       int         `json:"version"`
}

// Panel represents a Grafana panel
type Panel struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	GridPos     GridPos     `json:"gridPos"`
	Targets     []Target    `json:"targets"`
	FieldConfig FieldConfig `json:"fieldConfig"`
}

// GridPos represents panel grid position
type GridPos struct {
	H int `json:"h"`
	W int `json:"w"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Target represents a query target
type Target struct {
	Expr         string `json:"expr"`
	LegendFormat string `json:"legendFormat,omitempty"`
	RefID        string `json:"refId"`
}

// FieldConfig represents field configuration
type FieldConfig struct {
	Defaults Defaults `json:"defaults"`
}

// Defaults represents default field settings
type Defaults struct {
	Unit string `json:"unit"`
}

// TimeRange represents the dashboard time range
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CreateBenchmarkDashboard builds a dashboard over the llm_bench_* metrics.
func CreateBenchmarkDashboard() *GrafanaDashboard {
	return &GrafanaDashboard{
		Dashboard: DashboardConfig{
			ID:            nil,
			Title:         "LLM Benchmark Dashboard",
			Tags:          []string{"llm", "benchmark", "performance"},
			Style:         "dark",
			Timezone:      "browser",
			SchemaVersion: 30,
			Version:       1,
			Refresh:       "10s",
			Time: TimeRange{
				From: "now-1h",
				To:   "now",
			},
			Panels: []Panel{
				{
					ID:      1,
					Title:   "Latency Percentiles",
					Type:    "timeseries",
					GridPos: GridPos{H: 8, W: 12, X: 0, Y: 0},
					Targets: []Target{
						{
							Expr:         `histogram_quantile(0.50, rate(llm_bench_latency_seconds_bucket[1m]))`,
							LegendFormat: "p50 - {{benchmark}}",
							RefID:        "A",
						},
						{
							Expr:         `histogram_quantile(0.95, rate(llm_bench_latency_seconds_bucket[1m]))`,
							LegendFormat: "p95 - {{benchmark}}",
							RefID:        "B",
						},
						{
							Expr:         `histogram_quantile(0.99, rate(llm_bench_latency_seconds_bucket[1m]))`,
							LegendFormat: "p99 - {{benchmark}}",
							RefID:        "C",
						},
					},
					FieldConfig: FieldConfig{Defaults: Defaults{Unit: "s"}},
				},
				{
					ID:      2,
					Title:   "Request Rate",
					Type:    "timeseries",
					GridPos: GridPos{H: 8, W: 12, X: 12, Y: 0},
					Targets: []Target{
						{
							Expr:         `rate(llm_bench_requests_total[1m])`,
							LegendFormat: "{{benchmark}} - {{status}}",
							RefID:        "A",
						},
					},
					FieldConfig: FieldConfig{Defaults: Defaults{Unit: "reqps"}},
				},
				{
					ID:      3,
					Title:   "Token Rate",
					Type:    "timeseries",
					GridPos: GridPos{H: 8, W: 12, X: 0, Y: 8},
					Targets: []Target{
						{
							Expr:         `rate(llm_bench_tokens_total[1m])`,
							LegendFormat: "{{benchmark}}",
							RefID:        "A",
						},
					},
					FieldConfig: FieldConfig{Defaults: Defaults{Unit: "ops"}},
				},
				{
					ID:      4,
					Title:   "Errors",
					Type:    "timeseries",
					GridPos: GridPos{H: 8, W: 12, X: 12, Y: 8},
					Targets: []Target{
						{
							Expr:         `rate(llm_bench_requests_total{status="error"}[1m])`,
							LegendFormat: "{{benchmark}}",
							RefID:        "A",
						},
					},
					FieldConfig: FieldConfig{Defaults: Defaults{Unit: "reqps"}},
				},
				{
					ID:      5,
					Title:   "Load Generator Host",
					Type:    "timeseries",
					GridPos: GridPos{H: 8, W: 24, X: 0, Y: 16},
					Targets: []Target{
						{
							Expr:         `llm_bench_cpu_utilization`,
							LegendFormat: "cpu %",
							RefID:        "A",
						},
						{
							Expr:         `llm_bench_memory_utilization`,
							LegendFormat: "memory %",
							RefID:        "B",
						},
					},
					FieldConfig: FieldConfig{Defaults: Defaults{Unit: "percent"}},
				},
			},
		},
		FolderID:  0,
		Overwrite: true,
	}
}

// SaveDashboard saves the dashboard configuration to a JSON file
func SaveDashboard(dashboard *GrafanaDashboard, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write dashboard file: %w", err)
	}

	return nil
}
