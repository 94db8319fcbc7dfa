package visualisation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBenchmarkDashboard(t *testing.T) {
	dashboard := CreateBenchmarkDashboard()

	require.NotEmpty(t, dashboard.Dashboard.Panels)
	assert.Equal(t, "LLM Benchmark Dashboard", dashboard.Dashboard.Title)

	// Every panel queries the benchmark's own metric namespace.
	for _, panel := range dashboard.Dashboard.Panels {
		require.NotEmpty(t, panel.Targets, "panel %q has no targets", panel.Title)
		for _, target := range panel.Targets {
			assert.True(t, strings.Contains(target.Expr, "llm_bench_"),
				"panel %q target %q does not reference llm_bench_ metrics", panel.Title, target.Expr)
		}
	}
}

func TestSaveDashboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grafana", "dashboard.json")

	require.NoError(t, SaveDashboard(CreateBenchmarkDashboard(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "dashboard")
}
