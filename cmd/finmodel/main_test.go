package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategic_finance/pkg/core/finance"
	"strategic_finance/pkg/models"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "llm:\n" +
		"  models_file: " + filepath.Join(dir, "models.yaml") + "\n" +
		"  resources_dir: " + filepath.Join(dir, "resources") + "\n" +
		"knowledge:\n" +
		"  path: " + filepath.Join(dir, "kb.hjson") + "\n" +
		"  watch: false\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"finmodel"}, args...))
	require.NoError(t, err, out.String())
	return out.String()
}

func TestProject_JSON(t *testing.T) {
	cfg := writeConfig(t)
	out := run(t, "--config", cfg, "project", "--query", "5 months with 3 salespeople", "--json")

	var resp finance.QueryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.MonthlyProjections, 5)
	assert.Equal(t, 3, resp.MonthlyProjections[0].SalesPeople)
}

func TestProject_SummaryChartAndFiles(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "model.xlsx")
	html := filepath.Join(dir, "model.html")

	out := run(t, "--config", cfg, "project", "-q", "6 months", "--chart", "--out", xlsx, "--report", html)

	assert.Contains(t, out, "Ending MRR")
	assert.Contains(t, out, "Total monthly revenue over 6 months")
	assert.Contains(t, out, "workbook written to "+xlsx)
	assert.FileExists(t, xlsx)
	assert.FileExists(t, html)
}

func TestProject_InvalidHorizon(t *testing.T) {
	cfg := writeConfig(t)
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"finmodel", "--config", cfg, "project", "--query", "0 months"})
	assert.Error(t, err)
}

func TestProject_UnknownProvider(t *testing.T) {
	cfg := writeConfig(t)
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"finmodel", "--config", cfg, "--provider", "nope", "project", "--query", "3 months"})
	assert.Error(t, err)
}

func TestDriversAndProviders(t *testing.T) {
	cfg := writeConfig(t)

	out := run(t, "--config", cfg, "drivers")
	assert.Contains(t, out, "number_of_sales_people")

	out = run(t, "--config", cfg, "providers")
	assert.Contains(t, out, "offline")
}

func TestRenderChart(t *testing.T) {
	assert.Contains(t, renderChart(nil), "No data available")

	chart := renderChart([]models.MonthlyProjection{{Month: 1, TotalRevenue: 216667}})
	assert.True(t, strings.Contains(chart, "Total monthly revenue over 1 months"))
}
