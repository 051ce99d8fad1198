//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spikesDoc struct {
	PeriodMonths   int     `json:"period_months"`
	SpikeThreshold float64 `json:"spike_threshold"`
	Spikes         []struct {
		Company       string  `json:"company"`
		Category      string  `json:"category"`
		Count1M       int     `json:"count_1m"`
		SpikeRatioPct float64 `json:"spike_ratio_pct"`
		Signal        string  `json:"signal"`
		Color         string  `json:"color"`
	} `json:"spikes"`
}

// TestSpikesFromInputFile runs spike detection on a fixture and checks the tiers.
func TestSpikesFromInputFile(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFixture(t, dir)

	args := append([]string{"spikes", "--output", "json", "--cache-backend", "none"}, baseArgs(fixture)...)
	out, err := runCommand(t, dir, args...)
	require.NoError(t, err)

	var doc spikesDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 12, doc.PeriodMonths)
	assert.InDelta(t, 200.0, doc.SpikeThreshold, 0.001)
	require.Len(t, doc.Spikes, 2)

	assert.Equal(t, "삼성전자", doc.Spikes[0].Company)
	assert.Equal(t, "HBM/고대역폭메모리", doc.Spikes[0].Category)
	assert.Equal(t, 6, doc.Spikes[0].Count1M)
	assert.InDelta(t, 600.0, doc.Spikes[0].SpikeRatioPct, 0.05)
	assert.Equal(t, "Strategic Spike", doc.Spikes[0].Signal)
	assert.Equal(t, "#00FF00", doc.Spikes[0].Color)

	assert.Equal(t, "SK하이닉스", doc.Spikes[1].Company)
	assert.Equal(t, "Emerging Signal", doc.Spikes[1].Signal)
}

// TestThresholdDemotesSpike raises the threshold above the HBM ratio.
func TestThresholdDemotesSpike(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFixture(t, dir)

	args := append([]string{"spikes", "--output", "json", "--cache-backend", "none", "--threshold", "500"}, baseArgs(fixture)...)
	out, err := runCommand(t, dir, args...)
	require.NoError(t, err)

	var doc spikesDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.NotEmpty(t, doc.Spikes)
	assert.Equal(t, "Strategic Spike", doc.Spikes[0].Signal)

	args = append([]string{"spikes", "--output", "json", "--cache-backend", "none", "--threshold", "700"}, baseArgs(fixture)...)
	_, err = runCommand(t, dir, args...)
	require.Error(t, err, "threshold above 500 must be rejected")
}

// TestCheckFailsOnStrategicSpike expects a non-zero exit while a spike exists.
func TestCheckFailsOnStrategicSpike(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFixture(t, dir)

	args := append([]string{"check", "--cache-backend", "none"}, baseArgs(fixture)...)
	_, err := runCommand(t, dir, args...)
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.NotZero(t, exitErr.ExitCode())

	args = append([]string{"check", "--cache-backend", "none", "--input", fixture, "--as-of", asOf, "--companies", "SK하이닉스"})
	_, err = runCommand(t, dir, args...)
	assert.NoError(t, err)
}

// TestMissingAPIKeyFails needs either KIPRIS_API_KEY or --input.
func TestMissingAPIKeyFails(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, dir, "spikes", "--cache-backend", "none")
	assert.Error(t, err)
}

// TestSyncAndExportWithSQLite records a run, syncs it and exports the history.
func TestSyncAndExportWithSQLite(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFixture(t, dir)
	syncFile := filepath.Join(dir, "dashboard.json")

	args := append([]string{"sync", "--analysis-backend", "sqlite", "--sync-file", syncFile}, baseArgs(fixture)...)
	_, err := runCommand(t, dir, args...)
	require.NoError(t, err)

	data, err := os.ReadFile(syncFile)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Contains(t, payload, "companies")

	out, err := runCommand(t, dir, "analysis", "status", "--analysis-backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 1")

	prefix := filepath.Join(dir, "history")
	_, err = runCommand(t, dir, "analysis", "export", "--analysis-backend", "sqlite", "--output-file", prefix)
	require.NoError(t, err)
	for _, suffix := range []string{".analysis_runs.parquet", ".spike_alerts.parquet", ".sync_documents.parquet"} {
		assert.FileExists(t, prefix+suffix)
	}

	_, err = runCommand(t, dir, "analysis", "clear", "--analysis-backend", "sqlite")
	require.NoError(t, err)
}

// TestInformationalCommands run without any patent source.
func TestInformationalCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := runCommand(t, dir, "companies", "--cache-backend", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "삼성전자")

	out, err = runCommand(t, dir, "tiers", "--cache-backend", "none", "--threshold", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "Strategic Spike")

	out, err = runCommand(t, dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "patentspike CLI")
}
