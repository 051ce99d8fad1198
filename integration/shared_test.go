//go:build basic || database

// Package integration contains integration tests for patentspike.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database backends need Docker: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/semiconip/patentspike/schema"
	"github.com/stretchr/testify/require"
)

// asOf pins every run so that the fixture dates stay inside the window.
const asOf = "2025-06-15"

var (
	// sharedBinaryPath holds the path to a patentspike binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the patentspike binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "patentspike-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "patentspike")
		buildCmd := exec.Command("go", "build", "-o", binPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build patentspike: %v", err))
		}

		sharedBinaryPath = binPath
	})

	return sharedBinaryPath
}

// runCommand runs the binary in dir with an isolated HOME and returns stdout.
func runCommand(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+dir, "KIPRIS_API_KEY=")
	stdout, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nStderr: %s", cmd.String(), stderr)
	}
	return string(stdout), err
}

// writeFixture writes a company-keyed record file: 삼성전자 spikes on HBM (600%),
// SK하이닉스 has an Emerging Signal on EUV (150%).
func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	now, err := time.Parse("2006-01-02", asOf)
	require.NoError(t, err)

	series := func(title, ipc string, recent, older int) []schema.Patent {
		var out []schema.Patent
		for i := range recent {
			out = append(out, schema.Patent{InventionTitle: title, IPCNumber: ipc,
				OpenDate: now.AddDate(0, 0, -(1 + i*3)).Format("20060102")})
		}
		step := 300 / (older - 1)
		for i := range older {
			out = append(out, schema.Patent{InventionTitle: title, IPCNumber: ipc,
				OpenDate: now.AddDate(0, 0, -(45 + i*step)).Format("20060102")})
		}
		return out
	}

	records := map[string][]schema.Patent{
		"삼성전자":   series("HBM 적층 메모리", "H01L25/065", 6, 11),
		"SK하이닉스": series("EUV 노광 장치", "G03F7/20", 3, 22),
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)

	path := filepath.Join(dir, "patents.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// baseArgs are the flags shared by every fetch-based command in these tests.
func baseArgs(fixture string) []string {
	return []string{"--input", fixture, "--as-of", asOf, "--companies", "삼성전자,SK하이닉스"}
}
