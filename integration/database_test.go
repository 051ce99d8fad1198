//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts a container and returns host:port of the exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped.Port()
}

// exerciseBackends runs a cached, tracked analysis twice and checks both stores.
func exerciseBackends(t *testing.T, cacheBackend, cacheConn, analysisBackend, analysisConn string) {
	t.Helper()
	t.Setenv("PATENTSPIKE_CACHE_BACKEND", cacheBackend)
	t.Setenv("PATENTSPIKE_CACHE_DB_CONNECT", cacheConn)
	t.Setenv("PATENTSPIKE_ANALYSIS_BACKEND", analysisBackend)
	t.Setenv("PATENTSPIKE_ANALYSIS_DB_CONNECT", analysisConn)

	dir := t.TempDir()
	fixture := writeFixture(t, dir)

	_, err := runCommand(t, dir, "cache", "clear")
	require.NoError(t, err)
	if analysisBackend != "" {
		_, err = runCommand(t, dir, "analysis", "clear")
		require.NoError(t, err)
	}

	for range 2 {
		_, err = runCommand(t, dir, append([]string{"spikes", "--output", "json"}, baseArgs(fixture)...)...)
		require.NoError(t, err)
	}

	out, err := runCommand(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")

	if analysisBackend != "" {
		out, err = runCommand(t, dir, "analysis", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "Total Runs: 2")
	}
}

// TestPatentspikeWithMySQL tests the CLI with a MySQL backend.
func TestPatentspikeWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "patentspike",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/patentspike?parseTime=true&multiStatements=true", host, port)
	exerciseBackends(t, "mysql", connStr, "mysql", connStr)
}

// TestPatentspikeWithPostgres tests the CLI with a PostgreSQL backend.
func TestPatentspikeWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432")

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	exerciseBackends(t, "postgresql", connStr, "postgresql", connStr)
}

// TestPatentspikeWithRedis uses Redis for the cache without run tracking.
func TestPatentspikeWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	exerciseBackends(t, "redis", fmt.Sprintf("redis://%s:%s/0", host, port), "", "")
}
