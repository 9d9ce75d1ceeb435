//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPriorityxWithMySQL exercises the cache commands and a cached movement
// run against a MySQL backend.
func TestPriorityxWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "priorityx",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/priorityx?parseTime=true", host, port.Port())
	runCacheLifecycle(t, "mysql", connStr)
}

// TestPriorityxWithPostgres exercises the cache commands and a cached
// movement run against a PostgreSQL backend.
func TestPriorityxWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runCacheLifecycle(t, "postgresql", connStr)
}

// runCacheLifecycle clears, migrates, populates, and inspects the movement
// cache through the CLI against the given backend.
func runCacheLifecycle(t *testing.T, backend, connStr string) {
	t.Helper()

	_ = os.Setenv("PRIORITYX_CACHE_BACKEND", backend)
	_ = os.Setenv("PRIORITYX_CACHE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("PRIORITYX_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("PRIORITYX_CACHE_DB_CONNECT") }()

	_, err := runCommand(t, "cache", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, "cache", "migrate")
	require.NoError(t, err)

	// A movement run populates the cache; repeating it hits the cache.
	events := writeFixtureCSV(t)
	for range 2 {
		_, err = runCommand(t, "movement", events, "--min-total-count", "1", "--min-observations", "1")
		require.NoError(t, err)
	}

	out, err := runCommand(t, "cache", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Total Entries: 1")

	_, err = runCommand(t, "cache", "clear")
	require.NoError(t, err)
}
