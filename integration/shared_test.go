//go:build basic || database

// Package integration contains end-to-end tests for the priorityx CLI.
// These tests are excluded from normal test runs due to build tags.
// To run them: go test -tags basic ./integration
// Database-backed tests additionally need Docker: go test -tags database ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	// sharedBinaryPath holds the path to a priorityx binary built once for all tests.
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

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the priorityx binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "priorityx-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "priorityx")
		buildCmd := exec.Command("go", "build", "-o", binPath, "./cmd/priorityx")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build priorityx: %v", err))
		}

		sharedBinaryPath = binPath
	})

	return sharedBinaryPath
}

// runCommand runs the priorityx binary and returns its combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = ".."
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

// writeFixtureCSV writes a small events file with a clear Q3 -> Q1 mover.
func writeFixtureCSV(t *testing.T) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("service,occurred_at,count,channel\n")
	row := func(service, date string, count int, channel string) {
		fmt.Fprintf(&b, "%s,%s,%d,%s\n", service, date, count, channel)
	}

	// Steady baseline entities across two quarters.
	for _, date := range []string{"2024-04-05", "2024-05-10", "2024-06-20", "2024-07-05", "2024-08-10", "2024-09-20"} {
		row("billing", date, 20, "web")
		row("search", date, 5, "phone")
	}
	// checkout surges in Q3.
	row("checkout", "2024-04-15", 2, "web")
	row("checkout", "2024-05-15", 2, "web")
	for _, date := range []string{"2024-07-02", "2024-07-20", "2024-08-05", "2024-08-25", "2024-09-10", "2024-09-28"} {
		row("checkout", date, 15, "web")
	}

	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
