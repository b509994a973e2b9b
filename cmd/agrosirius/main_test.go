package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// setConfigEnv points AGROSIRIUS_CONFIG at path for the duration of the test.
func setConfigEnv(t *testing.T, path string) {
	t.Helper()
	originalEnv, had := os.LookupEnv("AGROSIRIUS_CONFIG")
	t.Cleanup(func() {
		if had {
			os.Setenv("AGROSIRIUS_CONFIG", originalEnv)
		} else {
			os.Unsetenv("AGROSIRIUS_CONFIG")
		}
	})
	os.Setenv("AGROSIRIUS_CONFIG", path)
}

// writeConfig writes content to a config file in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	setConfigEnv(t, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when no database path is set.
func TestRun_MissingDatabasePath(t *testing.T) {
	setConfigEnv(t, writeConfig(t, `
farm:
  id: test-farm

database:
  path: ""

logging:
  level: error
  format: text
  output: stdout
`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_WorkbookWithoutPath verifies the workbook backend needs a file.
func TestRun_WorkbookWithoutPath(t *testing.T) {
	setConfigEnv(t, writeConfig(t, `
farm:
  id: test-farm

workbook:
  enabled: true
  path: ""
`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when workbook.path is empty")
	}
}

// TestRun_SQLiteStartupAndShutdown starts with SQLite only and stops on cancel.
func TestRun_SQLiteStartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	setConfigEnv(t, writeConfig(t, `
farm:
  id: test-farm

database:
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18471
`))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := run(ctx)
	requireSQLite(t, err)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestRun_WorkbookStartupAndShutdown starts on the workbook backend.
func TestRun_WorkbookStartupAndShutdown(t *testing.T) {
	bookPath := filepath.Join(t.TempDir(), "campo.xlsx")
	setConfigEnv(t, writeConfig(t, `
farm:
  id: test-farm

workbook:
  enabled: true
  path: "`+bookPath+`"

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18472
`))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRun_WithMQTT starts with a broker. Requires MQTT at 127.0.0.1:1883.
func TestRun_WithMQTT(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	setConfigEnv(t, writeConfig(t, `
farm:
  id: test-farm

database:
  path: "`+dbPath+`"

mqtt:
  enabled: true
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "agrosirius-main-test"
  qos: 1

publish:
  interval: 1

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18473
`))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Skipf("MQTT broker not available: %v", err)
	}
}

type slowLoop struct {
	started  chan struct{}
	finished atomic.Bool
}

func (l *slowLoop) Run(ctx context.Context, _ time.Duration) {
	close(l.started)
	<-ctx.Done()
	// A publish pass still in flight when the signal lands.
	time.Sleep(50 * time.Millisecond)
	l.finished.Store(true)
}

// TestStartPublisher_WaitBlocksUntilLoopReturns verifies shutdown waits
// for the publisher before the sinks are closed.
func TestStartPublisher_WaitBlocksUntilLoopReturns(t *testing.T) {
	loop := &slowLoop{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	wait := startPublisher(ctx, loop, time.Second)
	<-loop.started
	cancel()
	wait()

	if !loop.finished.Load() {
		t.Error("wait returned before the publisher loop finished")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	setConfigEnv(t, "")
	os.Unsetenv("AGROSIRIUS_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	setConfigEnv(t, expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestHealthCheck_AllDisabled verifies nil backends are skipped.
func TestHealthCheck_AllDisabled(t *testing.T) {
	if err := healthCheck(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v, want nil", err)
	}
}

// requireSQLite skips the test when the sqlite3 driver was built without cgo.
func requireSQLite(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(err.Error(), "requires cgo") {
		t.Skip("sqlite3 driver unavailable: built without cgo")
	}
}
