package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRunInvalidConfig verifies run fails with an invalid config path.
func TestRunInvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("ROOMSENSE_CONFIG")
	defer os.Setenv("ROOMSENSE_CONFIG", originalEnv)

	os.Setenv("ROOMSENSE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRunMissingDatabasePath verifies run fails when database path is empty.
func TestRunMissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1
  bootstrap_timeout: 2
  reconnect:
    initial_delay: 1
    max_delay: 10

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 8080
  timeouts:
    read: 30
    write: 30
    idle: 60
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("ROOMSENSE_CONFIG")
	defer os.Setenv("ROOMSENSE_CONFIG", originalEnv)
	os.Setenv("ROOMSENSE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPathDefault verifies the default config path.
func TestGetConfigPathDefault(t *testing.T) {
	originalEnv := os.Getenv("ROOMSENSE_CONFIG")
	defer os.Setenv("ROOMSENSE_CONFIG", originalEnv)

	os.Unsetenv("ROOMSENSE_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPathEnvOverride verifies the environment variable override.
func TestGetConfigPathEnvOverride(t *testing.T) {
	originalEnv := os.Getenv("ROOMSENSE_CONFIG")
	defer os.Setenv("ROOMSENSE_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("ROOMSENSE_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
