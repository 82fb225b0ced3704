// Package config reads the start-up configuration of the MCPHost server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	BindPortEnvVar  = "PORT"
	BindPortDefault = "8080"

	DBUrlEnvVar            = "DATABASE_URL"
	TelemetryEnabledEnvVar = "OTEL_ENABLED"
	LogLevelEnvVar         = "LOG_LEVEL"
	SeedFileEnvVar         = "SEED_FILE"
)

const (
	// HeartbeatTimeoutSecEnvVar configures how long a server may stay silent before it is considered dead.
	HeartbeatTimeoutSecEnvVar  = "HEARTBEAT_TIMEOUT_SEC"
	HeartbeatTimeoutSecDefault = 300

	// ReconcileIntervalSecEnvVar configures the pause between two liveness reconciliation passes.
	ReconcileIntervalSecEnvVar  = "RECONCILE_INTERVAL_SEC"
	ReconcileIntervalSecDefault = 60

	// ReconcileErrorBackoffSecEnvVar configures the pause after a failed reconciliation pass.
	ReconcileErrorBackoffSecEnvVar  = "RECONCILE_ERROR_BACKOFF_SEC"
	ReconcileErrorBackoffSecDefault = 10
)

// Config holds the settings the server is started with.
type Config struct {
	Port string

	HeartbeatTimeout  time.Duration
	ReconcileInterval time.Duration
	ErrorBackoff      time.Duration

	DatabaseURL      string
	TelemetryEnabled bool
	LogLevel         zapcore.Level

	// SeedFile is an optional YAML file of servers and tools registered at start-up.
	SeedFile string
}

// FromEnv builds a Config from environment variables, using defaults for unset ones.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:        os.Getenv(BindPortEnvVar),
		DatabaseURL: os.Getenv(DBUrlEnvVar),
		SeedFile:    os.Getenv(SeedFileEnvVar),
	}
	if c.Port == "" {
		c.Port = BindPortDefault
	}

	var err error
	if c.HeartbeatTimeout, err = getSeconds(HeartbeatTimeoutSecEnvVar, HeartbeatTimeoutSecDefault); err != nil {
		return nil, err
	}
	if c.ReconcileInterval, err = getSeconds(ReconcileIntervalSecEnvVar, ReconcileIntervalSecDefault); err != nil {
		return nil, err
	}
	if c.ErrorBackoff, err = getSeconds(ReconcileErrorBackoffSecEnvVar, ReconcileErrorBackoffSecDefault); err != nil {
		return nil, err
	}
	if c.TelemetryEnabled, err = getBool(TelemetryEnabledEnvVar); err != nil {
		return nil, err
	}
	if c.LogLevel, err = getLogLevel(); err != nil {
		return nil, err
	}
	return c, nil
}

// getSeconds reads a positive number of seconds from the environment.
func getSeconds(envVar string, def int) (time.Duration, error) {
	v := os.Getenv(envVar)
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid value for %s: %q (must be a positive integer)", envVar, v)
	}
	return time.Duration(n) * time.Second, nil
}

func getBool(envVar string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(envVar)))
	switch v {
	case "":
		return false, nil
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value for %s: %q (acceptable values: true, false, 1, 0)", envVar, v)
	}
}

func getLogLevel() (zapcore.Level, error) {
	v := os.Getenv(LogLevelEnvVar)
	if v == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(v))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid value for %s: %q (acceptable values: debug, info, warn, error)", LogLevelEnvVar, v)
	}
	return level, nil
}
