package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the validated environment knob set.
type Config struct {
	// Optional variables with defaults
	HeartbeatInterval time.Duration
	DefaultEditor     bool
	DevelopmentMode   bool
	AllowedOrigins    []string
	SnapshotDir       string

	// Tracing
	TracingEnabled         bool
	OTLPEndpoint           string
	OTLPInsecureSkipVerify bool
}

// ValidateEnv reads every knob from the environment. Problems are
// collected so one error names everything that needs fixing.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errors []string

	// Optional: HEARTBEAT_INTERVAL (defaults to 45s)
	rawInterval := getEnvOrDefault("HEARTBEAT_INTERVAL", "45s")
	interval, err := time.ParseDuration(rawInterval)
	if err != nil {
		errors = append(errors, fmt.Sprintf("HEARTBEAT_INTERVAL must be a duration such as '45s' or '2m' (got '%s')", rawInterval))
	} else if interval <= 0 {
		errors = append(errors, fmt.Sprintf("HEARTBEAT_INTERVAL must be positive (got '%s')", rawInterval))
	} else {
		cfg.HeartbeatInterval = interval
	}

	// Optional: ROOM_DEFAULT_EDITOR (new joiners get edit access instead of view)
	cfg.DefaultEditor = os.Getenv("ROOM_DEFAULT_EDITOR") == "true"

	// Optional: DEVELOPMENT_MODE (colorized console logging)
	cfg.DevelopmentMode = os.Getenv("DEVELOPMENT_MODE") == "true"

	// Optional: ALLOWED_ORIGINS (comma separated; empty accepts any origin)
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	} else {
		slog.Warn("ALLOWED_ORIGINS not set, accepting websocket upgrades from any origin")
	}

	// Optional: SNAPSHOT_DIR (empty disables closing-room snapshots)
	cfg.SnapshotDir = os.Getenv("SNAPSHOT_DIR")

	// Conditional: OTEL_EXPORTER_OTLP_ENDPOINT (required if TRACING_ENABLED=true)
	cfg.TracingEnabled = os.Getenv("TRACING_ENABLED") == "true"
	if cfg.TracingEnabled {
		cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if cfg.OTLPEndpoint == "" {
			errors = append(errors, "OTEL_EXPORTER_OTLP_ENDPOINT is required when TRACING_ENABLED=true")
		} else if !IsValidHostPort(cfg.OTLPEndpoint) {
			errors = append(errors, fmt.Sprintf("OTEL_EXPORTER_OTLP_ENDPOINT must be in format 'host:port' (got '%s')", cfg.OTLPEndpoint))
		}
		cfg.OTLPInsecureSkipVerify = os.Getenv("OTEL_INSECURE_SKIP_VERIFY") == "true"
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	logValidatedConfig(cfg)

	return cfg, nil
}

// IsValidHostPort reports whether addr looks like "host:port" with a
// port in the valid range.
func IsValidHostPort(addr string) bool {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok || host == "" {
		return false
	}
	port, err := strconv.Atoi(portStr)
	return err == nil && port >= 1 && port <= 65535
}

// logValidatedConfig prints the effective configuration at startup.
func logValidatedConfig(cfg *Config) {
	slog.Info("✅ Environment configuration validated successfully")
	slog.Info("Configuration",
		"heartbeat_interval", cfg.HeartbeatInterval.String(),
		"default_editor", cfg.DefaultEditor,
		"development_mode", cfg.DevelopmentMode,
		"allowed_origins", strings.Join(cfg.AllowedOrigins, ","),
		"snapshot_dir", cfg.SnapshotDir,
		"tracing_enabled", cfg.TracingEnabled,
		"otlp_endpoint", cfg.OTLPEndpoint,
	)
}

// getEnvOrDefault reads key from the environment, falling back to
// defaultValue when unset.
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
