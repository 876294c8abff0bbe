package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration
type Config struct {
	// WakaTime credentials and endpoint
	WakaTime WakaTimeConfig

	// Tracker behavior
	Tracker TrackerConfig

	// Project directory resolution
	Resolver ResolverConfig

	// Heartbeat journal database
	Database DatabaseConfig

	// Daemon process management
	Daemon DaemonConfig

	// Logging
	Log LogConfig

	// Status web API (serve command)
	Web WebConfig
}

// WakaTimeConfig holds the backend credentials loaded from ~/.wakatime.cfg
type WakaTimeConfig struct {
	APIKey     string
	APIURL     string
	ConfigPath string // Path to the wakatime cfg file
}

// TrackerConfig holds the polling and heartbeat policy
type TrackerConfig struct {
	PollInterval        time.Duration // How often to sample the foreground window
	MinPollInterval     time.Duration
	MaxPollInterval     time.Duration
	HeartbeatFrequency  time.Duration // Minimum gap between same-file heartbeats
	InactivityThreshold time.Duration // Input silence before the user counts as idle
	DryRun              bool
}

// ResolverConfig holds project directory search roots
type ResolverConfig struct {
	ProjectRoots []string
}

// DatabaseConfig holds the journal database location
type DatabaseConfig struct {
	Path string // Empty means use default ~/.config/kicadtime/kicadtime.db
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string
	FilePath string // Empty disables file logging
	Quiet    bool
}

// WebConfig holds the status API server configuration
type WebConfig struct {
	Host string
	Port int
}

const DefaultAPIURL = "https://api.wakatime.com/api/v1"

// Default returns a Config with sensible default values
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		WakaTime: WakaTimeConfig{
			APIURL:     DefaultAPIURL,
			ConfigPath: filepath.Join(homeDir, ".wakatime.cfg"),
		},
		Tracker: TrackerConfig{
			PollInterval:        5 * time.Second,
			MinPollInterval:     1 * time.Second,
			MaxPollInterval:     60 * time.Second,
			HeartbeatFrequency:  60 * time.Second,
			InactivityThreshold: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/kicadtime-%d.pid", os.Getuid()),
		},
		Log: LogConfig{
			Level:    "info",
			FilePath: filepath.Join(homeDir, ".wakatime", "kicad-wakatime.log"),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 10000 + os.Getuid(),
		},
	}
}

// Validate checks if the configuration is valid. The API key is checked
// separately at startup so dry-run mode can operate without one.
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.HeartbeatFrequency <= 0 {
		return fmt.Errorf("heartbeat frequency must be positive")
	}

	if c.Tracker.InactivityThreshold < 0 {
		return fmt.Errorf("inactivity threshold cannot be negative")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	return nil
}

// ValidateCredentials ensures the API key is present for real sends.
func (c *Config) ValidateCredentials() error {
	if c.Tracker.DryRun {
		return nil
	}
	if c.WakaTime.APIKey == "" {
		return fmt.Errorf("missing api_key in %s", c.WakaTime.ConfigPath)
	}
	return nil
}

// GetHeartbeatFrequencySeconds returns the heartbeat frequency in seconds
func (c *Config) GetHeartbeatFrequencySeconds() int64 {
	return int64(c.Tracker.HeartbeatFrequency.Seconds())
}

// GetInactivityThresholdSeconds returns the inactivity threshold in seconds
func (c *Config) GetInactivityThresholdSeconds() int64 {
	return int64(c.Tracker.InactivityThreshold.Seconds())
}

// String returns a string representation of the config. The API key is
// redacted.
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  WakaTime:
    Config File: %s
    API URL: %s
    API Key: %s
  Tracker:
    Poll Interval: %v
    Heartbeat Frequency: %v
    Inactivity Threshold: %v
    Dry Run: %v
  Resolver:
    Project Roots: %v
  Database:
    Path: %s
  Daemon:
    PID File: %s
  Log:
    Level: %s
    File: %s`,
		c.WakaTime.ConfigPath,
		c.WakaTime.APIURL,
		redactKey(c.WakaTime.APIKey),
		c.Tracker.PollInterval,
		c.Tracker.HeartbeatFrequency,
		c.Tracker.InactivityThreshold,
		c.Tracker.DryRun,
		c.Resolver.ProjectRoots,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Log.Level,
		c.Log.FilePath,
	)
}

func redactKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
