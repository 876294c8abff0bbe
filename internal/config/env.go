package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	if cfgPath := os.Getenv("KICADTIME_WAKATIME_CFG"); cfgPath != "" {
		cfg.WakaTime.ConfigPath = cfgPath
	}

	if dbPath := os.Getenv("KICADTIME_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if pollInterval := os.Getenv("KICADTIME_POLL_INTERVAL"); pollInterval != "" {
		if seconds, err := strconv.Atoi(pollInterval); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if frequency := os.Getenv("KICADTIME_HEARTBEAT_FREQUENCY"); frequency != "" {
		if seconds, err := strconv.Atoi(frequency); err == nil && seconds > 0 {
			cfg.Tracker.HeartbeatFrequency = time.Duration(seconds) * time.Second
		}
	}

	if threshold := os.Getenv("KICADTIME_INACTIVITY_THRESHOLD"); threshold != "" {
		if seconds, err := strconv.Atoi(threshold); err == nil && seconds > 0 {
			cfg.Tracker.InactivityThreshold = time.Duration(seconds) * time.Second
		}
	}

	if pidFile := os.Getenv("KICADTIME_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if webHost := os.Getenv("KICADTIME_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("KICADTIME_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
