package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.WakaTime.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.WakaTime.APIURL, DefaultAPIURL)
	}
	if cfg.Tracker.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Tracker.PollInterval)
	}
	if cfg.Tracker.HeartbeatFrequency != 60*time.Second {
		t.Errorf("HeartbeatFrequency = %v, want 60s", cfg.Tracker.HeartbeatFrequency)
	}
	if cfg.Tracker.InactivityThreshold != 60*time.Second {
		t.Errorf("InactivityThreshold = %v, want 60s", cfg.Tracker.InactivityThreshold)
	}
	if cfg.Tracker.DryRun {
		t.Error("DryRun = true by default, want false")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"poll interval too small", func(c *Config) { c.Tracker.PollInterval = 0 }},
		{"poll interval too large", func(c *Config) { c.Tracker.PollInterval = time.Hour }},
		{"zero heartbeat frequency", func(c *Config) { c.Tracker.HeartbeatFrequency = 0 }},
		{"negative inactivity threshold", func(c *Config) { c.Tracker.InactivityThreshold = -time.Second }},
		{"empty PID file", func(c *Config) { c.Daemon.PIDFile = "" }},
		{"bad web port", func(c *Config) { c.Web.Port = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadWakaTimeConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wakatime.cfg")

	content := `[settings]
api_key = waka_00000000-0000-4000-8000-000000000000
api_url = https://waka.example.com/api/v1
projects_dir = /srv/boards:/home/user/hw
`
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	cfg.WakaTime.ConfigPath = cfgPath

	if err := LoadWakaTimeConfig(cfg); err != nil {
		t.Fatalf("LoadWakaTimeConfig() = %v, want nil", err)
	}

	if cfg.WakaTime.APIKey != "waka_00000000-0000-4000-8000-000000000000" {
		t.Errorf("APIKey = %q", cfg.WakaTime.APIKey)
	}
	if cfg.WakaTime.APIURL != "https://waka.example.com/api/v1" {
		t.Errorf("APIURL = %q", cfg.WakaTime.APIURL)
	}
	wantRoots := []string{"/srv/boards", "/home/user/hw"}
	if len(cfg.Resolver.ProjectRoots) != len(wantRoots) {
		t.Fatalf("ProjectRoots = %v, want %v", cfg.Resolver.ProjectRoots, wantRoots)
	}
	for i, root := range wantRoots {
		if cfg.Resolver.ProjectRoots[i] != root {
			t.Errorf("ProjectRoots[%d] = %q, want %q", i, cfg.Resolver.ProjectRoots[i], root)
		}
	}
}

func TestLoadWakaTimeConfigDefaultsURL(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wakatime.cfg")

	content := "[settings]\napi_key = secret\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	cfg.WakaTime.ConfigPath = cfgPath

	if err := LoadWakaTimeConfig(cfg); err != nil {
		t.Fatalf("LoadWakaTimeConfig() = %v", err)
	}
	if cfg.WakaTime.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want default %q when api_url absent", cfg.WakaTime.APIURL, DefaultAPIURL)
	}
}

func TestLoadWakaTimeConfigMissingFile(t *testing.T) {
	cfg := Default()
	cfg.WakaTime.ConfigPath = filepath.Join(t.TempDir(), "does-not-exist.cfg")

	if err := LoadWakaTimeConfig(cfg); err == nil {
		t.Error("LoadWakaTimeConfig() = nil for missing file, want error")
	}
}

func TestValidateCredentials(t *testing.T) {
	cfg := Default()

	if err := cfg.ValidateCredentials(); err == nil {
		t.Error("ValidateCredentials() = nil without api_key, want error")
	}

	cfg.Tracker.DryRun = true
	if err := cfg.ValidateCredentials(); err != nil {
		t.Errorf("ValidateCredentials() = %v in dry-run mode, want nil", err)
	}

	cfg.Tracker.DryRun = false
	cfg.WakaTime.APIKey = "secret"
	if err := cfg.ValidateCredentials(); err != nil {
		t.Errorf("ValidateCredentials() = %v with api_key set, want nil", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KICADTIME_POLL_INTERVAL", "10")
	t.Setenv("KICADTIME_HEARTBEAT_FREQUENCY", "120")
	t.Setenv("KICADTIME_INACTIVITY_THRESHOLD", "300")
	t.Setenv("KICADTIME_DB_PATH", "/tmp/test-kicadtime.db")
	t.Setenv("KICADTIME_PID_FILE", "/tmp/test-kicadtime.pid")

	cfg := New()

	if cfg.Tracker.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.Tracker.PollInterval)
	}
	if cfg.Tracker.HeartbeatFrequency != 120*time.Second {
		t.Errorf("HeartbeatFrequency = %v, want 120s", cfg.Tracker.HeartbeatFrequency)
	}
	if cfg.Tracker.InactivityThreshold != 300*time.Second {
		t.Errorf("InactivityThreshold = %v, want 300s", cfg.Tracker.InactivityThreshold)
	}
	if cfg.Database.Path != "/tmp/test-kicadtime.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Daemon.PIDFile != "/tmp/test-kicadtime.pid" {
		t.Errorf("Daemon.PIDFile = %q", cfg.Daemon.PIDFile)
	}
}

func TestLoadFromEnvRejectsOutOfRangePollInterval(t *testing.T) {
	t.Setenv("KICADTIME_POLL_INTERVAL", "3600")

	cfg := New()
	if cfg.Tracker.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want default 5s for out-of-range env value", cfg.Tracker.PollInterval)
	}
}

func TestStringRedactsAPIKey(t *testing.T) {
	cfg := Default()
	cfg.WakaTime.APIKey = "waka_super_secret_key_value"

	s := cfg.String()
	if strings.Contains(s, "waka_super_secret_key_value") {
		t.Error("String() leaks the full API key")
	}
}
