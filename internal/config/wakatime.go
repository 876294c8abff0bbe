package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// LoadWakaTimeConfig reads API credentials and optional settings from
// the wakatime cfg file (INI format, "settings" section). A missing
// api_key is not an error here: dry-run mode runs without one, and the
// startup path decides whether its absence is fatal.
func LoadWakaTimeConfig(cfg *Config) error {
	file, err := ini.Load(cfg.WakaTime.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load wakatime configuration from %s: %w", cfg.WakaTime.ConfigPath, err)
	}

	settings := file.Section("settings")

	cfg.WakaTime.APIKey = settings.Key("api_key").String()

	if apiURL := settings.Key("api_url").String(); apiURL != "" {
		cfg.WakaTime.APIURL = apiURL
	}

	if dirs := settings.Key("projects_dir").String(); dirs != "" {
		for _, dir := range strings.Split(dirs, string(filepath.ListSeparator)) {
			dir = strings.TrimSpace(dir)
			if dir != "" {
				cfg.Resolver.ProjectRoots = append(cfg.Resolver.ProjectRoots, dir)
			}
		}
	}

	return nil
}
