package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kicadtime/kicadtime/internal/config"
	"github.com/kicadtime/kicadtime/internal/logging"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const pluginName = "kicad-wakatime"

var (
	flagConfig              string
	flagDryRun              bool
	flagInactivityThreshold int
	flagLogLevel            string
	flagNoFileLog           bool
	flagQuiet               bool
)

var rootCmd = &cobra.Command{
	Use:   "kicadtime",
	Short: "WakaTime heartbeat monitor for KiCad",
	Long: `kicadtime watches the foreground window for KiCad editors and reports
your design activity to WakaTime as rate-limited heartbeats.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to the wakatime cfg file (default ~/.wakatime.cfg)")
	pf.BoolVar(&flagDryRun, "dry-run", false, "log heartbeats instead of sending them")
	pf.IntVar(&flagInactivityThreshold, "inactivity-threshold", 0, "seconds of input silence before the user counts as idle")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&flagNoFileLog, "no-file-log", false, "disable logging to file (console only)")
	pf.BoolVar(&flagQuiet, "quiet", false, "suppress console output except for errors")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: defaults, environment,
// the wakatime cfg file, then command-line flags, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.New()

	if flagConfig != "" {
		cfg.WakaTime.ConfigPath = flagConfig
	}
	if flagDryRun {
		cfg.Tracker.DryRun = true
	}

	if err := config.LoadWakaTimeConfig(cfg); err != nil {
		// A missing cfg file is tolerable in dry-run mode; heartbeats
		// are not actually sent, so no credentials are needed.
		if !cfg.Tracker.DryRun {
			return nil, err
		}
		logging.Warnf("%v (continuing in dry-run mode)", err)
	}

	if flagInactivityThreshold > 0 {
		cfg.Tracker.InactivityThreshold = time.Duration(flagInactivityThreshold) * time.Second
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagNoFileLog {
		cfg.Log.FilePath = ""
	}
	if flagQuiet {
		cfg.Log.Quiet = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupLogging configures the package logger from the effective config.
func setupLogging(cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	return logging.Setup(level, cfg.Log.FilePath, cfg.Log.Quiet)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kicadtime version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
