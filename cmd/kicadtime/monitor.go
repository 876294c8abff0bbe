package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kicadtime/kicadtime/internal/activity"
	"github.com/kicadtime/kicadtime/internal/classifier"
	"github.com/kicadtime/kicadtime/internal/config"
	"github.com/kicadtime/kicadtime/internal/daemon"
	"github.com/kicadtime/kicadtime/internal/database"
	"github.com/kicadtime/kicadtime/internal/heartbeat"
	"github.com/kicadtime/kicadtime/internal/logging"
	"github.com/kicadtime/kicadtime/internal/resolver"
	"github.com/kicadtime/kicadtime/internal/scheduler"
	"github.com/kicadtime/kicadtime/internal/tracker"
	"github.com/kicadtime/kicadtime/internal/web"
	"github.com/kicadtime/kicadtime/pkg/inspector"
	"github.com/kicadtime/kicadtime/pkg/integrations/x11"
)

const daemonChildEnv = "KICADTIME_DAEMON_CHILD"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runMonitor(cfg, nil, false)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the monitor as a background daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startDaemon(false)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitor daemon with the status web API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startDaemon(true)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the monitor daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		dm := daemon.New(cfg.Daemon.PIDFile)

		running, pid, err := dm.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}
		if !running {
			fmt.Println("Daemon is not running")
			return nil
		}

		fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
		if err := dm.Stop(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}

		fmt.Println("Daemon stopped successfully")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and the current foreground window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		dm := daemon.New(cfg.Daemon.PIDFile)

		running, pid, err := dm.IsRunning()
		if err != nil {
			return fmt.Errorf("failed to check daemon status: %w", err)
		}

		if !running {
			fmt.Println("Status: Not running")
		} else {
			fmt.Printf("Status: Running (PID: %d)\n", pid)
			fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
			fmt.Printf("Heartbeat Frequency: %v\n", cfg.Tracker.HeartbeatFrequency)
		}

		insp, err := inspector.New()
		if err != nil {
			fmt.Printf("\nCould not detect current window: %v\n", err)
			return nil
		}
		defer insp.Close()

		info, err := insp.GetForegroundWindow()
		if err != nil || info == nil {
			fmt.Println("\nNo foreground window detected")
			return nil
		}

		fmt.Printf("\nCurrent Window:\n")
		fmt.Printf("  Title:   %s\n", info.Title)
		fmt.Printf("  App:     %s\n", info.AppName)
		fmt.Printf("  Process: %s\n", info.ProcessName)
		fmt.Printf("  Display: %s\n", info.DisplayServer)

		cls := classifier.New(resolver.New(cfg.Resolver.ProjectRoots))
		if id := cls.Classify(info.Title, info.ProcessName); id != nil {
			fmt.Printf("\nActive KiCad File:\n")
			fmt.Printf("  Path:    %s\n", id.Path)
			fmt.Printf("  Project: %s\n", id.ProjectName)
		} else {
			fmt.Println("\nNo active KiCad file")
		}

		return nil
	},
}

func startDaemon(withWeb bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	if os.Getenv(daemonChildEnv) != "1" {
		return daemonize(withWeb, cfg)
	}

	return runMonitor(cfg, dm, withWeb)
}

// runMonitor wires the components together and runs the poll loop until
// an interrupt arrives.
func runMonitor(cfg *config.Config, dm *daemon.Daemon, withWeb bool) error {
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer logging.Close()

	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}

	// The sink executable must exist before the poll loop starts, even
	// in dry-run mode, so a broken install fails loudly.
	cliPath, err := heartbeat.FindCLI()
	if err != nil {
		if !cfg.Tracker.DryRun {
			return err
		}
		logging.Warnf("%v (continuing in dry-run mode)", err)
	}
	sink := heartbeat.NewCLISink(cliPath, cfg.WakaTime.APIKey, cfg.WakaTime.APIURL,
		fmt.Sprintf("%s/%s", pluginName, version), cfg.Tracker.DryRun)

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	insp, err := inspector.New()
	if err != nil {
		return fmt.Errorf("failed to initialize window inspector: %w", err)
	}
	defer insp.Close()

	logging.Infof("window inspector initialized: %s", insp.GetDisplayServer())

	act := newActivityTracker(cfg)
	defer act.Stop()

	if dm != nil {
		if err := dm.WritePID(); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer dm.RemovePID()
	}

	sessionID := uuid.New().String()
	repo := database.NewRepository(db)
	cls := classifier.New(resolver.New(cfg.Resolver.ProjectRoots))
	sched := scheduler.New(cfg.Tracker.HeartbeatFrequency)
	svc := tracker.NewService(cfg, repo, insp, cls, sched, act, sink, sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logging.Infof("received shutdown signal")
		cancel()
		svc.Stop()
	}()

	var webServer *web.Server
	if withWeb {
		webServer = web.NewServer(cfg, repo, sessionID)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				logging.Errorf("status API error: %v", err)
			}
		}()
	}

	logging.Infof("starting kicadtime monitor (session %s)...", sessionID)
	logging.Infof("%s", cfg.String())

	err = svc.Start(ctx)

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if shutdownErr := webServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logging.Errorf("error shutting down status API: %v", shutdownErr)
		}
	}

	if err != nil && err != context.Canceled {
		return fmt.Errorf("monitor error: %w", err)
	}

	logging.Infof("monitor stopped successfully")
	return nil
}

// newActivityTracker builds the input-driven tracker, falling back to
// always-active mode when no input-listening capability exists on this
// host.
func newActivityTracker(cfg *config.Config) *activity.Tracker {
	watcher, err := x11.NewInputWatcher(time.Second)
	if err != nil {
		logging.Warnf("input listening unavailable (%v), assuming always active", err)
		return activity.NewAlwaysActive()
	}

	act := activity.New(cfg.Tracker.InactivityThreshold)
	act.AttachSource(watcher)
	watcher.Watch(act.RecordActivity)
	logging.Infof("input activity watcher started (threshold %v)", cfg.Tracker.InactivityThreshold)
	return act
}

// daemonize re-executes the binary as a detached session leader.
func daemonize(withWeb bool, cfg *config.Config) error {
	env := os.Environ()
	env = append(env, daemonChildEnv+"=1")

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	}

	process, err := os.StartProcess(os.Args[0], os.Args, procAttr)
	if err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Printf("Status API available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	if cfg.Log.FilePath != "" {
		fmt.Printf("Logs: %s\n", cfg.Log.FilePath)
	}
	return nil
}
