package heartbeat

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/kicadtime/kicadtime/internal/logging"
)

// Sink delivers heartbeat events to the time-tracking backend.
// Delivery is best-effort: a failed send is reported but never retried.
type Sink interface {
	Send(entity, project string, t time.Time) error
}

// FindCLI locates the wakatime-cli executable under ~/.wakatime/. The
// binary name carries a platform suffix, so any wakatime-cli* match is
// accepted.
func FindCLI() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	pattern := filepath.Join(homeDir, ".wakatime", "wakatime-cli*")
	candidates, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to glob for wakatime-cli: %w", err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("wakatime-cli not found in ~/.wakatime/")
	}

	return candidates[0], nil
}

// CLISink sends heartbeats by spawning the external wakatime-cli
// process. The spawn is fire-and-forget: the poll loop never waits for
// the CLI to finish, only for the process to start.
type CLISink struct {
	cliPath string
	apiKey  string
	apiURL  string
	plugin  string
	dryRun  bool
}

func NewCLISink(cliPath, apiKey, apiURL, plugin string, dryRun bool) *CLISink {
	return &CLISink{
		cliPath: cliPath,
		apiKey:  apiKey,
		apiURL:  apiURL,
		plugin:  plugin,
		dryRun:  dryRun,
	}
}

// Send dispatches one heartbeat for the given entity. In dry-run mode
// the command is logged instead of executed.
func (s *CLISink) Send(entity, project string, t time.Time) error {
	args := []string{
		"--entity", entity,
		"--plugin", s.plugin,
		"--language", "KiCad",
		"--project", project,
		"--time", strconv.FormatFloat(float64(t.UnixMilli())/1000.0, 'f', 3, 64),
		"--key", s.apiKey,
	}
	if s.apiURL != "" {
		args = append(args, "--api-url", s.apiURL)
	}

	if s.dryRun {
		logging.Infof("DRY RUN: would send heartbeat for %s", entity)
		logging.Debugf("DRY RUN: command: %s %v", s.cliPath, args)
		return nil
	}

	cmd := exec.Command(s.cliPath, args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to spawn wakatime-cli")
	}

	// Reap the child in the background so a slow or failed CLI run
	// never blocks the poll loop or leaks a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.Warnf("wakatime-cli exited with error: %v", err)
		}
	}()

	return nil
}
