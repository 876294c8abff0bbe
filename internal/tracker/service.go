package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/kicadtime/kicadtime/internal/activity"
	"github.com/kicadtime/kicadtime/internal/classifier"
	"github.com/kicadtime/kicadtime/internal/config"
	"github.com/kicadtime/kicadtime/internal/database"
	"github.com/kicadtime/kicadtime/internal/heartbeat"
	"github.com/kicadtime/kicadtime/internal/logging"
	"github.com/kicadtime/kicadtime/internal/models"
	"github.com/kicadtime/kicadtime/internal/scheduler"
	"github.com/kicadtime/kicadtime/pkg/window"
)

// Service drives the monitor: every poll interval it samples the
// foreground window, classifies it, and lets the scheduler decide
// whether a heartbeat goes out. All per-tick errors are logged and
// swallowed; nothing propagates from one tick into the next.
type Service struct {
	config     *config.Config
	repo       *database.Repository
	inspector  window.Inspector
	classifier *classifier.Classifier
	sched      *scheduler.Scheduler
	activity   *activity.Tracker
	sink       heartbeat.Sink
	sessionID  string
	stopChan   chan struct{}
	running    bool
}

func NewService(
	cfg *config.Config,
	repo *database.Repository,
	inspector window.Inspector,
	cls *classifier.Classifier,
	sched *scheduler.Scheduler,
	act *activity.Tracker,
	sink heartbeat.Sink,
	sessionID string,
) *Service {
	return &Service{
		config:     cfg,
		repo:       repo,
		inspector:  inspector,
		classifier: cls,
		sched:      sched,
		activity:   act,
		sink:       sink,
		sessionID:  sessionID,
		stopChan:   make(chan struct{}),
	}
}

func (s *Service) Start(ctx context.Context) error {
	if s.running {
		return fmt.Errorf("tracker is already running")
	}

	s.running = true
	logging.Infof("starting monitor with %v poll interval", s.config.Tracker.PollInterval)

	ticker := time.NewTicker(s.config.Tracker.PollInterval)
	defer ticker.Stop()

	s.tickOnce()

	for {
		select {
		case <-ctx.Done():
			logging.Infof("monitor stopped by context")
			s.running = false
			return ctx.Err()

		case <-s.stopChan:
			logging.Infof("monitor stopped")
			s.running = false
			return nil

		case <-ticker.C:
			s.tickOnce()
		}
	}
}

func (s *Service) Stop() {
	if s.running {
		close(s.stopChan)
	}
}

func (s *Service) IsRunning() bool {
	return s.running
}

// tickOnce runs one observation: classify the foreground window, then
// dispatch a heartbeat if the scheduler says one is due.
func (s *Service) tickOnce() {
	info, err := s.inspector.GetForegroundWindow()
	if err != nil {
		// Treated as "no active CAD file" for this tick.
		logging.Debugf("could not inspect foreground window: %v", err)
		return
	}

	current := s.classifier.Classify(info.Title, info.ProcessName)
	now := time.Now()

	if !s.sched.ShouldSend(current, now, s.activity.IsActive()) {
		return
	}

	sendErr := s.sink.Send(current.Path, current.ProjectName, now)
	if sendErr != nil {
		logging.Errorf("heartbeat dispatch failed: %v", sendErr)
		s.storeError(sendErr)
	} else {
		logging.Infof("heartbeat sent for %s", current.Path)
	}

	// State advances regardless of dispatch outcome: delivery is
	// at-most-effort and a transient failure must not stall the
	// rate limiter.
	s.sched.RecordSent(current, now)

	s.journal(current, now, sendErr == nil)
}

// journal records the dispatch attempt locally for reporting.
func (s *Service) journal(fi *classifier.FileIdentity, at time.Time, sent bool) {
	if s.repo == nil {
		return
	}

	hb := &models.Heartbeat{
		SessionID: s.sessionID,
		Timestamp: at,
		Entity:    fi.Path,
		Project:   fi.ProjectName,
		Sent:      sent,
		DryRun:    s.config.Tracker.DryRun,
	}

	if err := s.repo.Create(hb); err != nil {
		logging.Warnf("failed to journal heartbeat: %v", err)
	}
}

func (s *Service) storeError(err error) {
	if s.repo == nil {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		logging.Warnf("failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}

// CurrentWindow exposes the inspector for the status command.
func (s *Service) CurrentWindow() (*window.Info, error) {
	return s.inspector.GetForegroundWindow()
}
