package scheduler

import (
	"time"

	"github.com/kicadtime/kicadtime/internal/classifier"
	"github.com/kicadtime/kicadtime/internal/logging"
)

// Scheduler decides, for each poll tick, whether a heartbeat should be
// emitted. A file switch always heartbeats, marking the context switch;
// periodic "still working" heartbeats are rate limited and suppressed
// while the user is idle.
//
// The scheduler is touched only by the poll-loop goroutine and needs no
// locking.
type Scheduler struct {
	frequency  time.Duration
	lastSentAt time.Time
	lastFile   *classifier.FileIdentity
}

func New(frequency time.Duration) *Scheduler {
	return &Scheduler{frequency: frequency}
}

// ShouldSend reports whether a heartbeat is due for the current file.
func (s *Scheduler) ShouldSend(current *classifier.FileIdentity, now time.Time, userActive bool) bool {
	if current == nil {
		return false
	}

	if !current.Equal(s.lastFile) {
		logging.Debugf("file changed to %s, heartbeat due", current.Path)
		return true
	}

	if now.Sub(s.lastSentAt) > s.frequency {
		if userActive {
			return true
		}
		logging.Debugf("heartbeat interval elapsed but user idle, suppressing")
	}

	return false
}

// RecordSent updates scheduler state after a dispatch attempt. Delivery
// is at-most-effort: the caller invokes this whether or not the send
// succeeded, so a transient failure neither retries nor blocks the next
// cycle.
func (s *Scheduler) RecordSent(current *classifier.FileIdentity, now time.Time) {
	s.lastSentAt = now
	s.lastFile = current
}

// LastFile returns the identity recorded by the most recent dispatch.
func (s *Scheduler) LastFile() *classifier.FileIdentity {
	return s.lastFile
}
