package activity

import (
	"io"
	"sync"
	"time"

	"github.com/kicadtime/kicadtime/internal/logging"
)

// Tracker derives a debounced active/inactive signal from raw input
// pulses. Activity is detected eagerly (RecordActivity flips to active
// immediately); inactivity is detected lazily, only when a query
// observes that the threshold has elapsed.
//
// RecordActivity may be called from any number of goroutines
// concurrently with poll-loop reads. A single mutex guards the
// timestamp/flag pair so no torn state is observable.
type Tracker struct {
	mu           sync.Mutex
	lastActivity time.Time
	active       bool

	threshold    time.Duration
	alwaysActive bool
	source       io.Closer
	stopOnce     sync.Once

	now func() time.Time
}

// New creates a tracker in normal mode. The initial state is active.
func New(threshold time.Duration) *Tracker {
	t := &Tracker{
		threshold: threshold,
		active:    true,
		now:       time.Now,
	}
	t.lastActivity = t.now()
	return t
}

// NewAlwaysActive creates a tracker for hosts where no input-listening
// capability is available: IsActive always reports true and
// SecondsSinceActivity always reports 0.
func NewAlwaysActive() *Tracker {
	return &Tracker{
		alwaysActive: true,
		active:       true,
		now:          time.Now,
	}
}

// AttachSource hands the tracker ownership of the input source feeding
// it, so Stop can release the listener exactly once.
func (t *Tracker) AttachSource(source io.Closer) {
	t.source = source
}

// AlwaysActive reports whether the tracker runs in degraded
// always-active mode.
func (t *Tracker) AlwaysActive() bool {
	return t.alwaysActive
}

// RecordActivity notes that user input just occurred. Safe to call from
// input-event goroutines at any time.
func (t *Tracker) RecordActivity() {
	if t.alwaysActive {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastActivity = t.now()
	if !t.active {
		logging.Debugf("user active again")
	}
	t.active = true
}

// IsActive reports whether input occurred within the inactivity
// threshold. The active→inactive transition happens here, and is logged
// only once per idle period.
func (t *Tracker) IsActive() bool {
	if t.alwaysActive {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.now().Sub(t.lastActivity)
	if t.active && elapsed > t.threshold {
		t.active = false
		logging.Infof("user inactive for %.0fs, suppressing periodic heartbeats", elapsed.Seconds())
	}
	return t.active
}

// SecondsSinceActivity returns the time since the last input pulse.
func (t *Tracker) SecondsSinceActivity() float64 {
	if t.alwaysActive {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.now().Sub(t.lastActivity).Seconds()
}

// Stop releases the attached input source. Safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		if t.source != nil {
			if err := t.source.Close(); err != nil {
				logging.Warnf("error closing input source: %v", err)
			}
		}
	})
}
