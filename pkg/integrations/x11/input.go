package x11

import (
	"fmt"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
)

// InputWatcher turns the X server's idle counter into activity pulses.
// The MIT-SCREEN-SAVER extension reports milliseconds since the last
// user input across all devices; a background goroutine samples the
// counter and fires the callback whenever it drops, which means input
// (pointer movement, clicks, scroll, key press) occurred since the
// previous sample.
type InputWatcher struct {
	conn     *xgb.Conn
	root     xproto.Window
	interval time.Duration

	started  bool
	stopOnce sync.Once
	stopc    chan struct{}
	done     chan struct{}
}

// NewInputWatcher opens a dedicated X connection and initializes the
// screensaver extension. It fails when the host has no X server or the
// extension is missing, in which case the caller should fall back to
// always-active mode.
func NewInputWatcher(interval time.Duration) (*InputWatcher, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	if err := screensaver.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("MIT-SCREEN-SAVER extension unavailable: %w", err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	return &InputWatcher{
		conn:     conn,
		root:     root,
		interval: interval,
		stopc:    make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Watch starts the sampling goroutine. onInput is invoked from that
// goroutine, so it must be safe for concurrent use.
func (w *InputWatcher) Watch(onInput func()) {
	w.started = true
	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		last, ok := w.idleMillis()
		for {
			select {
			case <-w.stopc:
				return
			case <-ticker.C:
				ms, sampled := w.idleMillis()
				if !sampled {
					continue
				}
				// The counter resets to ~0 on input. Any value below
				// the previous sample means input arrived in between.
				if !ok || ms < last {
					onInput()
				}
				last, ok = ms, true
			}
		}
	}()
}

// idleMillis queries the server for milliseconds since last input.
func (w *InputWatcher) idleMillis() (uint32, bool) {
	reply, err := screensaver.QueryInfo(w.conn, xproto.Drawable(w.root)).Reply()
	if err != nil {
		return 0, false
	}
	return reply.MsSinceUserInput, true
}

// Close stops the sampling goroutine and releases the X connection.
// Safe to call more than once.
func (w *InputWatcher) Close() error {
	w.stopOnce.Do(func() {
		close(w.stopc)
		if w.started {
			<-w.done
		}
		w.conn.Close()
	})
	return nil
}
