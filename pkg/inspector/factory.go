package inspector

import (
	"fmt"
	"os"

	"github.com/kicadtime/kicadtime/pkg/integrations/wayland"
	"github.com/kicadtime/kicadtime/pkg/integrations/x11"
	"github.com/kicadtime/kicadtime/pkg/window"
)

// New picks the foreground-window inspector for the current session.
// Wayland sessions try the compositor-specific inspector first and fall
// back to X11 (XWayland); pure X11 sessions go straight to the protocol
// connection.
func New() (window.Inspector, error) {
	if isWaylandSession() {
		wl := wayland.NewInspector()
		if wl.IsAvailable() {
			return wl, nil
		}
	}

	if os.Getenv("DISPLAY") != "" {
		insp, err := x11.NewInspector()
		if err == nil {
			return insp, nil
		}
	}

	return nil, fmt.Errorf("no usable window inspector for this session (need X11 or a supported Wayland compositor)")
}

func isWaylandSession() bool {
	return os.Getenv("XDG_SESSION_TYPE") == "wayland" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// DetectDisplayServer names the session type for status output.
func DetectDisplayServer() string {
	if isWaylandSession() {
		return "wayland"
	}
	if os.Getenv("XDG_SESSION_TYPE") == "x11" || os.Getenv("DISPLAY") != "" {
		return "x11"
	}
	return "unknown"
}
