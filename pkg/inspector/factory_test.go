package inspector

import "testing"

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name           string
		sessionType    string
		waylandDisplay string
		display        string
		want           string
	}{
		{"wayland session type", "wayland", "", "", "wayland"},
		{"wayland display socket", "", "wayland-0", "", "wayland"},
		{"wayland wins over X display", "wayland", "", ":0", "wayland"},
		{"x11 session type", "x11", "", "", "x11"},
		{"bare X display", "", "", ":0", "x11"},
		{"headless", "", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			t.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			t.Setenv("DISPLAY", tt.display)

			if got := DetectDisplayServer(); got != tt.want {
				t.Errorf("DetectDisplayServer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsWaylandSession(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	if isWaylandSession() {
		t.Error("isWaylandSession() = true with no wayland environment")
	}

	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	if !isWaylandSession() {
		t.Error("isWaylandSession() = false with WAYLAND_DISPLAY set")
	}
}

func TestNewHeadlessFails(t *testing.T) {
	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	if _, err := New(); err == nil {
		t.Error("New() = nil error in a headless environment, want error")
	}
}
