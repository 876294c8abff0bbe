package window

// Info describes the currently focused window as reported by the
// display server.
type Info struct {
	Title         string
	ProcessName   string
	AppName       string
	PID           int
	DisplayServer string // "x11" or "wayland"
}

// Inspector is the interface that all foreground-window inspection
// implementations must satisfy.
type Inspector interface {
	// GetForegroundWindow returns information about the currently focused window
	GetForegroundWindow() (*Info, error)

	// IsAvailable checks if this inspector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the inspector
	Close() error
}
