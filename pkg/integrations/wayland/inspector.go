package wayland

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/kicadtime/kicadtime/pkg/window"
)

// Inspector implements window.Inspector on Wayland. Compositors expose
// no common focused-window protocol, so each is queried through its own
// tooling. Input listening is not possible here: callers selecting this
// inspector must run activity tracking in always-active mode.
type Inspector struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	hasGdbus   bool
}

// NewInspector probes for the running compositor and its query tool.
func NewInspector() *Inspector {
	i := &Inspector{}
	i.hasSwaymsg = commandExists("swaymsg")
	i.hasHyprctl = commandExists("hyprctl")
	i.hasGdbus = commandExists("gdbus")
	i.detectCompositor()
	return i
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

func (i *Inspector) detectCompositor() {
	compositors := map[string]string{
		"sway":         "sway",
		"Hyprland":     "hyprland",
		"gnome-shell":  "gnome",
		"kwin_wayland": "kde",
	}

	for proc, name := range compositors {
		cmd := exec.Command("pgrep", "-x", proc)
		if err := cmd.Run(); err == nil {
			i.compositor = name
			return
		}
	}

	i.compositor = "unknown"
}

// IsAvailable checks if Wayland inspection is available
func (i *Inspector) IsAvailable() bool {
	switch i.compositor {
	case "sway":
		return i.hasSwaymsg
	case "hyprland":
		return i.hasHyprctl
	case "gnome":
		return i.hasGdbus
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (i *Inspector) GetDisplayServer() string {
	return "wayland"
}

// GetForegroundWindow returns information about the currently focused window
func (i *Inspector) GetForegroundWindow() (*window.Info, error) {
	switch i.compositor {
	case "sway":
		return i.focusedWindowSway()
	case "hyprland":
		return i.focusedWindowHyprland()
	case "gnome":
		return i.focusedWindowGnome()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", i.compositor)
	}
}

// swayNode is the subset of the sway tree we care about.
type swayNode struct {
	Focused bool       `json:"focused"`
	Name    string     `json:"name"`
	AppID   string     `json:"app_id"`
	PID     int        `json:"pid"`
	WinProp *swayXProp `json:"window_properties"`
	Nodes   []swayNode `json:"nodes"`
	Floats  []swayNode `json:"floating_nodes"`
}

type swayXProp struct {
	Class string `json:"class"`
}

func (i *Inspector) focusedWindowSway() (*window.Info, error) {
	output, err := exec.Command("swaymsg", "-t", "get_tree").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
	}

	var root swayNode
	if err := json.Unmarshal(output, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil {
		return nil, fmt.Errorf("no focused window in sway tree")
	}

	appName := node.AppID
	if appName == "" && node.WinProp != nil {
		appName = node.WinProp.Class // XWayland windows carry WM_CLASS instead
	}

	return &window.Info{
		Title:         node.Name,
		AppName:       appName,
		ProcessName:   processNameForPID(node.PID),
		PID:           node.PID,
		DisplayServer: "wayland",
	}, nil
}

func findFocused(node *swayNode) *swayNode {
	if node.Focused {
		return node
	}
	for idx := range node.Nodes {
		if found := findFocused(&node.Nodes[idx]); found != nil {
			return found
		}
	}
	for idx := range node.Floats {
		if found := findFocused(&node.Floats[idx]); found != nil {
			return found
		}
	}
	return nil
}

type hyprlandWindow struct {
	Title string `json:"title"`
	Class string `json:"class"`
	PID   int    `json:"pid"`
}

func (i *Inspector) focusedWindowHyprland() (*window.Info, error) {
	output, err := exec.Command("hyprctl", "activewindow", "-j").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
	}

	var win hyprlandWindow
	if err := json.Unmarshal(output, &win); err != nil {
		return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}

	return &window.Info{
		Title:         win.Title,
		AppName:       win.Class,
		ProcessName:   processNameForPID(win.PID),
		PID:           win.PID,
		DisplayServer: "wayland",
	}, nil
}

// focusedWindowGnome asks GNOME Shell over D-Bus. Shell.Eval is blocked
// on stock GNOME 41+; when that happens only an error comes back and
// the tick proceeds without a window.
func (i *Inspector) focusedWindowGnome() (*window.Info, error) {
	script := `
	try {
		let win = global.get_window_actors().find(w => w.meta_window && w.meta_window.has_focus());
		if (win && win.meta_window) {
			let wm_class = win.meta_window.get_wm_class() || '';
			let title = win.meta_window.get_title() || '';
			wm_class + '|||' + title;
		} else {
			'';
		}
	} catch(e) {
		'';
	}
	`

	output, err := exec.Command("gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval",
		script).Output()
	if err != nil {
		return nil, fmt.Errorf("gdbus Shell.Eval failed: %w", err)
	}

	result := strings.TrimSpace(string(output))
	if !strings.HasPrefix(result, "(true,") {
		return nil, fmt.Errorf("GNOME Shell.Eval blocked or returned no window")
	}

	result = strings.TrimPrefix(result, "(true, '")
	result = strings.TrimSuffix(result, "')")
	result = strings.Trim(result, "'\"")

	parts := strings.SplitN(result, "|||", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("no focused window reported by GNOME Shell")
	}

	return &window.Info{
		Title:         parts[1],
		AppName:       parts[0],
		ProcessName:   parts[0],
		DisplayServer: "wayland",
	}, nil
}

func processNameForPID(pid int) string {
	if pid <= 0 {
		return ""
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return name
}

// Close cleans up resources
func (i *Inspector) Close() error {
	return nil
}

// Compositor returns the detected compositor name, for status output.
func (i *Inspector) Compositor() string {
	return i.compositor
}
