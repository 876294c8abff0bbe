package x11

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/kicadtime/kicadtime/pkg/window"
)

// Inspector implements window.Inspector on X11 using a direct protocol
// connection rather than shelling out to xdotool.
type Inspector struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewInspector connects to the X server and interns the atoms needed
// for foreground-window queries.
func NewInspector() (*Inspector, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	insp := &Inspector{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom),
	}

	atomNames := []string{
		"_NET_ACTIVE_WINDOW",
		"_NET_WM_NAME",
		"_NET_WM_PID",
		"WM_NAME",
		"WM_CLASS",
		"UTF8_STRING",
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		insp.atoms[name] = reply.Atom
	}

	return insp, nil
}

// IsAvailable reports whether the X connection is usable.
func (i *Inspector) IsAvailable() bool {
	return i.conn != nil
}

// GetDisplayServer returns "x11"
func (i *Inspector) GetDisplayServer() string {
	return "x11"
}

// GetForegroundWindow returns information about the currently focused window
func (i *Inspector) GetForegroundWindow() (*window.Info, error) {
	windowID, err := i.activeWindow()
	if err != nil {
		return nil, err
	}

	instance, class := i.windowClass(windowID)
	pid := i.windowPID(windowID)

	info := &window.Info{
		Title:         i.windowName(windowID),
		AppName:       class,
		PID:           int(pid),
		DisplayServer: "x11",
	}
	if info.AppName == "" {
		info.AppName = instance
	}
	if pid != 0 {
		info.ProcessName = processNameForPID(int32(pid))
	}

	return info, nil
}

// processNameForPID resolves a process name through the process table.
// Sandboxed apps may hide their PID; an empty name is fine, the
// classifier falls back to the window title.
func processNameForPID(pid int32) string {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return ""
	}
	name, err := proc.Name()
	if err != nil {
		return ""
	}
	return name
}

// activeWindow finds the focused top-level window, preferring the EWMH
// _NET_ACTIVE_WINDOW property and falling back to the input focus. Some
// window managers briefly report no active window during focus changes,
// hence the short retry loop.
func (i *Inspector) activeWindow() (xproto.Window, error) {
	for attempt := 0; attempt < 5; attempt++ {
		windowID := i.activeWindowFromProperty()
		if windowID != 0 && i.hasValidName(windowID) {
			return windowID, nil
		}

		windowID = i.activeWindowFromInputFocus()
		if windowID != 0 && windowID != i.root {
			topLevel := i.topLevelParent(windowID)
			if topLevel != 0 && i.hasValidName(topLevel) {
				return topLevel, nil
			}
		}

		time.Sleep(20 * time.Millisecond)
	}

	return 0, fmt.Errorf("no active window found")
}

func (i *Inspector) getProperty(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(i.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (i *Inspector) activeWindowFromProperty() xproto.Window {
	data, err := i.getProperty(i.root, i.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (i *Inspector) activeWindowFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(i.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (i *Inspector) topLevelParent(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(i.conn, win).Reply()
		if err != nil || reply.Parent == i.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (i *Inspector) hasValidName(win xproto.Window) bool {
	data, _ := i.getProperty(win, i.atoms["_NET_WM_NAME"], i.atoms["UTF8_STRING"], 1)
	if len(data) > 0 {
		return true
	}
	data, _ = i.getProperty(win, i.atoms["WM_NAME"], xproto.AtomString, 1)
	return len(data) > 0
}

func (i *Inspector) windowName(win xproto.Window) string {
	data, err := i.getProperty(win, i.atoms["_NET_WM_NAME"], i.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = i.getProperty(win, i.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (i *Inspector) windowClass(win xproto.Window) (instance, class string) {
	data, err := i.getProperty(win, i.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}

	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func (i *Inspector) windowPID(win xproto.Window) uint32 {
	data, err := i.getProperty(win, i.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

// Close shuts down the X connection.
func (i *Inspector) Close() error {
	if i.conn != nil {
		i.conn.Close()
		i.conn = nil
	}
	return nil
}
