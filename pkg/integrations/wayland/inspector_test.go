package wayland

import (
	"encoding/json"
	"testing"
)

const swayTreeFixture = `{
	"name": "root",
	"focused": false,
	"nodes": [
		{
			"name": "eDP-1",
			"focused": false,
			"nodes": [
				{
					"name": "workspace 1",
					"focused": false,
					"nodes": [
						{
							"name": "firefox",
							"app_id": "firefox",
							"pid": 1201,
							"focused": false,
							"nodes": []
						},
						{
							"name": "amplifier.kicad_pcb — PCB Editor",
							"app_id": "kicad",
							"pid": 1337,
							"focused": true,
							"nodes": []
						}
					]
				}
			]
		}
	]
}`

func TestFindFocused(t *testing.T) {
	var root swayNode
	if err := json.Unmarshal([]byte(swayTreeFixture), &root); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	node := findFocused(&root)
	if node == nil {
		t.Fatal("findFocused() = nil, want focused node")
	}
	if node.AppID != "kicad" || node.PID != 1337 {
		t.Errorf("findFocused() = app_id=%q pid=%d, want kicad/1337", node.AppID, node.PID)
	}
}

func TestFindFocusedFloatingNode(t *testing.T) {
	tree := `{
		"focused": false,
		"nodes": [{"focused": false, "nodes": []}],
		"floating_nodes": [
			{"name": "prefs", "app_id": "kicad", "pid": 42, "focused": true}
		]
	}`

	var root swayNode
	if err := json.Unmarshal([]byte(tree), &root); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	node := findFocused(&root)
	if node == nil {
		t.Fatal("findFocused() = nil, want floating focused node")
	}
	if node.PID != 42 {
		t.Errorf("findFocused() pid = %d, want 42", node.PID)
	}
}

func TestFindFocusedNone(t *testing.T) {
	var root swayNode
	if err := json.Unmarshal([]byte(`{"focused": false, "nodes": []}`), &root); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if node := findFocused(&root); node != nil {
		t.Errorf("findFocused() = %+v, want nil", node)
	}
}

func TestSwayNodeXWaylandClass(t *testing.T) {
	tree := `{
		"focused": true,
		"name": "amplifier.kicad_pcb - PCB Editor",
		"app_id": "",
		"pid": 99,
		"window_properties": {"class": "Pcbnew"}
	}`

	var node swayNode
	if err := json.Unmarshal([]byte(tree), &node); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if node.AppID != "" {
		t.Errorf("AppID = %q, want empty for XWayland window", node.AppID)
	}
	if node.WinProp == nil || node.WinProp.Class != "Pcbnew" {
		t.Errorf("WinProp = %+v, want class Pcbnew", node.WinProp)
	}
}

func TestHyprlandWindowParsing(t *testing.T) {
	payload := `{
		"address": "0x55d2a1b2c3d0",
		"title": "amplifier.kicad_sch — Schematic Editor",
		"class": "org.kicad.kicad",
		"pid": 2048,
		"workspace": {"id": 1}
	}`

	var win hyprlandWindow
	if err := json.Unmarshal([]byte(payload), &win); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if win.Class != "org.kicad.kicad" {
		t.Errorf("Class = %q", win.Class)
	}
	if win.PID != 2048 {
		t.Errorf("PID = %d, want 2048", win.PID)
	}
	if win.Title == "" {
		t.Error("Title is empty")
	}
}

func TestGetDisplayServer(t *testing.T) {
	i := &Inspector{}
	if got := i.GetDisplayServer(); got != "wayland" {
		t.Errorf("GetDisplayServer() = %q, want wayland", got)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name string
		insp Inspector
		want bool
	}{
		{"sway with swaymsg", Inspector{compositor: "sway", hasSwaymsg: true}, true},
		{"sway without swaymsg", Inspector{compositor: "sway"}, false},
		{"hyprland with hyprctl", Inspector{compositor: "hyprland", hasHyprctl: true}, true},
		{"gnome with gdbus", Inspector{compositor: "gnome", hasGdbus: true}, true},
		{"kde unsupported", Inspector{compositor: "kde", hasGdbus: true}, false},
		{"unknown compositor", Inspector{compositor: "unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.insp.IsAvailable(); got != tt.want {
				t.Errorf("IsAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessNameForBadPID(t *testing.T) {
	if got := processNameForPID(0); got != "" {
		t.Errorf("processNameForPID(0) = %q, want empty", got)
	}
	if got := processNameForPID(-1); got != "" {
		t.Errorf("processNameForPID(-1) = %q, want empty", got)
	}
}
