package classifier

import (
	"path/filepath"
	"testing"
)

// stubResolver maps project names to directories for tests.
type stubResolver struct {
	dirs map[string]string
}

func (r *stubResolver) Resolve(projectName string) string {
	return r.dirs[projectName]
}

func newTestClassifier(dirs map[string]string) *Classifier {
	return New(&stubResolver{dirs: dirs})
}

func TestClassifyLegacyTitles(t *testing.T) {
	c := newTestClassifier(nil)

	tests := []struct {
		name        string
		title       string
		process     string
		wantPath    string
		wantProject string
	}{
		{
			name:        "pcb file with dash separator",
			title:       "board.kicad_pcb - PCB Editor",
			process:     "pcbnew.exe",
			wantPath:    "board.kicad_pcb",
			wantProject: "board",
		},
		{
			name:        "unsaved marker before separator",
			title:       "amp.kicad_sch [*] - Eeschema",
			process:     "eeschema",
			wantPath:    "amp.kicad_sch",
			wantProject: "amp",
		},
		{
			name:        "legacy sch extension",
			title:       "oldproj.sch - Eeschema",
			process:     "eeschema",
			wantPath:    "oldproj.sch",
			wantProject: "oldproj",
		},
		{
			name:        "project file",
			title:       "gadget.kicad_pro - KiCad",
			process:     "kicad",
			wantPath:    "gadget.kicad_pro",
			wantProject: "gadget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := c.Classify(tt.title, tt.process)
			if id == nil {
				t.Fatalf("Classify(%q, %q) = nil, want identity", tt.title, tt.process)
			}
			if id.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", id.Path, tt.wantPath)
			}
			if id.ProjectName != tt.wantProject {
				t.Errorf("ProjectName = %q, want %q", id.ProjectName, tt.wantProject)
			}
		})
	}
}

func TestClassifyModernTitles(t *testing.T) {
	projectDir := filepath.Join("/home", "user", "projects", "myproj")
	c := newTestClassifier(map[string]string{"myproj": projectDir})

	tests := []struct {
		name        string
		title       string
		wantPath    string
		wantProject string
	}{
		{
			name:        "pcb editor",
			title:       "myproj — PCB Editor",
			wantPath:    filepath.Join(projectDir, "myproj.kicad_pcb"),
			wantProject: "myproj",
		},
		{
			name:        "schematic editor",
			title:       "myproj — Schematic Editor",
			wantPath:    filepath.Join(projectDir, "myproj.kicad_sch"),
			wantProject: "myproj",
		},
		{
			name:        "project manager",
			title:       "myproj — KiCad 8.0",
			wantPath:    filepath.Join(projectDir, "myproj.kicad_pro"),
			wantProject: "myproj",
		},
		{
			name:        "unsaved marker ignored",
			title:       "*myproj — PCB Editor",
			wantPath:    filepath.Join(projectDir, "myproj.kicad_pcb"),
			wantProject: "myproj",
		},
		{
			name:        "symbol editor",
			title:       "myproj — Symbol Editor",
			wantPath:    filepath.Join(projectDir, "myproj.kicad_sym"),
			wantProject: "myproj",
		},
		{
			name:        "footprint editor",
			title:       "myproj — Footprint Editor",
			wantPath:    filepath.Join(projectDir, "myproj.kicad_mod"),
			wantProject: "myproj",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := c.Classify(tt.title, "kicad")
			if id == nil {
				t.Fatalf("Classify(%q) = nil, want identity", tt.title)
			}
			if id.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", id.Path, tt.wantPath)
			}
			if id.ProjectName != tt.wantProject {
				t.Errorf("ProjectName = %q, want %q", id.ProjectName, tt.wantProject)
			}
		})
	}
}

func TestClassifyUnresolvedProjectDir(t *testing.T) {
	c := newTestClassifier(nil) // resolver finds nothing

	id := c.Classify("ghost — PCB Editor", "kicad")
	if id == nil {
		t.Fatal("Classify() = nil, want best-effort identity despite failed resolution")
	}
	if id.ProjectName != "ghost" {
		t.Errorf("ProjectName = %q, want %q", id.ProjectName, "ghost")
	}
	// The path degrades to a relative one rather than the identity
	// being dropped.
	if id.Path != "ghost.kicad_pcb" {
		t.Errorf("Path = %q, want %q", id.Path, "ghost.kicad_pcb")
	}
}

func TestClassifyNonKiCadWindows(t *testing.T) {
	c := newTestClassifier(nil)

	tests := []struct {
		name    string
		title   string
		process string
	}{
		{"browser", "Example Domain - Mozilla Firefox", "firefox"},
		{"editor", "main.go - Visual Studio Code", "code"},
		{"empty title and process", "", ""},
		{"terminal with dash title", "user@host: ~ - Terminal", "gnome-terminal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id := c.Classify(tt.title, tt.process); id != nil {
				t.Errorf("Classify(%q, %q) = %+v, want nil", tt.title, tt.process, id)
			}
		})
	}
}

func TestClassifyKiCadWindowWithoutFile(t *testing.T) {
	c := newTestClassifier(nil)

	tests := []struct {
		name    string
		title   string
		process string
	}{
		{"bare application window", "KiCad", "kicad"},
		{"preferences dialog", "Preferences", "pcbnew"},
		{"empty title with kicad process", "", "kicad"},
		{"wizard window", "Footprint Editor welcome", "kicad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id := c.Classify(tt.title, tt.process); id != nil {
				t.Errorf("Classify(%q, %q) = %+v, want nil for unparseable KiCad title", tt.title, tt.process, id)
			}
		})
	}
}

func TestClassifyDetectionByProcessNameOnly(t *testing.T) {
	c := newTestClassifier(nil)

	// Title carries no KiCad fragment; the process name alone must
	// establish the application identity.
	id := c.Classify("board.kicad_pcb - untitled", "PCBNEW.EXE")
	if id == nil {
		t.Fatal("Classify() = nil, want identity from process-name detection")
	}
	if id.ProjectName != "board" {
		t.Errorf("ProjectName = %q, want %q", id.ProjectName, "board")
	}
}

func TestFileIdentityEqual(t *testing.T) {
	a := &FileIdentity{Path: "x.kicad_pcb", ProjectName: "x"}
	b := &FileIdentity{Path: "x.kicad_pcb", ProjectName: "x"}
	c := &FileIdentity{Path: "y.kicad_pcb", ProjectName: "y"}

	if !a.Equal(b) {
		t.Error("identical identities must compare equal")
	}
	if a.Equal(c) {
		t.Error("different identities must not compare equal")
	}
	if a.Equal(nil) {
		t.Error("non-nil identity must not equal nil")
	}
	var nilID *FileIdentity
	if !nilID.Equal(nil) {
		t.Error("nil identities must compare equal")
	}
}

func TestExtensionForEditor(t *testing.T) {
	tests := []struct {
		editorType string
		want       string
	}{
		{"PCB Editor", ".kicad_pcb"},
		{"Schematic Editor", ".kicad_sch"},
		{"KiCad 8.0", ".kicad_pro"},
		{"Symbol Editor", ".kicad_sym"},
		{"Footprint Editor", ".kicad_mod"},
		{"Gerber Viewer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.editorType, func(t *testing.T) {
			if got := extensionForEditor(tt.editorType); got != tt.want {
				t.Errorf("extensionForEditor(%q) = %q, want %q", tt.editorType, got, tt.want)
			}
		})
	}
}
