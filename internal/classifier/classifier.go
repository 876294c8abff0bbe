package classifier

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kicadtime/kicadtime/internal/logging"
)

// FileIdentity is the canonical identity of the design file the user is
// working on. Path is absolute when the project directory could be
// resolved, best-effort otherwise. Values are compared by value.
type FileIdentity struct {
	Path        string
	ProjectName string
}

// Equal reports whether two identities refer to the same file. A nil
// identity never equals a non-nil one.
func (f *FileIdentity) Equal(other *FileIdentity) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Path == other.Path && f.ProjectName == other.ProjectName
}

// ProjectDirResolver locates the directory containing a KiCad project.
// Implementations return the empty string when the project cannot be
// found; they never return an error into the classifier.
type ProjectDirResolver interface {
	Resolve(projectName string) string
}

// Executable-name fragments that identify KiCad processes.
var kicadExeFragments = []string{
	"kicad", "pcbnew", "eeschema", "pcb_editor", "sch_editor",
}

// Window-title fragments that identify KiCad windows.
var kicadTitleFragments = []string{
	"KiCad", "PCB Editor", "Eeschema", "Schematic Editor",
	"PCBNew", "Symbol Editor", "Footprint Editor",
}

// Legacy title format: "<file>.<ext> - ..." or "<file>.<ext> [*] - ...",
// used by KiCad before the 7.x title rework.
var legacyTitleRe = regexp.MustCompile(`([^\s/\\]+\.(kicad_pcb|sch|kicad_sch|kicad_pro))(?:\s+-\s+|\s+\[\*\]\s+-\s+)`)

// Modern title format: "{* if unsaved}{project name} — {editor type}".
// The dash is an em dash.
var modernTitleRe = regexp.MustCompile(`(\*?)([^\s—]+)\s+—\s+(.+)`)

// Classifier turns a raw foreground window title/process pair into a
// FileIdentity, or nil when the window is not a recognized KiCad
// editor window.
type Classifier struct {
	resolver ProjectDirResolver
}

func New(resolver ProjectDirResolver) *Classifier {
	return &Classifier{resolver: resolver}
}

// Classify inspects the window title and process name. Either input may
// be empty. It never returns an error: anything unparseable yields nil.
func (c *Classifier) Classify(windowTitle, processName string) *FileIdentity {
	if !c.isKiCadWindow(windowTitle, processName) {
		return nil
	}

	if id := c.classifyLegacy(windowTitle); id != nil {
		return id
	}

	return c.classifyModern(windowTitle)
}

// isKiCadWindow checks the process name and window title against the
// known KiCad executable and title fragments.
func (c *Classifier) isKiCadWindow(windowTitle, processName string) bool {
	exe := strings.ToLower(processName)
	for _, fragment := range kicadExeFragments {
		if exe != "" && strings.Contains(exe, fragment) {
			logging.Debugf("KiCad detected by executable name: %s", processName)
			return true
		}
	}

	for _, fragment := range kicadTitleFragments {
		if strings.Contains(windowTitle, fragment) {
			logging.Debugf("KiCad detected by window title: %s", windowTitle)
			return true
		}
	}

	return false
}

// classifyLegacy extracts the filename from the pre-7.x title format.
// The returned path is the bare filename, not resolved to a directory.
func (c *Classifier) classifyLegacy(windowTitle string) *FileIdentity {
	match := legacyTitleRe.FindStringSubmatch(windowTitle)
	if match == nil {
		return nil
	}

	filename := match[1]
	ext := match[2]

	return &FileIdentity{
		Path:        filename,
		ProjectName: strings.TrimSuffix(filename, "."+ext),
	}
}

// classifyModern parses the 7.x-and-later title format and maps the
// editor type to a document extension. The project directory comes from
// the resolver; when resolution fails the identity still carries a
// best-effort relative path rather than being dropped.
func (c *Classifier) classifyModern(windowTitle string) *FileIdentity {
	match := modernTitleRe.FindStringSubmatch(windowTitle)
	if match == nil {
		return nil
	}

	// match[1] is the unsaved marker, not needed for identity.
	projectName := strings.TrimSpace(match[2])
	editorType := strings.TrimSpace(match[3])

	ext := extensionForEditor(editorType)
	if ext == "" {
		return nil
	}

	if ext == ".kicad_sym" || ext == ".kicad_mod" {
		logging.Warnf("Symbol/Footprint Editor window: resolved directory for %q may be unreliable", projectName)
	}

	dir := c.resolver.Resolve(projectName)
	if dir == "" {
		logging.Warnf("could not resolve project directory for %q, using relative path", projectName)
	}

	return &FileIdentity{
		Path:        filepath.Join(dir, projectName+ext),
		ProjectName: projectName,
	}
}

// extensionForEditor maps a KiCad editor type to a document extension.
// The bare "KiCad" title belongs to the project manager window.
func extensionForEditor(editorType string) string {
	switch {
	case strings.Contains(editorType, "PCB Editor"):
		return ".kicad_pcb"
	case strings.Contains(editorType, "Schematic Editor"):
		return ".kicad_sch"
	case strings.Contains(editorType, "KiCad"):
		return ".kicad_pro"
	case strings.Contains(editorType, "Symbol Editor"):
		return ".kicad_sym"
	case strings.Contains(editorType, "Footprint Editor"):
		return ".kicad_mod"
	}
	return ""
}
