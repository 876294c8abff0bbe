package resolver

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kicadtime/kicadtime/internal/logging"
)

// Search depth below each root. KiCad projects rarely nest deeper than
// a couple of directories under a workspace root.
const maxDepth = 4

// DirResolver locates the directory containing a KiCad project by
// scanning a set of configured roots for "<project>.kicad_pro". Hits
// are cached for the process lifetime; a failed lookup returns the
// empty string and is never an error.
type DirResolver struct {
	roots []string
	cache map[string]string
}

// New creates a resolver over the given roots. When no roots are
// configured, the user's home directory is scanned.
func New(roots []string) *DirResolver {
	if len(roots) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			roots = []string{home}
		}
	}
	return &DirResolver{
		roots: roots,
		cache: make(map[string]string),
	}
}

// Resolve returns the directory holding projectName's .kicad_pro file,
// or "" when it cannot be found.
func (r *DirResolver) Resolve(projectName string) string {
	if projectName == "" {
		return ""
	}
	if dir, ok := r.cache[projectName]; ok {
		return dir
	}

	target := projectName + ".kicad_pro"
	for _, root := range r.roots {
		if dir := r.scan(root, target); dir != "" {
			logging.Debugf("resolved project %q to %s", projectName, dir)
			r.cache[projectName] = dir
			return dir
		}
	}

	// Negative results are cached too: a missing project directory
	// will not appear without the daemon seeing new activity anyway,
	// and rescanning every tick is wasteful.
	r.cache[projectName] = ""
	return ""
}

// scan walks root looking for the target project file, skipping hidden
// directories and anything deeper than maxDepth.
func (r *DirResolver) scan(root, target string) string {
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are ignored
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") && path != root {
				return fs.SkipDir
			}
			if depth(root, path) > maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == target {
			found = filepath.Dir(path)
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return ""
	}

	return found
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
