package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// root keeps every form under which an allowed directory can be reached.
type root struct {
	configured string
	absolute   string
	resolved   string
}

// AllowList is the immutable set of allowed root directories. It is built
// once at startup and shared read-only by every operation.
type AllowList struct {
	roots []root
}

// NewAllowList validates and resolves the configured directories. Every
// entry must exist and be a directory. An empty list is valid and denies
// every path.
func NewAllowList(dirs []string) (*AllowList, error) {
	roots := make([]root, 0, len(dirs))

	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("%w: empty path", ErrConfiguration)
		}

		abs, err := filepath.Abs(expandHome(dir))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, dir, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s: not a directory", ErrConfiguration, dir)
		}

		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, dir, err)
		}

		roots = append(roots, root{
			configured: dir,
			absolute:   abs,
			resolved:   resolved,
		})
	}

	return &AllowList{roots: roots}, nil
}

// Contains reports whether p, an absolute symlink-resolved path, is one of
// the allowed roots or lies beneath one. Comparison is per path segment:
// root /data does not contain /database.
func (a *AllowList) Contains(p string) bool {
	if a == nil || !filepath.IsAbs(p) {
		return false
	}
	p = filepath.Clean(p)

	for _, r := range a.roots {
		if within(r.resolved, p) || within(r.absolute, p) {
			return true
		}
	}
	return false
}

// IsRoot reports whether p is exactly one of the allowed roots.
func (a *AllowList) IsRoot(p string) bool {
	p = filepath.Clean(p)
	for _, r := range a.roots {
		if p == r.resolved || p == r.absolute {
			return true
		}
	}
	return false
}

// Roots returns the directories exactly as they were configured.
func (a *AllowList) Roots() []string {
	out := make([]string, len(a.roots))
	for i, r := range a.roots {
		out[i] = r.configured
	}
	return out
}

// Len returns the number of configured roots.
func (a *AllowList) Len() int {
	return len(a.roots)
}

func within(base, p string) bool {
	if p == base {
		return true
	}
	if strings.HasSuffix(base, string(filepath.Separator)) {
		return strings.HasPrefix(p, base)
	}
	return strings.HasPrefix(p, base+string(filepath.Separator))
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
