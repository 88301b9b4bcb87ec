package sandbox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// maxLinkHops bounds symlink chains followed while resolving a path whose
// tail does not exist yet. Matches the Linux MAXSYMLINKS value.
const maxLinkHops = 40

// Resolver turns caller-supplied paths into absolute, symlink-free paths
// that are known to lie inside the allow-list.
type Resolver struct {
	allow *AllowList
}

// NewResolver creates a resolver bound to allow.
func NewResolver(allow *AllowList) *Resolver {
	return &Resolver{allow: allow}
}

// Resolve validates p and returns its fully resolved form. The final
// component may be missing, in which case the deepest existing ancestor is
// resolved and the remainder appended.
func (r *Resolver) Resolve(op, p string) (string, error) {
	abs, err := r.absolute(op, p)
	if err != nil {
		return "", err
	}

	resolved, err := resolveExisting(abs, 0)
	if err != nil {
		return "", r.failure(op, p, abs, err)
	}

	if !r.allow.Contains(resolved) {
		return "", accessDenied(op, p)
	}
	return resolved, nil
}

// ResolveEntry validates p but leaves the final component unresolved, so
// the result names the directory entry itself. Operations that remove or
// rename an entry use it to act on a symlink rather than on its target.
func (r *Resolver) ResolveEntry(op, p string) (string, error) {
	abs, err := r.absolute(op, p)
	if err != nil {
		return "", err
	}

	parent, name := filepath.Split(abs)
	if name == "" {
		// abs is the filesystem root.
		return r.Resolve(op, p)
	}

	dir, err := resolveExisting(filepath.Clean(parent), 0)
	if err != nil {
		return "", r.failure(op, p, filepath.Clean(parent), err)
	}

	entry := filepath.Join(dir, name)
	if !r.allow.Contains(entry) {
		return "", accessDenied(op, p)
	}
	return entry, nil
}

// Allowed reports whether an already resolved path lies in the allow-list.
func (r *Resolver) Allowed(resolved string) bool {
	return r.allow.Contains(resolved)
}

// failure reports a resolution error for abs. The OS error is only
// surfaced when the path that failed lies inside the allow-list; anything
// else is AccessDenied so errors never describe entries outside it.
func (r *Resolver) failure(op, p, abs string, err error) error {
	if r.escapes(abs, 0) {
		return accessDenied(op, p)
	}
	return classify(op, p, err)
}

// escapes reports whether resolving abs leaves the allow-list. It finds the
// deepest ancestor that resolves and checks it; when the next component is
// a symlink, the link target is checked the same way.
func (r *Resolver) escapes(abs string, hops int) bool {
	if hops > maxLinkHops {
		// Every hop so far stayed inside.
		return false
	}

	dir, child := abs, ""
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			if !r.allow.Contains(resolved) {
				return true
			}
			if child == "" {
				return false
			}
			next := filepath.Join(resolved, child)
			info, err := os.Lstat(next)
			if err != nil || info.Mode()&fs.ModeSymlink == 0 {
				return false
			}
			target, err := os.Readlink(next)
			if err != nil {
				return true
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(resolved, target)
			}
			return r.escapes(filepath.Clean(target), hops+1)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return !r.allow.Contains(abs)
		}
		dir, child = parent, filepath.Base(dir)
	}
}

func (r *Resolver) absolute(op, p string) (string, error) {
	if p == "" {
		return "", invalidArgument(op, "path must not be empty")
	}
	abs, err := filepath.Abs(expandHome(p))
	if err != nil {
		return "", classify(op, p, err)
	}
	return abs, nil
}

// resolveExisting evaluates symlinks for as much of abs as exists. A
// dangling symlink found in the missing tail is followed through its target
// so that the returned path is where a create would really land.
func resolveExisting(abs string, hops int) (string, error) {
	if hops > maxLinkHops {
		return "", &fs.PathError{Op: "resolve", Path: abs, Err: syscall.ELOOP}
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	var tail []string
	dir := abs
	for {
		parent := filepath.Dir(dir)
		tail = append([]string{filepath.Base(dir)}, tail...)
		if parent == dir {
			return abs, nil
		}
		dir = parent

		resolvedDir, err := filepath.EvalSymlinks(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}

		// The first missing component may still be a dangling symlink.
		first := filepath.Join(resolvedDir, tail[0])
		info, err := os.Lstat(first)
		if err == nil && info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(first)
			if err != nil {
				return "", err
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(resolvedDir, target)
			}
			next := filepath.Join(append([]string{target}, tail[1:]...)...)
			return resolveExisting(filepath.Clean(next), hops+1)
		}

		return filepath.Join(append([]string{resolvedDir}, tail...)...), nil
	}
}
