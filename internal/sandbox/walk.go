package sandbox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

var errLinkEscapes = errors.New("link target outside allowed directories")

// followLink follows the symlink at link one hop at a time and returns the
// final non-link target. Every intermediate hop must stay inside the
// allow-list, so a chain that leaves the sandbox and comes back is still
// rejected.
func (f *FS) followLink(link string) (string, fs.FileInfo, error) {
	cur := link
	for hops := 0; hops < maxLinkHops; hops++ {
		target, err := os.Readlink(cur)
		if err != nil {
			return "", nil, err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(cur), target)
		}

		parent, err := filepath.EvalSymlinks(filepath.Dir(target))
		if err != nil {
			return "", nil, err
		}
		next := filepath.Join(parent, filepath.Base(target))
		if !f.resolver.Allowed(next) {
			return "", nil, errLinkEscapes
		}

		info, err := os.Lstat(next)
		if err != nil {
			return "", nil, err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return next, info, nil
		}
		cur = next
	}
	return "", nil, &fs.PathError{Op: "readlink", Path: link, Err: syscall.ELOOP}
}
