package sandbox

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

// CopyFile copies a file or a directory tree from src to dst. An existing
// destination is rejected with AlreadyExists unless overwrite is set, in
// which case files are truncated and directories merged.
func (f *FS) CopyFile(ctx context.Context, src, dst string, overwrite bool) (*CopyStats, error) {
	const op = "copy_file"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	srcPath, err := f.resolve(op, src)
	if err != nil {
		return nil, err
	}
	dstPath, err := f.resolve(op, dst)
	if err != nil {
		return nil, err
	}

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return nil, classify(op, src, err)
	}
	if srcPath == dstPath {
		return nil, invalidArgument(op, "source and destination are the same")
	}

	dstInfo, exists, err := lstatOptional(dstPath)
	if err != nil {
		return nil, classify(op, dst, err)
	}
	if exists && !overwrite {
		return nil, newError(KindAlreadyExists, op, dst, "destination already exists")
	}

	stats := &CopyStats{}
	if srcInfo.IsDir() {
		if within(srcPath, dstPath) {
			return nil, invalidArgument(op, "cannot copy a directory into itself")
		}
		if exists && !dstInfo.IsDir() {
			return nil, newError(KindNotADirectory, op, dst, "destination is not a directory")
		}
		err = f.copyTree(ctx, op, srcPath, dstPath, overwrite, stats)
	} else {
		if exists && dstInfo.IsDir() {
			return nil, newError(KindIsADirectory, op, dst, "destination is a directory")
		}
		err = copyRegular(srcPath, dstPath, srcInfo.Mode().Perm(), stats)
	}
	if err != nil {
		return stats, classify(op, dst, err)
	}

	f.logger.Debug("copied",
		zap.String("source", src),
		zap.String("destination", dst),
		zap.Int("files", stats.Files),
		zap.Int("skipped_links", stats.SkippedLinks),
	)
	return stats, nil
}

type copyJob struct {
	src, dst string
}

// copyTree copies breadth first with an explicit queue. Cancellation is
// only observed between files, never inside one.
func (f *FS) copyTree(ctx context.Context, op, srcRoot, dstRoot string, overwrite bool, stats *CopyStats) error {
	queue := []copyJob{{src: srcRoot, dst: dstRoot}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		job := queue[0]
		queue = queue[1:]

		info, err := os.Stat(job.src)
		if err != nil {
			return err
		}
		if overwrite {
			if err := clearLink(job.dst); err != nil {
				return err
			}
		}
		if err := os.Mkdir(job.dst, info.Mode().Perm()); err != nil {
			if !overwrite || !errors.Is(err, fs.ErrExist) || !isDir(job.dst) {
				return err
			}
		}
		stats.Directories++

		entries, err := os.ReadDir(job.src)
		if err != nil {
			return err
		}

		for _, e := range entries {
			s := filepath.Join(job.src, e.Name())
			d := filepath.Join(job.dst, e.Name())

			switch {
			case e.Type()&fs.ModeSymlink != 0:
				if err := f.copySymlink(s, d, overwrite, stats); err != nil {
					return err
				}
			case e.IsDir():
				queue = append(queue, copyJob{src: s, dst: d})
			case e.Type().IsRegular():
				if err := ctx.Err(); err != nil {
					return err
				}
				fi, err := e.Info()
				if err != nil {
					return err
				}
				if overwrite {
					if err := clearLink(d); err != nil {
						return err
					}
				}
				if err := copyRegular(s, d, fi.Mode().Perm(), stats); err != nil {
					return err
				}
			default:
				f.logger.Debug("skipping special file", zap.String("op", op), zap.String("name", e.Name()))
			}
		}
	}
	return nil
}

// copySymlink recreates a link found inside a copied tree. The link is
// kept only when both its current target and the target it will have at
// the new location stay inside the allow-list.
func (f *FS) copySymlink(src, dst string, overwrite bool, stats *CopyStats) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}

	current, err := filepath.EvalSymlinks(src)
	if err != nil || !f.resolver.Allowed(current) {
		stats.SkippedLinks++
		return nil
	}

	effective := target
	if !filepath.IsAbs(effective) {
		effective = filepath.Join(filepath.Dir(dst), effective)
	}
	moved, err := resolveExisting(filepath.Clean(effective), 0)
	if err != nil || !f.resolver.Allowed(moved) {
		stats.SkippedLinks++
		return nil
	}

	if overwrite {
		if info, exists, _ := lstatOptional(dst); exists && !info.IsDir() {
			if err := os.Remove(dst); err != nil {
				return err
			}
		}
	}
	if err := os.Symlink(target, dst); err != nil {
		return err
	}
	stats.Symlinks++
	return nil
}

func copyRegular(src, dst string, perm fs.FileMode, stats *CopyStats) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := clearLink(dst); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	stats.Files++
	stats.Bytes += n
	return nil
}

// MoveFile renames src to dst, falling back to copy and delete when they
// live on different filesystems. The source entry itself is moved, so a
// symlink is renamed rather than followed.
func (f *FS) MoveFile(ctx context.Context, src, dst string, overwrite bool) error {
	const op = "move_file"

	if err := checkContext(ctx, op); err != nil {
		return err
	}

	srcPath, err := f.resolveEntry(op, src)
	if err != nil {
		return err
	}
	dstPath, err := f.resolveEntry(op, dst)
	if err != nil {
		return err
	}

	srcInfo, err := os.Lstat(srcPath)
	if err != nil {
		return classify(op, src, err)
	}
	if f.allow.IsRoot(srcPath) {
		return invalidArgument(op, "cannot move an allowed directory")
	}
	if f.allow.IsRoot(dstPath) {
		return invalidArgument(op, "cannot replace an allowed directory")
	}
	if srcPath == dstPath {
		return nil
	}
	if srcInfo.IsDir() && within(srcPath, dstPath) {
		return invalidArgument(op, "cannot move a directory into itself")
	}

	dstInfo, exists, err := lstatOptional(dstPath)
	if err != nil {
		return classify(op, dst, err)
	}
	if exists {
		switch {
		case !overwrite:
			return newError(KindAlreadyExists, op, dst, "destination already exists")
		case dstInfo.IsDir() && !srcInfo.IsDir():
			return newError(KindIsADirectory, op, dst, "destination is a directory")
		case srcInfo.IsDir() && !dstInfo.IsDir():
			return newError(KindNotADirectory, op, dst, "destination is not a directory")
		}
	}

	err = os.Rename(srcPath, dstPath)
	if errors.Is(err, syscall.EXDEV) {
		err = f.moveAcrossDevices(ctx, op, srcPath, dstPath, srcInfo, overwrite)
	}
	if err != nil {
		return classify(op, dst, err)
	}

	f.logger.Debug("moved", zap.String("source", src), zap.String("destination", dst))
	return nil
}

func (f *FS) moveAcrossDevices(ctx context.Context, op, srcPath, dstPath string, srcInfo fs.FileInfo, overwrite bool) error {
	stats := &CopyStats{}

	var err error
	switch {
	case srcInfo.Mode()&fs.ModeSymlink != 0:
		err = f.copySymlink(srcPath, dstPath, overwrite, stats)
		if err == nil && stats.SkippedLinks > 0 {
			return newError(KindAccessDenied, op, "", "symlink target outside allowed directories")
		}
	case srcInfo.IsDir():
		err = f.copyTree(ctx, op, srcPath, dstPath, overwrite, stats)
	default:
		err = copyRegular(srcPath, dstPath, srcInfo.Mode().Perm(), stats)
	}
	if err != nil {
		return err
	}

	if srcInfo.IsDir() {
		return removeTree(ctx, srcPath)
	}
	return os.Remove(srcPath)
}

// DeleteFile removes the entry at p. A non-empty directory requires
// recursive; symlinks are removed, never followed.
func (f *FS) DeleteFile(ctx context.Context, p string, recursive bool) error {
	const op = "delete_file"

	if err := checkContext(ctx, op); err != nil {
		return err
	}

	target, err := f.resolveEntry(op, p)
	if err != nil {
		return err
	}
	if f.allow.IsRoot(target) {
		return invalidArgument(op, "cannot delete an allowed directory")
	}

	info, err := os.Lstat(target)
	if err != nil {
		return classify(op, p, err)
	}

	if !info.IsDir() || !recursive {
		if err := os.Remove(target); err != nil {
			return classify(op, p, err)
		}
	} else if err := removeTree(ctx, target); err != nil {
		return classify(op, p, err)
	}

	f.logger.Debug("deleted", zap.String("path", p), zap.Bool("recursive", recursive))
	return nil
}

// removeTree deletes root and everything below it without recursion.
// Directories are collected breadth first and removed deepest first;
// cancellation is observed between entries.
func removeTree(ctx context.Context, root string) error {
	dirs := []string{root}

	for i := 0; i < len(dirs); i++ {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := filepath.Join(dirs[i], e.Name())
			if e.IsDir() {
				dirs = append(dirs, child)
				continue
			}
			if err := os.Remove(child); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(dirs[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func lstatOptional(p string) (fs.FileInfo, bool, error) {
	info, err := os.Lstat(p)
	if err == nil {
		return info, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	return nil, false, err
}

// isDir reports whether p is a real directory, not a link to one.
func isDir(p string) bool {
	info, err := os.Lstat(p)
	return err == nil && info.IsDir()
}

// clearLink removes a symlink at p so a copy never writes through it.
func clearLink(p string) error {
	info, exists, err := lstatOptional(p)
	if err != nil || !exists || info.Mode()&fs.ModeSymlink == 0 {
		return err
	}
	return os.Remove(p)
}
