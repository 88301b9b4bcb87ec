package sandbox

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ListDirectory returns the immediate children of p sorted by name.
// Symlinks are reported as symlinks and not followed.
func (f *FS) ListDirectory(ctx context.Context, p string) ([]DirEntry, error) {
	const op = "list_directory"

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	resolved, err := f.resolve(op, p)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, classify(op, p, err)
	}
	if !info.IsDir() {
		return nil, newError(KindNotADirectory, op, p, "not a directory")
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, classify(op, p, err)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		entry := DirEntry{Name: e.Name(), Type: entryType(e.Type())}
		if entry.Type == TypeFile {
			if fi, err := e.Info(); err == nil {
				entry.Size = fi.Size()
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// CreateDirectory creates p and any missing parents. It succeeds when p
// already exists as a directory.
func (f *FS) CreateDirectory(ctx context.Context, p string) error {
	const op = "create_directory"

	if err := checkContext(ctx, op); err != nil {
		return err
	}

	resolved, err := f.resolve(op, p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return classify(op, p, err)
	}

	f.logger.Debug("directory created", zap.String("path", p))
	return nil
}

type treeItem struct {
	node  *TreeNode
	dir   string
	level int
}

// Tree returns a snapshot of p down to depth levels. A depth of zero uses
// the configured default. Without followSymlinks every link is a leaf of
// type symlink. With it, links are followed one hop at a time, each hop is
// checked against the allow-list, and no resolved directory is expanded
// twice.
func (f *FS) Tree(ctx context.Context, p string, depth int, followSymlinks bool) (*TreeNode, error) {
	const op = "tree"

	if depth == 0 {
		depth = f.limits.DefaultTreeDepth
	}
	if depth < 1 || depth > f.limits.MaxTreeDepth {
		return nil, invalidArgument(op, "depth must be between 1 and %d", f.limits.MaxTreeDepth)
	}

	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	resolved, err := f.resolve(op, p)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, classify(op, p, err)
	}
	if !info.IsDir() {
		return nil, newError(KindNotADirectory, op, p, "not a directory")
	}

	root := &TreeNode{Name: filepath.Base(filepath.Clean(p)), Type: TypeDirectory}
	visited := map[string]struct{}{resolved: {}}
	queue := []treeItem{{node: root, dir: resolved}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, classify(op, p, err)
		}

		item := queue[0]
		queue = queue[1:]

		if item.level >= depth {
			continue
		}

		entries, err := os.ReadDir(item.dir)
		if err != nil {
			// A subdirectory that vanished or became unreadable stays empty.
			if item.node == root {
				return nil, classify(op, p, err)
			}
			f.logger.Debug("tree: unreadable directory", zap.String("name", item.node.Name), zap.Error(err))
			continue
		}

		item.node.Children = make([]*TreeNode, 0, len(entries))
		for _, e := range entries {
			child := &TreeNode{Name: e.Name(), Type: entryType(e.Type())}
			item.node.Children = append(item.node.Children, child)

			full := filepath.Join(item.dir, e.Name())
			switch child.Type {
			case TypeDirectory:
				if _, seen := visited[full]; seen {
					continue
				}
				visited[full] = struct{}{}
				queue = append(queue, treeItem{node: child, dir: full, level: item.level + 1})

			case TypeSymlink:
				if !followSymlinks {
					continue
				}
				target, info, err := f.followLink(full)
				if err != nil {
					f.logger.Debug("tree: link not followed", zap.String("name", e.Name()), zap.Error(err))
					continue
				}
				if !info.IsDir() {
					child.Type = entryType(info.Mode())
					continue
				}
				if _, seen := visited[target]; seen {
					continue
				}
				visited[target] = struct{}{}
				child.Type = TypeDirectory
				queue = append(queue, treeItem{node: child, dir: target, level: item.level + 1})
			}
		}
	}

	return root, nil
}
