package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDirectory(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{
		"b.txt":   "bbb",
		"a.txt":   "a",
		"folder/": "",
	})
	testutil.Symlink(t, "a.txt", dir, "link")

	entries, err := fsys.ListDirectory(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, []DirEntry{
		{Name: "a.txt", Type: TypeFile, Size: 1},
		{Name: "b.txt", Type: TypeFile, Size: 3},
		{Name: "folder", Type: TypeDirectory},
		{Name: "link", Type: TypeSymlink},
	}, entries)

	t.Run("file", func(t *testing.T) {
		_, err := fsys.ListDirectory(ctx, filepath.Join(dir, "a.txt"))
		require.Error(t, err)
		assert.Equal(t, KindNotADirectory, KindOf(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := fsys.ListDirectory(ctx, filepath.Join(dir, "missing"))
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("outside", func(t *testing.T) {
		_, err := fsys.ListDirectory(ctx, t.TempDir())
		require.Error(t, err)
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})
}

func TestCreateDirectory(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	p := filepath.Join(dir, "a", "b", "c")

	require.NoError(t, fsys.CreateDirectory(ctx, p))
	require.NoError(t, fsys.CreateDirectory(ctx, p))
	assert.DirExists(t, p)

	t.Run("existing file", func(t *testing.T) {
		testutil.WriteTree(t, dir, map[string]string{"file": "x"})
		err := fsys.CreateDirectory(ctx, filepath.Join(dir, "file"))
		require.Error(t, err)
		assert.Equal(t, KindNotADirectory, KindOf(err))
	})

	t.Run("outside", func(t *testing.T) {
		outside := t.TempDir()
		err := fsys.CreateDirectory(ctx, filepath.Join(outside, "new"))
		require.Error(t, err)
		assert.Equal(t, KindAccessDenied, KindOf(err))
		assert.NoDirExists(t, filepath.Join(outside, "new"))
	})
}

func childNames(n *TreeNode) []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

func findChild(t *testing.T, n *TreeNode, name string) *TreeNode {
	t.Helper()
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("child %q not found in %v", name, childNames(n))
	return nil
}

func TestTreeDepth(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{
		"root/l1/l2/l3/l4.txt": "x",
		"root/top.txt":         "x",
	})
	root := filepath.Join(dir, "root")

	tests := []struct {
		name  string
		depth int
		check func(t *testing.T, n *TreeNode)
	}{
		{
			name:  "depth one",
			depth: 1,
			check: func(t *testing.T, n *TreeNode) {
				assert.Equal(t, []string{"l1", "top.txt"}, childNames(n))
				assert.Nil(t, findChild(t, n, "l1").Children)
			},
		},
		{
			name:  "default depth",
			depth: 0,
			check: func(t *testing.T, n *TreeNode) {
				l2 := findChild(t, findChild(t, n, "l1"), "l2")
				l3 := findChild(t, l2, "l3")
				assert.Equal(t, TypeDirectory, l3.Type)
				assert.Nil(t, l3.Children)
			},
		},
		{
			name:  "deep enough",
			depth: 10,
			check: func(t *testing.T, n *TreeNode) {
				l3 := findChild(t, findChild(t, findChild(t, n, "l1"), "l2"), "l3")
				leaf := findChild(t, l3, "l4.txt")
				assert.Equal(t, TypeFile, leaf.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := fsys.Tree(ctx, root, tt.depth, false)
			require.NoError(t, err)
			assert.Equal(t, "root", n.Name)
			assert.Equal(t, TypeDirectory, n.Type)
			tt.check(t, n)
		})
	}
}

func TestTreeInvalid(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{"file.txt": "x"})

	for _, depth := range []int{-1, fsys.Limits().MaxTreeDepth + 1} {
		_, err := fsys.Tree(ctx, dir, depth, false)
		require.Error(t, err)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	}

	_, err := fsys.Tree(ctx, filepath.Join(dir, "file.txt"), 1, false)
	require.Error(t, err)
	assert.Equal(t, KindNotADirectory, KindOf(err))
}

func TestTreeSymlinks(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	outside := t.TempDir()
	testutil.WriteTree(t, outside, map[string]string{"secret.txt": "s"})
	testutil.WriteTree(t, dir, map[string]string{
		"tree/a/file.txt":  "f",
		"other/inside.txt": "i",
	})
	root := filepath.Join(dir, "tree")

	testutil.Symlink(t, "..", root, "a/loop")
	testutil.Symlink(t, filepath.Join(dir, "other"), root, "ln")
	testutil.Symlink(t, outside, root, "out")

	t.Run("not followed", func(t *testing.T) {
		n, err := fsys.Tree(ctx, root, 5, false)
		require.NoError(t, err)

		for _, name := range []string{"ln", "out"} {
			child := findChild(t, n, name)
			assert.Equal(t, TypeSymlink, child.Type)
			assert.Nil(t, child.Children)
		}
		assert.Equal(t, TypeSymlink, findChild(t, findChild(t, n, "a"), "loop").Type)
	})

	t.Run("followed", func(t *testing.T) {
		n, err := fsys.Tree(ctx, root, 5, true)
		require.NoError(t, err)

		ln := findChild(t, n, "ln")
		assert.Equal(t, TypeDirectory, ln.Type)
		assert.Equal(t, []string{"inside.txt"}, childNames(ln))

		out := findChild(t, n, "out")
		assert.Equal(t, TypeSymlink, out.Type)
		assert.Nil(t, out.Children)

		// The loop points back at the root, which was already expanded.
		loop := findChild(t, findChild(t, n, "a"), "loop")
		assert.Nil(t, loop.Children)
	})
}

func TestTreeCanceled(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fsys.Tree(ctx, dir, 1, false)
	require.Error(t, err)
	assert.Equal(t, KindCanceled, KindOf(err))
}

func TestTreeUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	fsys, dir := newTestFS(t)
	testutil.WriteTree(t, dir, map[string]string{"locked/x.txt": "x"})
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	n, err := fsys.Tree(context.Background(), dir, 2, false)
	require.NoError(t, err)
	assert.Empty(t, findChild(t, n, "locked").Children)
}
