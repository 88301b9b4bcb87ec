package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFilesPattern(t *testing.T) {
	// dir/
	// - foo/
	//   - bar.h
	//   - test.c
	// - test.h
	// - test.c
	fsys, dir := newTestFS(t)
	testutil.WriteTree(t, dir, map[string]string{
		"test.h":     "foo",
		"test.c":     "foo",
		"foo/bar.h":  "foo",
		"foo/test.c": "foo",
	})
	testH := filepath.Join(dir, "test.h")
	testC := filepath.Join(dir, "test.c")
	fooBarH := filepath.Join(dir, "foo", "bar.h")
	fooTestC := filepath.Join(dir, "foo", "test.c")

	tests := []struct {
		info    string
		pattern string
		matches []string
	}{
		{info: "use placeholder with extension", pattern: "*.h", matches: []string{fooBarH, testH}},
		{info: "use placeholder with name", pattern: "test.*", matches: []string{fooTestC, testC, testH}},
		{info: "same filename", pattern: "test.c", matches: []string{fooTestC, testC}},
		{info: "directory name", pattern: "foo", matches: []string{filepath.Join(dir, "foo")}},
		{info: "relative path pattern", pattern: "foo/*.c", matches: []string{fooTestC}},
		{info: "double star", pattern: "**/*.h", matches: []string{fooBarH, testH}},
		{info: "case sensitive", pattern: "TEST.*", matches: nil},
	}

	for _, test := range tests {
		t.Run(test.info, func(t *testing.T) {
			matches, err := fsys.SearchFiles(context.Background(), dir, test.pattern, nil, 0)
			require.NoError(t, err)
			assert.ElementsMatch(t, test.matches, matches)
		})
	}
}

func TestSearchFilesOptions(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{
		"src/main.go":           "",
		"src/util.go":           "",
		"vendor/lib/lib.go":     "",
		"node_modules/x/idx.go": "",
	})

	t.Run("exclude directories", func(t *testing.T) {
		matches, err := fsys.SearchFiles(ctx, dir, "*.go", []string{"vendor", "node_modules"}, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "src", "main.go"),
			filepath.Join(dir, "src", "util.go"),
		}, matches)
	})

	t.Run("max results", func(t *testing.T) {
		matches, err := fsys.SearchFiles(ctx, dir, "*.go", nil, 2)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := fsys.SearchFiles(ctx, dir, "[", nil, 0)
		require.Error(t, err)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	})

	t.Run("invalid exclude", func(t *testing.T) {
		_, err := fsys.SearchFiles(ctx, dir, "*.go", []string{"{"}, 0)
		require.Error(t, err)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	})

	t.Run("negative max results", func(t *testing.T) {
		_, err := fsys.SearchFiles(ctx, dir, "*.go", nil, -1)
		require.Error(t, err)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	})

	t.Run("root is a file", func(t *testing.T) {
		_, err := fsys.SearchFiles(ctx, filepath.Join(dir, "src", "main.go"), "*", nil, 0)
		require.Error(t, err)
		assert.Equal(t, KindNotADirectory, KindOf(err))
	})

	t.Run("outside", func(t *testing.T) {
		_, err := fsys.SearchFiles(ctx, t.TempDir(), "*", nil, 0)
		require.Error(t, err)
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})
}

func TestSearchFilesDoesNotFollowLinks(t *testing.T) {
	fsys, dir := newTestFS(t)
	outside := t.TempDir()
	testutil.WriteTree(t, outside, map[string]string{"secret.h": ""})
	testutil.WriteTree(t, dir, map[string]string{"local.h": ""})
	testutil.Symlink(t, outside, dir, "ext")

	matches, err := fsys.SearchFiles(context.Background(), dir, "*.h", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "local.h")}, matches)
}

func TestSearchWithinFiles(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{
		"top.txt":             "alpha\nneedle here\nbeta\n",
		"one/mid.txt":         "xx needle\n",
		"one/two/deep.txt":    "needle\n",
		"one/two/nomatch.txt": "haystack only\n",
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.dat"), []byte("needle\x00needle"), 0o644))

	t.Run("line and column", func(t *testing.T) {
		matches, err := fsys.SearchWithinFiles(ctx, filepath.Join(dir, "top.txt"), "needle", nil, 0)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ContentMatch{
			Path:   filepath.Join(dir, "top.txt"),
			Line:   2,
			Column: 1,
			Text:   "needle here",
		}, matches[0])
	})

	depth := func(n int) *int { return &n }

	tests := []struct {
		name  string
		depth *int
		want  []string
	}{
		{name: "unbounded", depth: nil, want: []string{"top.txt", "one/mid.txt", "one/two/deep.txt"}},
		{name: "root only", depth: depth(0), want: []string{"top.txt"}},
		{name: "one level", depth: depth(1), want: []string{"top.txt", "one/mid.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := fsys.SearchWithinFiles(ctx, dir, "needle", tt.depth, 0)
			require.NoError(t, err)

			got := make([]string, 0, len(matches))
			for _, m := range matches {
				rel, err := filepath.Rel(dir, m.Path)
				require.NoError(t, err)
				got = append(got, filepath.ToSlash(rel))
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	t.Run("binary skipped", func(t *testing.T) {
		matches, err := fsys.SearchWithinFiles(ctx, dir, "needle", nil, 0)
		require.NoError(t, err)
		for _, m := range matches {
			assert.NotEqual(t, "bin.dat", filepath.Base(m.Path))
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := fsys.SearchWithinFiles(ctx, dir, "", nil, 0)
		assert.Equal(t, KindInvalidArgument, KindOf(err))

		_, err = fsys.SearchWithinFiles(ctx, dir, "needle", depth(-1), 0)
		assert.Equal(t, KindInvalidArgument, KindOf(err))

		_, err = fsys.SearchWithinFiles(ctx, dir, "needle", nil, -5)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	})
}

func TestSearchWithinFilesBounded(t *testing.T) {
	fsys, dir := newTestFS(t)
	lines := strings.Repeat("match\n", 50)
	files := map[string]string{}
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "sub/d.txt"} {
		files[name] = lines
	}
	testutil.WriteTree(t, dir, files)

	for _, n := range []int{1, 7, 50, 120} {
		matches, err := fsys.SearchWithinFiles(context.Background(), dir, "match", nil, n)
		require.NoError(t, err)
		assert.Len(t, matches, n)
	}
}

func TestSearchWithinFilesSymlinks(t *testing.T) {
	fsys, dir := newTestFS(t)
	outside := t.TempDir()
	testutil.WriteTree(t, outside, map[string]string{"secret.txt": "needle"})
	testutil.WriteTree(t, dir, map[string]string{"real/inside.txt": "needle"})

	testutil.Symlink(t, filepath.Join(outside, "secret.txt"), dir, "secret-link.txt")
	testutil.Symlink(t, outside, dir, "outside-dir")
	testutil.Symlink(t, filepath.Join(dir, "real", "inside.txt"), dir, "inside-link.txt")

	matches, err := fsys.SearchWithinFiles(context.Background(), dir, "needle", nil, 0)
	require.NoError(t, err)

	got := make([]string, 0, len(matches))
	for _, m := range matches {
		got = append(got, filepath.Base(m.Path))
	}
	assert.ElementsMatch(t, []string{"inside.txt", "inside-link.txt"}, got)
}

func TestSearchWithinFilesLongLine(t *testing.T) {
	fsys, dir := newTestFS(t)
	long := strings.Repeat("x", 2000) + "needle" + strings.Repeat("y", 2000)
	testutil.WriteTree(t, dir, map[string]string{"long.txt": long})

	matches, err := fsys.SearchWithinFiles(context.Background(), dir, "needle", nil, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2001, matches[0].Column)
	assert.Len(t, matches[0].Text, fsys.Limits().MaxLineLength)
}

func TestSearchCanceled(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fsys.SearchFiles(ctx, dir, "*", nil, 0)
	assert.Equal(t, KindCanceled, KindOf(err))

	_, err = fsys.SearchWithinFiles(ctx, dir, "x", nil, 0)
	assert.Equal(t, KindCanceled, KindOf(err))
}

func TestGetFileInfo(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{
		"file.txt": "hello world",
		"folder/":  "",
	})
	require.NoError(t, os.Chmod(filepath.Join(dir, "file.txt"), 0o640))
	testutil.Symlink(t, t.TempDir(), dir, "link")

	info, err := fsys.GetFileInfo(ctx, filepath.Join(dir, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "file.txt", info.Name)
	assert.Equal(t, filepath.Join(dir, "file.txt"), info.Path)
	assert.Equal(t, int64(11), info.Size)
	assert.Equal(t, TypeFile, info.Type)
	assert.Equal(t, "0640", info.Permissions)
	assert.Equal(t, "-rw-r-----", info.Mode)
	assert.False(t, info.Modified.IsZero())
	assert.False(t, info.Accessed.IsZero())
	assert.True(t, strings.HasPrefix(info.MimeType, "text/plain"))

	dirInfo, err := fsys.GetFileInfo(ctx, filepath.Join(dir, "folder"))
	require.NoError(t, err)
	assert.Equal(t, TypeDirectory, dirInfo.Type)
	assert.Empty(t, dirInfo.MimeType)

	linkInfo, err := fsys.GetFileInfo(ctx, filepath.Join(dir, "link"))
	require.NoError(t, err)
	assert.Equal(t, TypeSymlink, linkInfo.Type)

	_, err = fsys.GetFileInfo(ctx, filepath.Join(dir, "missing"))
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = fsys.GetFileInfo(ctx, filepath.Join(dir, "link", "anything"))
	assert.Equal(t, KindAccessDenied, KindOf(err))
}

func TestListAllowedDirectories(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	allow, err := NewAllowList([]string{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{a, b}, New(allow).ListAllowedDirectories())
}
