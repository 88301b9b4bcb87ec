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

func TestReadFile(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	testutil.WriteTree(t, dir, map[string]string{
		"test":    "test-content",
		"folder/": "",
	})

	content, err := fsys.ReadFile(ctx, filepath.Join(dir, "test"))
	require.NoError(t, err)
	assert.Equal(t, "test-content", string(content.Data))
	assert.True(t, content.IsText)
	assert.True(t, strings.HasPrefix(content.MimeType, "text/plain"))

	t.Run("missing", func(t *testing.T) {
		_, err := fsys.ReadFile(ctx, filepath.Join(dir, "missing"))
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Contains(t, err.Error(), "no such file or directory")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := fsys.ReadFile(ctx, filepath.Join(dir, "folder"))
		require.Error(t, err)
		assert.Equal(t, KindIsADirectory, KindOf(err))
	})

	t.Run("other root", func(t *testing.T) {
		other := t.TempDir()
		testutil.WriteTree(t, other, map[string]string{"test": "secret"})

		_, err := fsys.ReadFile(ctx, filepath.Join(other, "test"))
		require.Error(t, err)
		assert.Equal(t, KindAccessDenied, KindOf(err))
		assert.Contains(t, err.Error(), "access denied - path outside allowed directories")
	})
}

func TestReadFileBinary(t *testing.T) {
	fsys, dir := newTestFS(t)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), png, 0o644))

	content, err := fsys.ReadFile(context.Background(), filepath.Join(dir, "image.png"))
	require.NoError(t, err)
	assert.Equal(t, png, content.Data)
	assert.Equal(t, "image/png", content.MimeType)
	assert.False(t, content.IsText)
	assert.Empty(t, content.Charset)
}

func TestReadMultipleFiles(t *testing.T) {
	fsys, dir := newTestFS(t)
	testutil.WriteTree(t, dir, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
	})
	outside := filepath.Join(t.TempDir(), "c.txt")

	paths := []string{
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "missing.txt"),
		outside,
		filepath.Join(dir, "a.txt"),
	}
	results := fsys.ReadMultipleFiles(context.Background(), paths)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, "beta", string(results[0].Content.Data))
	assert.Equal(t, KindNotFound, KindOf(results[1].Err))
	assert.Equal(t, KindAccessDenied, KindOf(results[2].Err))
	require.NoError(t, results[3].Err)
	assert.Equal(t, "alpha", string(results[3].Content.Data))
}

func TestWriteFileRoundTrip(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		content []byte
	}{
		{name: "new file", path: "new.txt", content: []byte("hello")},
		{name: "empty file", path: "empty.txt", content: []byte{}},
		{name: "binary content", path: "blob.bin", content: []byte{0, 1, 2, 0xff}},
		{name: "unicode name", path: "naïve ünïcode.txt", content: []byte("ü")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, tt.path)
			require.NoError(t, fsys.WriteFile(ctx, p, tt.content))

			got, err := fsys.ReadFile(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.content, got.Data)
		})
	}
}

func TestWriteFile(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()

	t.Run("overwrite keeps permissions", func(t *testing.T) {
		p := filepath.Join(dir, "script.sh")
		require.NoError(t, os.WriteFile(p, []byte("old"), 0o600))

		require.NoError(t, fsys.WriteFile(ctx, p, []byte("new")))

		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		assert.Equal(t, "new", testutil.ReadFile(t, p))
	})

	t.Run("missing parent", func(t *testing.T) {
		err := fsys.WriteFile(ctx, filepath.Join(dir, "no", "such", "file.txt"), []byte("x"))
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("directory target", func(t *testing.T) {
		err := fsys.WriteFile(ctx, dir, []byte("x"))
		require.Error(t, err)
		assert.Equal(t, KindIsADirectory, KindOf(err))
	})

	t.Run("through symlink to outside", func(t *testing.T) {
		outside := t.TempDir()
		testutil.Symlink(t, filepath.Join(outside, "escaped.txt"), dir, "escape")

		err := fsys.WriteFile(ctx, filepath.Join(dir, "escape"), []byte("x"))
		require.Error(t, err)
		assert.Equal(t, KindAccessDenied, KindOf(err))
		assert.NoFileExists(t, filepath.Join(outside, "escaped.txt"))
	})

	t.Run("canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := fsys.WriteFile(canceled, filepath.Join(dir, "never.txt"), []byte("x"))
		require.Error(t, err)
		assert.Equal(t, KindCanceled, KindOf(err))
		assert.NoFileExists(t, filepath.Join(dir, "never.txt"))
	})
}

func TestModifyFile(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		content   string
		find      string
		replace   string
		all       bool
		regex     bool
		want      string
		wantCount int
	}{
		{name: "first literal", content: "a-a-a", find: "a", replace: "b", want: "b-a-a", wantCount: 1},
		{name: "all literal", content: "a-a-a", find: "a", replace: "b", all: true, want: "b-b-b", wantCount: 3},
		{name: "regex groups", content: "john smith", find: `(\w+) (\w+)`, replace: "$2 $1", regex: true, want: "smith john", wantCount: 1},
		{name: "regex all", content: "x1 x22 x333", find: `x\d+`, replace: "n", all: true, regex: true, want: "n n n", wantCount: 3},
		{name: "regex first only", content: "x1 x22", find: `x(\d+)`, replace: "<${1}>", regex: true, want: "<1> x22", wantCount: 1},
		{name: "regex metacharacters literal", content: "a.b", find: ".", replace: "-", all: true, want: "a-b", wantCount: 1},
		{name: "no match", content: "unchanged", find: "zzz", replace: "y", all: true, want: "unchanged", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".txt")
			require.NoError(t, os.WriteFile(p, []byte(tt.content), 0o644))

			count, err := fsys.ModifyFile(ctx, p, tt.find, tt.replace, tt.all, tt.regex)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.want, testutil.ReadFile(t, p))
		})
	}
}

func TestModifyFileInvalid(t *testing.T) {
	fsys, dir := newTestFS(t)
	ctx := context.Background()
	p := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(p, []byte("content"), 0o644))

	tests := []struct {
		name  string
		path  string
		find  string
		regex bool
		kind  Kind
	}{
		{name: "empty find", path: p, find: "", kind: KindInvalidArgument},
		{name: "bad regex", path: p, find: "(", regex: true, kind: KindInvalidArgument},
		{name: "missing file", path: filepath.Join(dir, "missing"), find: "x", kind: KindNotFound},
		{name: "directory", path: dir, find: "x", kind: KindIsADirectory},
		{name: "outside", path: filepath.Join(t.TempDir(), "x"), find: "x", kind: KindAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fsys.ModifyFile(ctx, tt.path, tt.find, "y", false, tt.regex)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
	assert.Equal(t, "content", testutil.ReadFile(t, p))
}
