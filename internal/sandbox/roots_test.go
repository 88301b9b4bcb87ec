package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()

	dir := t.TempDir()
	allow, err := NewAllowList(testutil.ResolveAllowedDirs(t, dir))
	require.NoError(t, err)
	return New(allow), dir
}

func TestNewAllowList(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name    string
		dirs    []string
		wantErr bool
	}{
		{name: "existing directory", dirs: []string{dir}},
		{name: "no directories", dirs: nil},
		{name: "missing directory", dirs: []string{filepath.Join(dir, "missing")}, wantErr: true},
		{name: "regular file", dirs: []string{file}, wantErr: true},
		{name: "empty string", dirs: []string{""}, wantErr: true},
		{name: "one bad entry among good", dirs: []string{dir, filepath.Join(dir, "nope")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allow, err := NewAllowList(tt.dirs)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfiguration))
				assert.Nil(t, allow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.dirs), allow.Len())
		})
	}
}

func TestAllowListContains(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	allowed := filepath.Join(base, "allowed-dir")
	require.NoError(t, os.Mkdir(allowed, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(base, "allowed-dir2"), 0o755))

	allow, err := NewAllowList([]string{allowed})
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "root itself", path: allowed, want: true},
		{name: "direct child", path: filepath.Join(allowed, "file.txt"), want: true},
		{name: "deep descendant", path: filepath.Join(allowed, "a", "b", "c"), want: true},
		{name: "root with trailing separator", path: allowed + string(filepath.Separator), want: true},
		{name: "sibling sharing prefix", path: allowed + "2", want: false},
		{name: "sibling child sharing prefix", path: filepath.Join(allowed+"2", "file.txt"), want: false},
		{name: "parent", path: base, want: false},
		{name: "relative path", path: "allowed-dir/file.txt", want: false},
		{name: "empty", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allow.Contains(tt.path))
		})
	}
}

func TestAllowListFilesystemRoot(t *testing.T) {
	allow, err := NewAllowList([]string{"/"})
	require.NoError(t, err)

	assert.True(t, allow.Contains("/"))
	assert.True(t, allow.Contains("/etc/passwd"))
	assert.True(t, allow.IsRoot("/"))
}

func TestAllowListEmptyDeniesEverything(t *testing.T) {
	allow, err := NewAllowList(nil)
	require.NoError(t, err)

	assert.False(t, allow.Contains("/"))
	assert.False(t, allow.Contains(t.TempDir()))
	assert.Empty(t, allow.Roots())
}

func TestAllowListRootsVerbatim(t *testing.T) {
	dir := t.TempDir()
	raw := dir + string(filepath.Separator) + "." + string(filepath.Separator)

	allow, err := NewAllowList([]string{raw})
	require.NoError(t, err)

	assert.Equal(t, []string{raw}, allow.Roots())
	assert.True(t, allow.IsRoot(dir))
}

func TestNilAllowList(t *testing.T) {
	var allow *AllowList
	assert.False(t, allow.Contains("/tmp"))
}
