// Package testutil provides testing utilities and helpers shared by the
// package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockServiceProvider is a mock implementation of service.Provider for testing.
type MockServiceProvider struct {
	mock.Mock
}

// Definition mocks the Definition method.
func (m *MockServiceProvider) Definition() types.Service {
	args := m.Called()
	return args.Get(0).(types.Service)
}

// Execute mocks the Execute method.
func (m *MockServiceProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	args := m.Called(ctx, toolID, params, appCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Result), args.Error(1)
}

// NewMockServiceProvider creates a new mock service provider with default behaviors.
func NewMockServiceProvider(t *testing.T, serviceID string) *MockServiceProvider {
	t.Helper()
	m := new(MockServiceProvider)

	m.On("Definition").Return(CreateTestService(t, serviceID)).Maybe()

	return m
}

// CreateTestService creates a test service definition with a single tool.
func CreateTestService(t *testing.T, id string) types.Service {
	t.Helper()

	return types.Service{
		ID:           id,
		Name:         "Test Service",
		Description:  "A test service for unit testing",
		Category:     types.CategoryFilesystem,
		Capabilities: []string{"test"},
		Tools: []types.Tool{
			{
				ID:          id + ".test",
				Name:        "test",
				Description: "Test tool",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// ResolveAllowedDirs returns dirs plus the symlink-resolved form of each
// one that differs, since t.TempDir() lives under a symlink on some systems.
func ResolveAllowedDirs(t *testing.T, dirs ...string) []string {
	t.Helper()

	allowed := make([]string, 0, len(dirs)*2)
	for _, dir := range dirs {
		allowed = append(allowed, dir)

		resolved, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err, "failed to resolve symlinks for directory: %s", dir)

		if resolved != dir {
			allowed = append(allowed, resolved)
		}
	}
	return allowed
}

// WriteTree creates files under root. Keys are slash-separated relative
// paths; a key ending in "/" creates a directory and its value is ignored.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// Symlink creates a symlink at root/name pointing to target.
func Symlink(t *testing.T, target, root, name string) string {
	t.Helper()

	link := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.Symlink(target, link))
	return link
}

// ReadFile returns the contents of p as a string.
func ReadFile(t *testing.T, p string) string {
	t.Helper()

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

// AssertSuccess is a helper to assert a successful result.
func AssertSuccess(t *testing.T, result *types.Result) {
	t.Helper()
	if result == nil {
		t.Fatal("Result is nil")
	}
	if !result.Success {
		t.Fatalf("Expected success, got error: %v", *result.Error)
	}
}

// AssertError is a helper to assert an error result with the given kind.
func AssertError(t *testing.T, result *types.Result, kind string) {
	t.Helper()
	if result == nil {
		t.Fatal("Result is nil")
	}
	if result.Success {
		t.Fatal("Expected error, got success")
	}
	if result.Error == nil {
		t.Fatal("Expected error message, got nil")
	}
	if kind != "" && result.ErrorKind != kind {
		t.Fatalf("Expected error kind %s, got %s (%s)", kind, result.ErrorKind, *result.Error)
	}
}
