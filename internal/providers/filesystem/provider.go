package filesystem

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
	"go.uber.org/zap"
)

// Provider exposes the sandboxed filesystem as a service
type Provider struct {
	files     *FileOps
	directory *DirectoryOps
	search    *SearchOps
}

// NewProvider creates a filesystem provider backed by fsys
func NewProvider(fsys *sandbox.FS, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	ops := &FilesystemOps{FS: fsys, Logger: logger}

	return &Provider{
		files:     &FileOps{FilesystemOps: ops},
		directory: &DirectoryOps{FilesystemOps: ops},
		search:    &SearchOps{FilesystemOps: ops},
	}
}

// Definition returns service metadata with all module tools
func (p *Provider) Definition() types.Service {
	tools := []types.Tool{}
	tools = append(tools, p.files.GetTools()...)
	tools = append(tools, p.directory.GetTools()...)
	tools = append(tools, p.search.GetTools()...)

	return types.Service{
		ID:          "filesystem",
		Name:        "Filesystem Service",
		Description: "File and directory operations confined to allowed directories",
		Category:    types.CategoryFilesystem,
		Capabilities: []string{
			"read",
			"write",
			"copy",
			"move",
			"delete",
			"modify",
			"list",
			"tree",
			"search",
			"stat",
		},
		Tools: tools,
	}
}

// Execute routes to appropriate module
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if params == nil {
		params = map[string]interface{}{}
	}

	result, err := p.route(ctx, toolID, params, appCtx)
	if err == nil && result != nil && !result.Success && result.ErrorKind == string(sandbox.KindAccessDenied) {
		p.files.Logger.Warn("tool denied", zap.String("tool", toolID))
	}
	return result, err
}

func (p *Provider) route(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	// File operations
	case "filesystem.read_file":
		return p.files.ReadFile(ctx, params, appCtx)
	case "filesystem.read_multiple_files":
		return p.files.ReadMultipleFiles(ctx, params, appCtx)
	case "filesystem.write_file":
		return p.files.WriteFile(ctx, params, appCtx)
	case "filesystem.copy_file":
		return p.files.CopyFile(ctx, params, appCtx)
	case "filesystem.move_file":
		return p.files.MoveFile(ctx, params, appCtx)
	case "filesystem.delete_file":
		return p.files.DeleteFile(ctx, params, appCtx)
	case "filesystem.modify_file":
		return p.files.ModifyFile(ctx, params, appCtx)

	// Directory operations
	case "filesystem.list_directory":
		return p.directory.ListDirectory(ctx, params, appCtx)
	case "filesystem.create_directory":
		return p.directory.CreateDirectory(ctx, params, appCtx)
	case "filesystem.tree":
		return p.directory.Tree(ctx, params, appCtx)

	// Search and metadata
	case "filesystem.search_files":
		return p.search.SearchFiles(ctx, params, appCtx)
	case "filesystem.search_within_files":
		return p.search.SearchWithinFiles(ctx, params, appCtx)
	case "filesystem.get_file_info":
		return p.search.GetFileInfo(ctx, params, appCtx)
	case "filesystem.list_allowed_directories":
		return p.search.ListAllowedDirectories(ctx, params, appCtx)

	default:
		return Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}
