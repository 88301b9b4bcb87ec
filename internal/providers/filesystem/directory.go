package filesystem

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
)

// DirectoryOps handles directory operations
type DirectoryOps struct {
	*FilesystemOps
}

// GetTools returns directory operation tool definitions
func (d *DirectoryOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.list_directory",
			Name:        "List Directory",
			Description: "List the immediate contents of a directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Directory path", Required: true},
			},
			Returns: "array",
		},
		{
			ID:          "filesystem.create_directory",
			Name:        "Create Directory",
			Description: "Create a directory and any missing parents; succeeds if it already exists",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Directory path", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.tree",
			Name:        "Directory Tree",
			Description: "Return a bounded hierarchical snapshot of a directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Root directory", Required: true},
				{Name: "depth", Type: "number", Description: "Maximum depth (default 3)", Required: false},
				{Name: "follow_symlinks", Type: "boolean", Description: "Descend into symlinked directories", Required: false},
			},
			Returns: "object",
		},
	}
}

// ListDirectory lists one directory level
func (d *DirectoryOps) ListDirectory(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args pathArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}

	entries, err := d.FS.ListDirectory(ctx, args.Path)
	if err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "entries": entries, "count": len(entries)})
}

// CreateDirectory creates a directory recursively
func (d *DirectoryOps) CreateDirectory(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args pathArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}

	if err := d.FS.CreateDirectory(ctx, args.Path); err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "created": true})
}

// Tree builds a bounded directory tree
func (d *DirectoryOps) Tree(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args treeArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}

	tree, err := d.FS.Tree(ctx, args.Path, args.Depth, args.FollowSymlinks)
	if err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "tree": tree})
}
