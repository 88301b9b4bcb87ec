package filesystem

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
)

// SearchOps handles search and metadata operations
type SearchOps struct {
	*FilesystemOps
}

// GetTools returns search operation tool definitions
func (s *SearchOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.search_files",
			Name:        "Search Files",
			Description: "Recursively find files and directories whose base name matches a glob pattern at any depth; patterns containing / match the path relative to the root instead",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Root directory", Required: true},
				{Name: "pattern", Type: "string", Description: "Glob pattern, e.g. *.go or src/**/*.h", Required: true},
				{Name: "exclude_patterns", Type: "array", Description: "Glob patterns for directories to skip", Required: false},
				{Name: "max_results", Type: "number", Description: "Maximum results (default 1000)", Required: false},
			},
			Returns: "array",
		},
		{
			ID:          "filesystem.search_within_files",
			Name:        "Search Within Files",
			Description: "Find lines containing a substring in text files under a directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Root directory", Required: true},
				{Name: "substring", Type: "string", Description: "Text to search for", Required: true},
				{Name: "depth", Type: "number", Description: "Maximum directory depth (default unlimited)", Required: false},
				{Name: "max_results", Type: "number", Description: "Maximum matches (default 1000)", Required: false},
			},
			Returns: "array",
		},
		{
			ID:          "filesystem.get_file_info",
			Name:        "Get File Info",
			Description: "Get metadata for a file, directory or symlink",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Path", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "filesystem.list_allowed_directories",
			Name:        "List Allowed Directories",
			Description: "List the directories this server is allowed to access",
			Parameters:  []types.Parameter{},
			Returns:     "array",
		},
	}
}

// SearchFiles finds entries by glob pattern
func (s *SearchOps) SearchFiles(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args searchFilesArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}
	if args.Pattern == "" {
		return Failure("pattern parameter required")
	}

	matches, err := s.FS.SearchFiles(ctx, args.Path, args.Pattern, args.ExcludePatterns, args.MaxResults)
	if err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "matches": matches, "count": len(matches)})
}

// SearchWithinFiles finds lines containing a substring
func (s *SearchOps) SearchWithinFiles(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args searchWithinArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}
	if args.Substring == "" {
		return Failure("substring parameter required")
	}

	matches, err := s.FS.SearchWithinFiles(ctx, args.Path, args.Substring, args.Depth, args.MaxResults)
	if err != nil {
		return FromError(err)
	}

	limit := args.MaxResults
	if limit == 0 {
		limit = s.FS.Limits().DefaultMaxResults
	}
	return Success(map[string]interface{}{
		"path":      args.Path,
		"matches":   matches,
		"count":     len(matches),
		"truncated": len(matches) >= limit,
	})
}

// GetFileInfo returns entry metadata
func (s *SearchOps) GetFileInfo(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args pathArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}

	info, err := s.FS.GetFileInfo(ctx, args.Path)
	if err != nil {
		return FromError(err)
	}

	data := map[string]interface{}{
		"name":        info.Name,
		"path":        info.Path,
		"size":        info.Size,
		"size_human":  formatBytes(info.Size),
		"type":        string(info.Type),
		"mode":        info.Mode,
		"permissions": info.Permissions,
		"modified":    info.Modified,
		"accessed":    info.Accessed,
	}
	if info.Created != nil {
		data["created"] = *info.Created
	}
	if info.MimeType != "" {
		data["mime_type"] = info.MimeType
	}
	return Success(data)
}

// ListAllowedDirectories returns the configured roots
func (s *SearchOps) ListAllowedDirectories(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	dirs := s.FS.ListAllowedDirectories()
	return Success(map[string]interface{}{"directories": dirs, "count": len(dirs)})
}
