package filesystem

import (
	"context"
	"encoding/base64"

	"github.com/GriffinCanCode/AgentOS/fsserver/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/fsserver/internal/shared/types"
)

// FileOps handles reading, writing and rearranging files
type FileOps struct {
	*FilesystemOps
}

// GetTools returns file operation tool definitions
func (f *FileOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "filesystem.read_file",
			Name:        "Read File",
			Description: "Read the complete contents of a file",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "filesystem.read_multiple_files",
			Name:        "Read Multiple Files",
			Description: "Read several files at once; a failure on one path does not affect the others",
			Parameters: []types.Parameter{
				{Name: "paths", Type: "array", Description: "File paths", Required: true},
			},
			Returns: "array",
		},
		{
			ID:          "filesystem.write_file",
			Name:        "Write File",
			Description: "Create a file or overwrite an existing one",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
				{Name: "content", Type: "string", Description: "File content", Required: true},
				{Name: "encoding", Type: "string", Description: "utf-8 (default) or base64", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.copy_file",
			Name:        "Copy File",
			Description: "Copy a file or directory tree",
			Parameters: []types.Parameter{
				{Name: "source", Type: "string", Description: "Source path", Required: true},
				{Name: "destination", Type: "string", Description: "Destination path", Required: true},
				{Name: "overwrite", Type: "boolean", Description: "Replace an existing destination", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "filesystem.move_file",
			Name:        "Move File",
			Description: "Move or rename a file or directory",
			Parameters: []types.Parameter{
				{Name: "source", Type: "string", Description: "Source path", Required: true},
				{Name: "destination", Type: "string", Description: "Destination path", Required: true},
				{Name: "overwrite", Type: "boolean", Description: "Replace an existing destination", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.delete_file",
			Name:        "Delete File",
			Description: "Delete a file or directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Path to delete", Required: true},
				{Name: "recursive", Type: "boolean", Description: "Delete non-empty directories", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "filesystem.modify_file",
			Name:        "Modify File",
			Description: "Find and replace text in a file",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "File path", Required: true},
				{Name: "find", Type: "string", Description: "Text or regular expression to find", Required: true},
				{Name: "replace", Type: "string", Description: "Replacement text", Required: true},
				{Name: "all_occurrences", Type: "boolean", Description: "Replace every match (default true); false replaces the first only", Required: false},
				{Name: "regex", Type: "boolean", Description: "Treat find as a regular expression", Required: false},
			},
			Returns: "object",
		},
	}
}

// ReadFile reads a whole file
func (f *FileOps) ReadFile(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args pathArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}

	content, err := f.FS.ReadFile(ctx, args.Path)
	if err != nil {
		return FromError(err)
	}
	return Success(contentData(content))
}

// ReadMultipleFiles reads every path independently
func (f *FileOps) ReadMultipleFiles(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args readMultipleArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if len(args.Paths) == 0 {
		return Failure("paths parameter required")
	}

	results := f.FS.ReadMultipleFiles(ctx, args.Paths)
	files := make([]map[string]interface{}, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			files = append(files, map[string]interface{}{
				"path":       r.Path,
				"success":    false,
				"error":      r.Err.Error(),
				"error_kind": string(sandbox.KindOf(r.Err)),
			})
			continue
		}
		entry := contentData(r.Content)
		entry["success"] = true
		files = append(files, entry)
	}

	return Success(map[string]interface{}{"files": files, "count": len(files), "failed": failed})
}

// WriteFile creates or overwrites a file
func (f *FileOps) WriteFile(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args writeArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}
	if _, ok := params["content"]; !ok {
		return Failure("content parameter required")
	}

	data := []byte(args.Content)
	switch args.Encoding {
	case "", "utf-8", "utf8", "text":
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(args.Content)
		if err != nil {
			return Failure("content is not valid base64")
		}
		data = decoded
	default:
		return Failure("unsupported encoding: " + args.Encoding)
	}

	if err := f.FS.WriteFile(ctx, args.Path, data); err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "written": true, "size": len(data)})
}

// CopyFile copies a file or directory tree
func (f *FileOps) CopyFile(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args transferArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Source == "" || args.Destination == "" {
		return Failure("source and destination parameters required")
	}

	stats, err := f.FS.CopyFile(ctx, args.Source, args.Destination, args.Overwrite)
	if err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{
		"source":        args.Source,
		"destination":   args.Destination,
		"files":         stats.Files,
		"directories":   stats.Directories,
		"symlinks":      stats.Symlinks,
		"skipped_links": stats.SkippedLinks,
		"bytes":         stats.Bytes,
	})
}

// MoveFile moves or renames a file or directory
func (f *FileOps) MoveFile(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args transferArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Source == "" || args.Destination == "" {
		return Failure("source and destination parameters required")
	}

	if err := f.FS.MoveFile(ctx, args.Source, args.Destination, args.Overwrite); err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"source": args.Source, "destination": args.Destination, "moved": true})
}

// DeleteFile deletes a file or directory
func (f *FileOps) DeleteFile(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args deleteArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}

	if err := f.FS.DeleteFile(ctx, args.Path, args.Recursive); err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "deleted": true})
}

// ModifyFile performs find and replace inside a file
func (f *FileOps) ModifyFile(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	var args modifyArgs
	if err := decode(params, &args); err != nil {
		return Failure(err.Error())
	}
	if args.Path == "" {
		return Failure("path parameter required")
	}
	if args.Find == "" {
		return Failure("find parameter required")
	}

	count, err := f.FS.ModifyFile(ctx, args.Path, args.Find, args.Replace, args.replaceAll(), args.Regex)
	if err != nil {
		return FromError(err)
	}
	return Success(map[string]interface{}{"path": args.Path, "replacements": count, "modified": count > 0})
}
