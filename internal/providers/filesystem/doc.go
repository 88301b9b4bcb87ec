// Package filesystem exposes the sandboxed file operations as a service
// provider.
//
// This package is organized into operation groups:
//   - files: read, read many, write, copy, move, delete, modify
//   - directory: list, create, tree
//   - search: name search, content search, metadata, allowed roots
//
// All operations:
//   - Decode their loosely typed params into typed arguments
//   - Go through the sandbox, which rejects paths outside the allowed directories
//   - Report failures as results carrying an error kind, never as Go errors
//
// Binary file contents are returned base64 encoded with "encoding": "base64".
//
// Example Usage:
//
//	provider := filesystem.NewProvider(fsys, logger)
//	result, err := provider.Execute(ctx, "filesystem.read_file", map[string]interface{}{
//	    "path": "/data/notes.txt",
//	}, nil)
package filesystem
