// Package types provides the data structures shared by the service
// registry, the providers and the HTTP layer.
//
// Core Types:
//   - Service: Service provider definition
//   - Tool: Service tool definition
//   - Parameter: Tool parameter description
//   - Context: Per-request execution context
//   - Result: Standard operation result
//
// Request Types:
//   - ExecuteRequest: Service tool execution
//   - DiscoverRequest: Query-based service lookup
//
// Example Usage:
//
//	result, err := registry.Execute(ctx, "filesystem.read_file", map[string]interface{}{
//	    "path": "/data/notes.txt",
//	}, nil)
package types
