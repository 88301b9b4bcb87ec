// Package service provides the service registry that routes tool calls to
// providers.
//
// The registry maintains a catalog of service providers and dispatches a
// tool ID such as "filesystem.read_file" to the provider whose ID is the
// part before the first ".".
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//
// Features:
//   - Thread-safe service registration
//   - Category-based filtering
//   - Intent-based discovery with scoring
//   - Tool execution with context passing
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(filesystemProvider)
//	result, err := registry.Execute(ctx, "filesystem.read_file", params, appCtx)
package service
