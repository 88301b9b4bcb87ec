// Package sandbox confines file and directory operations to a fixed set of
// allowed root directories.
//
// Every caller-supplied path goes through a Resolver before the filesystem
// is touched. The resolver expands "~", makes the path absolute, evaluates
// symlinks for the part of the path that exists and checks the result
// against the AllowList. A path that resolves outside every root fails
// with KindAccessDenied and the fixed message
//
//	access denied - path outside allowed directories
//
// regardless of where it points, so callers learn nothing about the
// filesystem outside the sandbox.
//
// Operations return *Error values carrying a stable Kind. Nothing is
// cached between calls and the only shared state is the immutable
// AllowList, so an FS is safe for concurrent use. Walks are iterative and
// observe context cancellation between entries.
package sandbox
