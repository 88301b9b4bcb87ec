// Package main is the entry point for the sandboxed filesystem server.
//
// Every file operation is confined to the allowed directories given on
// the command line, in ALLOWED_DIRS, or in the config file. The server
// refuses to start without at least one.
//
// Usage:
//
//	fsserver [flags] <allowed-directory> [additional-directories...]
//
//	# Serve two project trees on port 9000 with debug logs
//	fsserver -port 9000 -log-level debug ~/src /srv/shared
//
//	# Read settings from a file
//	fsserver -config fsserver.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
