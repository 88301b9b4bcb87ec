// Package server wires the sandbox, the service registry and the HTTP API
// into a runnable server with gzip compression and graceful shutdown.
package server
