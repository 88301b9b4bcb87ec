// Package http exposes the service registry over a small JSON API.
//
//	GET  /                       status
//	GET  /health                 allowed directory count, registry stats, metrics summary
//	GET  /services               service definitions, optionally ?category=
//	GET  /services/tools/:id     one tool definition
//	POST /services/discover      rank services for a free-text query
//	POST /services/execute       run a tool: {"tool_id": "...", "params": {...}}
//	GET  /metrics                Prometheus exposition
//	GET  /metrics/summary        JSON summary
package http
