// Package config loads server configuration from defaults, an optional
// YAML or TOML file, and environment variables, in that order.
package config
