// Package config loads, validates, and normalizes the TOML configuration
// shared by the veritext CLI and daemon.
package config
