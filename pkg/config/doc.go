// Package config loads and validates the application configuration.
//
// Configuration is read from a YAML file, filled with defaults, and
// optionally overridden from SENTINEL_* environment variables. The
// resulting Config value is threaded explicitly into constructors at
// startup; there is no ambient global configuration.
//
// The loading sequence is:
//
//  1. Parse YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides (Load only)
//  4. Validate the final configuration
package config
