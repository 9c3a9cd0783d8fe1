// Package config loads redpen configuration by merging defaults, the
// JSON config file, environment variables, and CLI flag overrides.
package config
