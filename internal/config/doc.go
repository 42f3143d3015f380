// Package config loads the effective remedy configuration by merging
// defaults, the JSON config file, REMEDY_* environment variables, and CLI
// flag overrides, in that order of precedence.
package config
