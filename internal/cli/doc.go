// Package cli implements the remedy command tree. Commands load the merged
// configuration, wire the Ollama client and cache, run the requested
// pipeline, and set a deterministic process exit code.
package cli
