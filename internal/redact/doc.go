// Package redact strips likely secrets from source content before it is
// included in a model prompt. Patterns are heuristics; redaction is
// best-effort, not a guarantee.
package redact
