// Package analyze runs the per-file review pipeline: read the source,
// cap its size, collect static findings, redact secrets, ask the model for
// an assessment, and write the result as a markdown report. Multi-file runs
// fan out through the batch runner.
package analyze
