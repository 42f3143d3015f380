// Package output formats fix-run reports for display or machine consumption.
//
// Three formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON report, corrections position-aligned
//     with the input issues (failed issues are null entries)
//   - markdown — collapsible per-correction sections for PR comments
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*Report]. [WriteReport] is a
// convenience helper that handles destination selection.
package output
