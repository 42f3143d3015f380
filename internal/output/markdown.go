package output

import (
	"io"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("## Remedy Fix Report\n\n")
	ew.printf("**Model:** %s  \n", report.Model)
	ew.printf("**Corrections:** %d/%d succeeded in %.1fs\n\n",
		report.Succeeded, report.Attempted, float64(report.DurationMs)/1000)

	if report.Succeeded == 0 {
		ew.println("No corrections produced.")
		return ew.err
	}

	for _, c := range report.Corrections {
		if c == nil {
			continue
		}
		ew.printf("<details>\n<summary><code>%s:%d</code> — issue %d</summary>\n\n",
			c.File, c.Line, c.IssueID)
		ew.printf("**Original:**\n\n```\n%s\n```\n\n", c.Original)
		if c.Fixed == "" {
			ew.println("**Fixed:** line removed")
		} else {
			ew.printf("**Fixed:**\n\n```\n%s\n```\n", c.Fixed)
		}
		ew.printf("\n</details>\n\n")
	}

	failed := report.Attempted - report.Succeeded
	if failed > 0 {
		ew.printf("_%d issue(s) produced no correction._\n", failed)
	}
	return ew.err
}
