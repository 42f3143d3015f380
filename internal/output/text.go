package output

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("Remedy Fix Report — model %s\n", report.Model)
	if report.Workspace != "" {
		ew.printf("Workspace: %s\n", report.Workspace)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Corrections: %d/%d succeeded in %.1fs\n",
		report.Succeeded, report.Attempted, float64(report.DurationMs)/1000)
	ew.println(strings.Repeat("─", 60))

	if report.Succeeded == 0 {
		ew.println("\nNo corrections produced.")
		return ew.err
	}

	for i, c := range report.Corrections {
		if c == nil {
			ew.printf("\n  [%d] FAILED — no correction\n", i+1)
			continue
		}
		ew.printf("\n  [%d] %s:%d (issue %d)\n", i+1, c.File, c.Line, c.IssueID)
		ew.println("  Original:")
		for _, line := range indentLines(c.Original) {
			ew.println(line)
		}
		if c.Fixed == "" {
			ew.println("  Fixed: (removed)")
		} else {
			ew.println("  Fixed:")
			for _, line := range indentLines(c.Fixed) {
				ew.println(line)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func indentLines(text string) []string {
	raw := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		out[i] = "    " + line
	}
	return out
}
