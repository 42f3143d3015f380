package output

import (
	"fmt"
	"io"
	"os"

	"github.com/pre-msc-2027/remedy/internal/batch"
	"github.com/pre-msc-2027/remedy/internal/extract"
)

// Report is the aggregate outcome of one fix run. Corrections is aligned
// with the input issue order; failed issues are nil entries.
type Report struct {
	Tool        string                `json:"tool"`
	Model       string                `json:"model"`
	Workspace   string                `json:"workspace,omitempty"`
	Attempted   int                   `json:"attempted"`
	Succeeded   int                   `json:"succeeded"`
	DurationMs  int64                 `json:"durationMs"`
	Corrections []*extract.Correction `json:"corrections"`
}

// NewReport builds a Report from a completed fix batch.
func NewReport(model, workspace string, res *batch.Result[extract.Correction]) *Report {
	return &Report{
		Tool:        "remedy",
		Model:       model,
		Workspace:   workspace,
		Attempted:   res.Attempted,
		Succeeded:   res.Succeeded,
		DurationMs:  res.Duration.Milliseconds(),
		Corrections: res.Items,
	}
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}
