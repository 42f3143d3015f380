package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pre-msc-2027/remedy/internal/batch"
	"github.com/pre-msc-2027/remedy/internal/extract"
)

func sampleReport() *Report {
	res := &batch.Result[extract.Correction]{
		Items: []*extract.Correction{
			{IssueID: 1, File: "app.py", Line: 2, Original: "import unused_module", Fixed: ""},
			nil,
			{IssueID: 3, File: "app.py", Line: 9, Original: "print('x')", Fixed: "logging.info('x')"},
		},
		Attempted: 3,
		Succeeded: 2,
		Duration:  1500 * time.Millisecond,
	}
	return NewReport("llama3.1:latest", "/tmp/ws", res)
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
	}
	if _, err := GetWriter("yaml"); err == nil {
		t.Error("GetWriter(yaml) expected error")
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.Tool != "remedy" {
		t.Errorf("Tool = %q, want %q", parsed.Tool, "remedy")
	}
	if len(parsed.Corrections) != 3 {
		t.Fatalf("Corrections count = %d, want 3", len(parsed.Corrections))
	}
	if parsed.Corrections[1] != nil {
		t.Error("failed issue must round-trip as null")
	}
	if parsed.Corrections[0].Original != "import unused_module" {
		t.Errorf("Original = %q", parsed.Corrections[0].Original)
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"2/3 succeeded",
		"app.py:2",
		"import unused_module",
		"(removed)",
		"FAILED",
		"logging.info('x')",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTextWriter_Empty(t *testing.T) {
	report := NewReport("m", "", &batch.Result[extract.Correction]{
		Items: []*extract.Correction{nil}, Attempted: 1, Succeeded: 0,
	})
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "No corrections produced") {
		t.Errorf("empty report output: %s", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## Remedy Fix Report",
		"<details>",
		"app.py:2",
		"line removed",
		"1 issue(s) produced no correction",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}
