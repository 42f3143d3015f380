package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pre-msc-2027/remedy/internal/batch"
	"github.com/pre-msc-2027/remedy/internal/cache"
	"github.com/pre-msc-2027/remedy/internal/config"
	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/redact"
	"github.com/pre-msc-2027/remedy/internal/static"
	"github.com/pre-msc-2027/remedy/internal/workspace"
)

// truncationMarker is appended to content that was cut at the size ceiling
// so the model knows the file continues.
const truncationMarker = "\n... (truncated)"

// Truncate caps content at limit characters, appending the truncation
// marker when anything was cut. Content at or under the limit is returned
// unchanged.
func Truncate(content string, limit int) (string, bool) {
	if limit <= 0 || len(content) <= limit {
		return content, false
	}
	return content[:limit] + truncationMarker, true
}

// Report is the outcome of analyzing one file.
type Report struct {
	Path       string         `json:"path"`
	Model      string         `json:"model"`
	Issues     []static.Issue `json:"issues,omitempty"`
	Response   string         `json:"response"`
	Truncated  bool           `json:"truncated"`
	FromCache  bool           `json:"fromCache"`
	OutputPath string         `json:"outputPath,omitempty"`
}

// Analyzer wires the analysis pipeline together.
type Analyzer struct {
	Client ollama.Chatter
	Config *config.Config
	Cache  *cache.Cache
	Logger *slog.Logger

	// Stream, when set, receives content fragments as they arrive. It only
	// applies to single-file runs; batch runs always buffer.
	Stream ollama.ChunkFunc
}

// File analyzes a single file inside the workspace and writes the markdown
// report when an output directory is configured.
func (a *Analyzer) File(ctx context.Context, ws *workspace.Workspace, path string) (*Report, error) {
	logger := a.logger()

	content, err := ws.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, truncated := Truncate(content, a.Config.MaxContentBytes)
	if truncated {
		logger.Warn("content truncated", "file", path, "limit", a.Config.MaxContentBytes)
	}

	issues := static.Analyze(path, content)
	report := &Report{
		Path:      path,
		Model:     a.Config.Model,
		Issues:    issues,
		Truncated: truncated,
	}

	// Nothing flagged means nothing to ask the model about.
	if len(issues) == 0 {
		logger.Info("no issues detected", "file", path)
		report.Response = "No issues detected."
		return report, nil
	}

	if a.Config.Privacy.RedactSecrets {
		content = redact.Secrets(content)
	}
	prompt := buildPrompt(path, content, issues)

	key := cache.BuildKey(a.Config.Host, a.Config.Model, prompt)
	if cached, ok := a.Cache.Get(key); ok {
		logger.Info("cache hit", "file", path)
		report.Response = cached
		report.FromCache = true
	} else {
		req := ollama.ChatRequest{
			Model: a.Config.Model,
			Messages: []ollama.Message{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
		}
		var resp ollama.ChatResponse
		if a.Stream != nil {
			resp, err = a.Client.ChatStream(ctx, req, a.Stream)
		} else {
			resp, err = a.Client.Chat(ctx, req)
		}
		if err != nil {
			return nil, fmt.Errorf("analyzing %s: %w", path, err)
		}
		report.Response = resp.Content
		if resp.Model != "" {
			report.Model = resp.Model
		}
		if err := a.Cache.Put(key, report.Model, resp.Content); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}

	if a.Config.OutputDir != "" {
		out, err := saveReport(a.Config.OutputDir, report)
		if err != nil {
			return nil, err
		}
		report.OutputPath = out
		logger.Info("report written", "file", path, "output", out)
	}
	return report, nil
}

// Files analyzes paths concurrently and returns position-aligned results;
// a failed file leaves a nil slot without stopping the rest.
func (a *Analyzer) Files(ctx context.Context, ws *workspace.Workspace, paths []string) (*batch.Result[Report], error) {
	runner := &batch.Runner[string, Report]{
		Concurrency: a.Config.Concurrency,
		ItemTimeout: time.Duration(a.Config.TimeoutSeconds) * time.Second,
		Logger:      a.logger(),
		Label:       func(p string) string { return p },
	}
	buffered := &Analyzer{
		Client: a.Client,
		Config: a.Config,
		Cache:  a.Cache,
		Logger: a.Logger,
	}
	return runner.Run(ctx, paths, func(ctx context.Context, path string) (*Report, error) {
		return buffered.File(ctx, ws, path)
	})
}

const systemPrompt = "You are an expert code reviewer. Analyze the provided " +
	"source file for bugs, security issues, and maintainability problems. " +
	"Be specific: reference line numbers and quote the offending code."

func buildPrompt(path, content string, issues []static.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following file: %s\n\n", path)

	if len(issues) > 0 {
		b.WriteString("Static analysis already flagged these issues:\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "- line %d [%s/%s] %s\n", issue.Line, issue.Type, issue.Severity, issue.Message)
		}
		b.WriteString("\nConfirm or refute each, then look for anything it missed.\n")
	}

	fmt.Fprintf(&b, "\n```\n%s\n```\n", content)
	return b.String()
}

func saveReport(dir string, report *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	base := filepath.Base(report.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_analysis_%s.md", stem, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis: %s\n\n", report.Path)
	fmt.Fprintf(&b, "- Model: %s\n", report.Model)
	fmt.Fprintf(&b, "- Date: %s\n", time.Now().Format(time.RFC3339))
	if report.Truncated {
		b.WriteString("- Content was truncated before analysis\n")
	}
	if len(report.Issues) > 0 {
		b.WriteString("\n## Static findings\n\n")
		for _, issue := range report.Issues {
			fmt.Fprintf(&b, "- line %d [%s/%s] %s\n", issue.Line, issue.Type, issue.Severity, issue.Message)
		}
	}
	b.WriteString("\n## Model analysis\n\n")
	b.WriteString(report.Response)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
