package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pre-msc-2027/remedy/internal/analyze"
	"github.com/pre-msc-2027/remedy/internal/config"
	"github.com/pre-msc-2027/remedy/internal/gitops"
	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/redact"
	"github.com/pre-msc-2027/remedy/internal/rules"
	"github.com/pre-msc-2027/remedy/internal/workspace"
)

const (
	// maxIssueFileChars caps each issue file's content in the prompt. The
	// repo prompt carries several files, so the cap is tighter than the
	// single-file analysis ceiling.
	maxIssueFileChars = 50000

	// maxStructureEntries caps the tree listing in the prompt.
	maxStructureEntries = 200

	// maxPromptIssues caps how many report issues go into the prompt.
	maxPromptIssues = 20
)

// Params describes one repository analysis job.
type Params struct {
	RepoURL   string        `json:"repo_url"`
	Branch    string        `json:"branch,omitempty"`
	Issues    []rules.Issue `json:"issues,omitempty"`
	Rules     []rules.Rule  `json:"rules,omitempty"`
	OutputDir string        `json:"output_dir,omitempty"`
}

// Summary is the machine-readable outcome of a job.
type Summary struct {
	RepoURL      string    `json:"repo_url"`
	Branch       string    `json:"branch,omitempty"`
	Commit       string    `json:"commit"`
	Model        string    `json:"model"`
	FilesScanned int       `json:"files_scanned"`
	IssueCount   int       `json:"issue_count"`
	ReportPath   string    `json:"report_path,omitempty"`
	SummaryPath  string    `json:"summary_path,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Worker executes repository analysis jobs.
type Worker struct {
	Client ollama.Chatter
	Config *config.Config
	Logger *slog.Logger
}

// Run clones the repository, collects the files the issue report names,
// asks the model for recommendations, and writes the report files.
func (w *Worker) Run(ctx context.Context, params Params) (*Summary, error) {
	logger := w.logger()

	cloneDir, err := os.MkdirTemp("", "remedy-clone-*")
	if err != nil {
		return nil, fmt.Errorf("creating clone directory: %w", err)
	}
	defer os.RemoveAll(cloneDir)

	logger.Info("cloning repository", "url", params.RepoURL, "branch", params.Branch)
	commit, err := gitops.Clone(ctx, cloneDir, gitops.CloneOptions{
		URL:    params.RepoURL,
		Branch: params.Branch,
	})
	if err != nil {
		return nil, err
	}

	ws, err := workspace.New(cloneDir)
	if err != nil {
		return nil, err
	}

	structure := scanStructure(cloneDir)
	set := rules.NewSet(params.Issues, params.Rules)
	prompt := w.buildPrompt(ws, params, set, structure)

	resp, err := w.Client.Chat(ctx, ollama.ChatRequest{
		Model: w.Config.Model,
		Messages: []ollama.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing repository: %w", err)
	}

	summary := &Summary{
		RepoURL:      params.RepoURL,
		Branch:       params.Branch,
		Commit:       commit,
		Model:        w.Config.Model,
		FilesScanned: structure.Total,
		IssueCount:   len(params.Issues),
		CompletedAt:  time.Now(),
	}

	outDir := params.OutputDir
	if outDir == "" {
		outDir = w.Config.OutputDir
	}
	if outDir != "" {
		if err := writeResults(outDir, resp.Content, summary); err != nil {
			return nil, err
		}
		logger.Info("job results written", "report", summary.ReportPath)
	}
	return summary, nil
}

const systemPrompt = "You are a senior engineer reviewing a repository " +
	"against a static-analysis report. Recommend concrete remediations, " +
	"grouped by file, and call out any systemic problems the report implies."

func (w *Worker) buildPrompt(ws *workspace.Workspace, params Params, set *rules.Set, structure Structure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", params.RepoURL)
	if params.Branch != "" {
		fmt.Fprintf(&b, "Branch: %s\n", params.Branch)
	}

	fmt.Fprintf(&b, "\nFile types: %s\n", structure.extensionSummary())
	b.WriteString("\nRepository structure:\n")
	for _, entry := range structure.Paths {
		fmt.Fprintf(&b, "  %s\n", entry)
	}

	issues := params.Issues
	if len(issues) > maxPromptIssues {
		fmt.Fprintf(&b, "\n(showing the first %d of %d reported issues)\n", maxPromptIssues, len(issues))
		issues = issues[:maxPromptIssues]
	}
	capped := rules.NewSet(issues, params.Rules)

	files := issueFiles(issues)
	for _, file := range files {
		fmt.Fprintf(&b, "\n## File: %s\n\nReported issues:\n", file)
		for _, issue := range capped.IssuesByFile(file) {
			if rule, ok := set.RuleFor(issue); ok {
				fmt.Fprintf(&b, "- line %d: %s — %s\n", issue.Line, rule.Name, rule.Description)
			} else {
				fmt.Fprintf(&b, "- line %d: rule %d\n", issue.Line, issue.RuleID)
			}
		}

		content, err := ws.ReadFile(file)
		if err != nil {
			fmt.Fprintf(&b, "\n(content unavailable: %v)\n", err)
			continue
		}
		content, _ = analyze.Truncate(content, maxIssueFileChars)
		if w.Config.Privacy.RedactSecrets {
			content = redact.Secrets(content)
		}
		fmt.Fprintf(&b, "\n```\n%s\n```\n", content)
	}

	b.WriteString("\nProvide your recommendations.")
	return b.String()
}

// issueFiles returns the distinct file paths in report order.
func issueFiles(issues []rules.Issue) []string {
	seen := make(map[string]bool)
	var out []string
	for _, issue := range issues {
		if !seen[issue.File] {
			seen[issue.File] = true
			out = append(out, issue.File)
		}
	}
	return out
}

// Structure summarizes the cloned tree for the prompt.
type Structure struct {
	Paths      []string       // capped sorted listing relative to root
	Total      int            // total file count before capping
	Extensions map[string]int // file counts by extension
}

func (s Structure) extensionSummary() string {
	exts := make([]string, 0, len(s.Extensions))
	for ext := range s.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%s: %d", ext, s.Extensions[ext]))
	}
	return strings.Join(parts, ", ")
}

// scanStructure walks the clone, skipping .git.
func scanStructure(root string) Structure {
	s := Structure{Extensions: make(map[string]int)}
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		s.Paths = append(s.Paths, rel)
		ext := filepath.Ext(rel)
		if ext == "" {
			ext = "(none)"
		}
		s.Extensions[ext]++
		return nil
	})
	sort.Strings(s.Paths)
	s.Total = len(s.Paths)
	if len(s.Paths) > maxStructureEntries {
		s.Paths = s.Paths[:maxStructureEntries]
	}
	return s
}

func writeResults(dir, response string, summary *Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")

	reportPath := filepath.Join(dir, fmt.Sprintf("repo_analysis_%s.md", stamp))
	var b strings.Builder
	fmt.Fprintf(&b, "# Repository Analysis: %s\n\n", summary.RepoURL)
	fmt.Fprintf(&b, "- Commit: %s\n", summary.Commit)
	fmt.Fprintf(&b, "- Model: %s\n", summary.Model)
	fmt.Fprintf(&b, "- Issues in report: %d\n\n", summary.IssueCount)
	b.WriteString("## Recommendations\n\n")
	b.WriteString(response)
	b.WriteString("\n")
	if err := os.WriteFile(reportPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	summary.ReportPath = reportPath

	summaryPath := filepath.Join(dir, fmt.Sprintf("summary_%s.json", stamp))
	summary.SummaryPath = summaryPath
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
