package fix

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pre-msc-2027/remedy/internal/batch"
	"github.com/pre-msc-2027/remedy/internal/config"
	"github.com/pre-msc-2027/remedy/internal/extract"
	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/redact"
	"github.com/pre-msc-2027/remedy/internal/rules"
	"github.com/pre-msc-2027/remedy/internal/workspace"
)

const systemPrompt = "You are an automated code-fixing assistant. You will " +
	"be given a coding-standard violation and the source lines around it. " +
	"Respond with ONLY a JSON object with two keys: \"original\" (the exact " +
	"problematic code) and \"fixed\" (the corrected code, or an empty string " +
	"to delete it). No other text."

// Fixer produces corrections for a loaded issue set.
type Fixer struct {
	Client ollama.Chatter
	Config *config.Config
	Logger *slog.Logger
}

// Issue fixes one reported violation. The returned correction is tagged with
// the issue id, file, and line so it can be traced back to the report.
func (f *Fixer) Issue(ctx context.Context, ws *workspace.Workspace, set *rules.Set, issue rules.Issue) (*extract.Correction, error) {
	rule, ok := set.RuleFor(issue)
	if !ok {
		return nil, fmt.Errorf("issue %d: no rule with id %d", issue.ID, issue.RuleID)
	}

	snippet, err := ws.Snippet(issue.File, issue.Line, f.Config.ContextLines)
	if err != nil {
		return nil, fmt.Errorf("issue %d: %w", issue.ID, err)
	}
	if f.Config.Privacy.RedactSecrets {
		snippet = redact.Secrets(snippet)
	}

	resp, err := f.Client.Chat(ctx, ollama.ChatRequest{
		Model: f.Config.Model,
		Messages: []ollama.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(rule, issue, snippet)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("issue %d: %w", issue.ID, err)
	}

	correction, err := extract.ParseCorrection(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("issue %d: %w", issue.ID, err)
	}
	correction.IssueID = issue.ID
	correction.File = issue.File
	correction.Line = issue.Line
	return correction, nil
}

// All fixes every issue in the set concurrently. The result is positionally
// aligned with set.Issues; a failed issue leaves a nil slot.
func (f *Fixer) All(ctx context.Context, ws *workspace.Workspace, set *rules.Set) (*batch.Result[extract.Correction], error) {
	runner := &batch.Runner[rules.Issue, extract.Correction]{
		Concurrency: f.Config.Concurrency,
		ItemTimeout: time.Duration(f.Config.TimeoutSeconds) * time.Second,
		Logger:      f.Logger,
		Label: func(issue rules.Issue) string {
			return fmt.Sprintf("issue %d (%s:%d)", issue.ID, issue.File, issue.Line)
		},
	}
	return runner.Run(ctx, set.Issues, func(ctx context.Context, issue rules.Issue) (*extract.Correction, error) {
		return f.Issue(ctx, ws, set, issue)
	})
}

func buildPrompt(rule rules.Rule, issue rules.Issue, snippet string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rule: %s\n", rule.Name)
	if rule.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rule.Description)
	}
	if rule.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", rule.Language)
	}
	if len(rule.Parameters) > 0 {
		keys := make([]string, 0, len(rule.Parameters))
		for k := range rule.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Parameters:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", k, rule.Parameters[k])
		}
	}
	fmt.Fprintf(&b, "\nViolation at %s line %d.\n", issue.File, issue.Line)
	fmt.Fprintf(&b, "\nSource context:\n```\n%s\n```\n", snippet)
	b.WriteString("\nReturn the JSON object now.")
	return b.String()
}
