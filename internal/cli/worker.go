package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/rules"
	"github.com/pre-msc-2027/remedy/internal/worker"
)

var (
	flagRepo      string
	flagBranch    string
	flagJobIssues string
	flagJobRules  string
)

var workerCmd = &cobra.Command{
	Use:   "worker --repo <url>",
	Short: "Run one repository analysis job",
	Long: "Worker clones the repository, gathers the files named in the " +
		"issue report, and asks the model for repo-wide recommendations. " +
		"This is the same job the serve API runs, without the HTTP layer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		params := worker.Params{
			RepoURL:   flagRepo,
			Branch:    flagBranch,
			OutputDir: cfg.OutputDir,
		}
		if flagJobIssues != "" {
			set, err := rules.LoadSet(flagJobIssues, flagJobRules)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			params.Issues = set.Issues
			params.Rules = collectRules(set)
		}

		w := &worker.Worker{
			Client: ollama.NewClient(cfg.Host),
			Config: &cfg,
		}
		summary, err := w.Run(context.Background(), params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "%s %s at %s\n", passStyle.Render("Analyzed"), summary.RepoURL, summary.Commit[:min(12, len(summary.Commit))])
		fmt.Fprintf(os.Stdout, "  files scanned: %d, issues: %d\n", summary.FilesScanned, summary.IssueCount)
		if summary.ReportPath != "" {
			fmt.Fprintf(os.Stdout, "  %s\n", dimStyle.Render("Report: "+summary.ReportPath))
		}
		return nil
	},
}

// collectRules gathers each rule referenced by the issue set once, in issue
// order.
func collectRules(set *rules.Set) []rules.Rule {
	var out []rules.Rule
	seen := map[int]bool{}
	for _, issue := range set.Issues {
		if rule, ok := set.RuleFor(issue); ok && !seen[rule.RuleID] {
			seen[rule.RuleID] = true
			out = append(out, rule)
		}
	}
	return out
}

func init() {
	addPipelineFlags(workerCmd)
	workerCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository URL to clone (required)")
	workerCmd.Flags().StringVar(&flagBranch, "branch", "", "Branch to analyze (default: remote default)")
	workerCmd.Flags().StringVar(&flagJobIssues, "issues", "", "Issue report JSON file")
	workerCmd.Flags().StringVar(&flagJobRules, "rules", "", "Rule definitions JSON file")
	workerCmd.MarkFlagRequired("repo")
	workerCmd.MarkFlagsRequiredTogether("issues", "rules")
}
