package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pre-msc-2027/remedy/internal/fix"
	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/output"
	"github.com/pre-msc-2027/remedy/internal/rules"
)

var (
	flagIssues string
	flagRules  string
	flagFormat string
	flagOut    string
)

var fixCmd = &cobra.Command{
	Use:   "fix --issues <issues.json> --rules <rules.json>",
	Short: "Generate corrections for reported rule violations",
	Long: "Fix reads a static-analysis issue report and its rule definitions, " +
		"asks the model for a correction per issue, and emits a report of " +
		"original/fixed pairs. Issues are processed concurrently; a failed " +
		"issue never aborts the rest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		set, err := rules.LoadSet(flagIssues, flagRules)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if set.Len() == 0 {
			fmt.Fprintln(os.Stderr, "No issues in report; nothing to fix.")
			return nil
		}
		ws, err := openWorkspace(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fixer := &fix.Fixer{
			Client: ollama.NewClient(cfg.Host),
			Config: &cfg,
		}
		res, err := fixer.All(context.Background(), ws, set)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		report := output.NewReport(cfg.Model, ws.Root(), res)
		if err := output.WriteReport(report, flagFormat, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintln(os.Stderr, renderBatchSummary("Fixes", res.Succeeded, res.Attempted, res.Duration.Seconds()))
		if res.Succeeded < res.Attempted {
			exitCode = ExitPartial
		}
		return nil
	},
}

func init() {
	addPipelineFlags(fixCmd)
	fixCmd.Flags().StringVar(&flagIssues, "issues", "", "Issue report JSON file (required)")
	fixCmd.Flags().StringVar(&flagRules, "rules", "", "Rule definitions JSON file (required)")
	fixCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format (text, json, markdown)")
	fixCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	fixCmd.MarkFlagRequired("issues")
	fixCmd.MarkFlagRequired("rules")
}
