package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pre-msc-2027/remedy/internal/analyze"
	"github.com/pre-msc-2027/remedy/internal/cache"
	"github.com/pre-msc-2027/remedy/internal/config"
	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/workspace"
)

// Shared pipeline flags
var (
	flagHost        string
	flagModel       string
	flagConcurrency int
	flagTimeout     int
	flagOutputDir   string
	flagWorkspace   string
	flagNoRedact    bool
	flagNoCache     bool
	flagStream      bool
)

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagHost, "host", "", "Ollama server URL")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum concurrent model calls")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Per-item timeout in seconds")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for generated reports")
	cmd.Flags().StringVar(&flagWorkspace, "workspace", "", "Workspace root (default: current directory)")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Skip the response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagHost != "" {
		m["host"] = flagHost
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagConcurrency > 0 {
		m["concurrency"] = fmt.Sprintf("%d", flagConcurrency)
	}
	if flagTimeout > 0 {
		m["timeoutSeconds"] = fmt.Sprintf("%d", flagTimeout)
	}
	if flagOutputDir != "" {
		m["outputDir"] = flagOutputDir
	}
	if flagWorkspace != "" {
		m["workspace"] = flagWorkspace
	}
	return m
}

// loadConfig builds the effective config with flag adjustments applied.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return config.Config{}, err
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func openWorkspace(cfg config.Config) (*workspace.Workspace, error) {
	root := cfg.Workspace
	if root == "" {
		root = "."
	}
	return workspace.New(root)
}

func openCache(cfg config.Config) (*cache.Cache, error) {
	return cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze source files with the model",
	Long: "Analyze one or more files: static checks run first, then the model " +
		"reviews each file. Reports are written as markdown when --output-dir " +
		"is set. Multiple files are analyzed concurrently.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		c, err := openCache(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		analyzer := &analyze.Analyzer{
			Client: ollama.NewClient(cfg.Host),
			Config: &cfg,
			Cache:  c,
		}

		ctx := context.Background()
		if len(args) == 1 && flagStream {
			analyzer.Stream = func(chunk string) error {
				_, err := fmt.Fprint(os.Stdout, chunk)
				return err
			}
			report, err := analyzer.File(ctx, ws, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintln(os.Stdout)
			if report.OutputPath != "" {
				fmt.Fprintf(os.Stderr, "%s\n", dimStyle.Render("Report: "+report.OutputPath))
			}
			return nil
		}

		res, err := analyzer.Files(ctx, ws, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintln(os.Stdout, separatorLine)
		for i, report := range res.Items {
			if report == nil {
				fmt.Fprintf(os.Stdout, "  %s %s\n", failStyle.Render("FAIL"), args[i])
				continue
			}
			note := ""
			if report.FromCache {
				note = dimStyle.Render(" (cached)")
			}
			fmt.Fprintf(os.Stdout, "  %s %s%s\n", passStyle.Render("OK"), report.Path, note)
			if report.OutputPath != "" {
				fmt.Fprintf(os.Stdout, "       %s\n", dimStyle.Render(report.OutputPath))
			}
		}
		fmt.Fprintln(os.Stdout, separatorLine)
		fmt.Fprintln(os.Stdout, renderBatchSummary("Analysis", res.Succeeded, res.Attempted, res.Duration.Seconds()))

		if res.Succeeded < res.Attempted {
			exitCode = ExitPartial
		}
		return nil
	},
}

func init() {
	addPipelineFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&flagStream, "stream", false, "Stream the model response (single file only)")
}
