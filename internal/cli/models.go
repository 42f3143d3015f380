package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pre-msc-2027/remedy/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the Ollama server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := ollama.NewClient(cfg.Host)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(models) == 0 {
			fmt.Fprintln(os.Stdout, "No models installed.")
			return nil
		}

		fmt.Fprintln(os.Stdout, titleStyle.Render(fmt.Sprintf("Models on %s:", client.Host())))
		for _, m := range models {
			marker := "  "
			if m.Name == cfg.Model {
				marker = passStyle.Render("* ")
			}
			fmt.Fprintf(os.Stdout, "%s%-40s %s\n", marker, m.Name, dimStyle.Render(formatSize(m.Size)))
		}
		return nil
	},
}

func formatSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.0f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func init() {
	modelsCmd.Flags().StringVar(&flagHost, "host", "", "Ollama server URL")
	modelsCmd.Flags().StringVar(&flagModel, "model", "", "Model name to mark as selected")
}
