package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pre-msc-2027/remedy/internal/ollama"
	"github.com/pre-msc-2027/remedy/internal/server"
	"github.com/pre-msc-2027/remedy/internal/worker"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job orchestration API",
	Long: "Serve exposes the repository analysis worker over HTTP. Submit a " +
		"job with POST /improve-code and poll /status/{id} for the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w := &worker.Worker{
			Client: ollama.NewClient(cfg.Host),
			Config: &cfg,
		}
		run := func(ctx context.Context, params worker.Params, logf func(string, ...any)) (*worker.Summary, error) {
			logf("running analysis with model %s", cfg.Model)
			return w.Run(ctx, params)
		}

		srv := &http.Server{
			Addr:              flagAddr,
			Handler:           server.New(server.NewStore(), run, slog.Default()).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		fmt.Fprintf(os.Stderr, "remedy API listening on %s\n", flagAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	addPipelineFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Listen address")
}
