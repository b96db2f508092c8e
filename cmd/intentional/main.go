// Command intentional scores free-model strategies with the DEEP rubric.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"intentional/internal/gateway/config"
	"intentional/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "intentional",
		Short: "DEEP free-model strategy analyzer",
		Long: `intentional assesses a product's free model against the DEEP rubric
(Desirable, Effective, Efficient, Polished).

Run "serve" for the HTTP API, "analyze" for a one-off generation-backed
report, or "quiz" for the deterministic heuristic scorer.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newQuizCmd(), newQuestionsCmd())
	return root
}

// setup loads configuration and builds the logger every command shares.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	format := cfg.Log.Format
	if format == "" {
		format = logging.FormatFor(cfg.Env)
	}
	logger, err := logging.New(cfg.Log.Level, format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
