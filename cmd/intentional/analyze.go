package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"intentional/internal/gateway/app"
	"intentional/internal/gateway/config"
	"intentional/internal/render"
	"intentional/internal/types"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		fake bool
		html bool
		out  string
	)
	cmd := &cobra.Command{
		Use:   "analyze [submission.json|-]",
		Short: "Run the generation pipeline on one submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if fake {
				cfg.LLM.Provider = config.ProviderFake
			}

			var sub types.Submission
			if err := readJSON(cmd, args[0], &sub); err != nil {
				return err
			}
			client, err := app.NewGenerationClient(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			orch, _ := app.NewPipeline(cfg, client, logger)
			report, err := orch.Run(cmd.Context(), sub)
			if err != nil {
				return err
			}

			var body []byte
			if html {
				body, err = render.ReportHTML(report)
			} else {
				body, err = json.MarshalIndent(report, "", "  ")
				body = append(body, '\n')
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, body)
		},
	}
	cmd.Flags().BoolVar(&fake, "fake", false, "use the deterministic offline client")
	cmd.Flags().BoolVar(&html, "html", false, "render the report as HTML")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// readJSON decodes path, or stdin for "-", into dst.
func readJSON(cmd *cobra.Command, path string, dst any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, path string, body []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
