package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labnwb/internal/batch"
	"labnwb/internal/session"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var overwrite string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Discover and convert every session under the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Conversion.Workers = workers
			}
			if overwrite != "" {
				cfg.Conversion.Overwrite = strings.ToLower(strings.TrimSpace(overwrite))
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			doc, err := ctx.loadMetadata()
			if err != nil {
				return err
			}

			sessions, err := session.Discover(cfg.Paths.DataDir, cfg.Conversion.SessionPattern, doc)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				return fmt.Errorf("no sessions found under %s", cfg.Paths.DataDir)
			}

			summary, err := batch.NewRunner(cfg, doc, logger).Run(cmd.Context(), sessions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s finished: %d converted, %d skipped, %d failed\n",
				summary.RunID, summary.Converted, summary.Skipped, summary.Failed)
			for _, outcome := range summary.Outcomes {
				switch {
				case outcome.Skipped:
					fmt.Fprintf(out, "  skip %s\n", outcome.Session)
				case outcome.Err != nil:
					fmt.Fprintf(out, "  fail %s: %v\n", outcome.Session, outcome.Err)
				default:
					fmt.Fprintf(out, "  ok   %s -> %s\n", outcome.Session, outcome.Output)
				}
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d session(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel session conversions (defaults to configuration)")
	cmd.Flags().StringVar(&overwrite, "overwrite", "", "Existing-output policy: fail or replace")
	return cmd
}
