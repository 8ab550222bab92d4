package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labnwb/internal/convert"
	"labnwb/internal/session"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var overwrite string

	cmd := &cobra.Command{
		Use:   "convert <session-dir>",
		Short: "Convert one session directory to a container file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if overwrite != "" {
				cfg.Conversion.Overwrite = strings.ToLower(strings.TrimSpace(overwrite))
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			doc, err := ctx.loadMetadata()
			if err != nil {
				return err
			}

			sess, err := session.FromDir(args[0], doc)
			if err != nil {
				return err
			}
			if sess.SkipReason != "" {
				return fmt.Errorf("session %s is on the skip list: %s", sess.Name(), sess.SkipReason)
			}

			result, err := convert.New(cfg, doc, sess, logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %s\n", sess.Name())
			fmt.Fprintf(out, "  output: %s\n", result.OutputPath)
			fmt.Fprintf(out, "  epochs: %d  events: %d  warnings: %d\n",
				result.EpochCount, result.EventCount, len(result.Warnings))
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&overwrite, "overwrite", "", "Existing-output policy: fail or replace")
	return cmd
}
