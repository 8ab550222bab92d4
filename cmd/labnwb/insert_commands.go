package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"labnwb/internal/spyglass"
)

func newInsertCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <file.nwb>",
		Short: "Insert one converted container into the analysis database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := spyglass.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.InsertFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			report, err := store.VerifyFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Inserted %s into %s\n", report.FileName, store.Path())
			printVerifyReport(cmd, report)
			return nil
		},
	}
}

func newInsertAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "insert-all",
		Short: "Insert every container in the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := spyglass.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.InsertAll(cmd.Context(), cfg.Paths.OutputDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Inserted %d container(s) into %s\n", result.Inserted, store.Path())
			if len(result.Failed) > 0 {
				names := make([]string, 0, len(result.Failed))
				for name := range result.Failed {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  fail %s: %v\n", name, result.Failed[name])
				}
				return fmt.Errorf("%d container(s) failed to insert", len(result.Failed))
			}
			return nil
		},
	}
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.nwb>",
		Short: "Re-check an inserted container against the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := spyglass.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := store.VerifyFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printVerifyReport(cmd, report)
			if !report.OK() {
				return fmt.Errorf("verification found %d problem(s)", len(report.Findings))
			}
			return nil
		},
	}
}

func printVerifyReport(cmd *cobra.Command, report *spyglass.VerifyReport) {
	out := cmd.OutOrStdout()
	if report.OK() {
		fmt.Fprintf(out, "Verification passed for %s\n", report.FileName)
		return
	}
	fmt.Fprintf(out, "Verification problems for %s:\n", report.FileName)
	for _, finding := range report.Findings {
		fmt.Fprintf(out, "  - %s\n", finding)
	}
}
