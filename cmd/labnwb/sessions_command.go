package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"labnwb/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List discovered sessions and their skip status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
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

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintf(out, "No sessions found under %s\n", cfg.Paths.DataDir)
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, sess := range sessions {
				status := "ready"
				switch {
				case sess.SkipReason != "":
					status = "skip: " + sess.SkipReason
				case sess.RecFile == "":
					status = "missing .rec"
				}
				rows = append(rows, []string{
					sess.Name(),
					strconv.Itoa(len(sess.Epochs)),
					yesNo(sess.DIODir != ""),
					yesNo(sess.LFPDir != ""),
					yesNo(sess.SortingDir != ""),
					status,
				})
			}

			headers := []string{"Session", "Epochs", "DIO", "LFP", "Sorting", "Status"}
			if isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Fprintln(out, renderTable(headers, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
			} else {
				fmt.Fprintln(out, strings.Join(headers, "\t"))
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
