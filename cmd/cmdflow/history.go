/*
Copyright © 2026 Cristian Oliveira <license@cristianoliveira.dev>
*/
package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cristianoliveira/cmdflow/internal/app"
	"github.com/cristianoliveira/cmdflow/internal/colors"
	"github.com/cristianoliveira/cmdflow/internal/journal"
	"github.com/cristianoliveira/cmdflow/internal/logging"
	"github.com/spf13/cobra"
)

const historyCommandLong = `Show recorded executions, newest first.

Every command run and every executed wizard page is recorded in the
execution journal unless journal_enabled is false. Pages of one wizard run
share a run id.

OPTIONS:
    -n, --limit <count>   Number of executions to show (default 10)
    --run <id>            Show the pages of one run in execution order
    --prune <keep>        Delete all but the newest <keep> executions`

// NewHistoryCmd creates the history command with explicit dependencies.
func NewHistoryCmd(deps cliDeps) *cobra.Command {
	if deps.openJournal == nil {
		panic("NewHistoryCmd: journal dependency cannot be nil")
	}

	var (
		limit int
		runID string
		keep  int
	)
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded executions",
		Long:  historyCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jr, closeJournal, err := deps.openJournal()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeJournal(); err != nil {
					logging.GetGlobal().Warn("history: close journal failed", "error", err.Error())
				}
			}()
			uc := app.NewHistoryUseCase(jr)
			ctx := contextOf(cmd)

			if cmd.Flags().Changed("prune") {
				removed, err := uc.Prune(ctx, keep)
				if err != nil {
					return err
				}
				colors.Success(fmt.Sprintf("removed %d execution(s)", removed))
				return nil
			}

			var entries []journal.Entry
			if runID != "" {
				entries, err = uc.Run(ctx, runID)
			} else {
				entries, err = uc.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				colors.Info("no executions recorded")
				return nil
			}
			return writeEntries(cmd.OutOrStdout(), entries)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of executions to show")
	historyCmd.Flags().StringVar(&runID, "run", "", "Show the pages of one run")
	historyCmd.Flags().IntVar(&keep, "prune", 0, "Delete all but the newest executions")
	historyCmd.MarkFlagsMutuallyExclusive("run", "prune")
	return historyCmd
}

func writeEntries(w io.Writer, entries []journal.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tRUN\tCOMMAND\tSTATUS\tDETAIL")
	for _, e := range entries {
		detail := e.Message
		if e.Error != "" {
			detail = e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.FinishedAt.Local().Format("2006-01-02 15:04:05"), e.RunID, e.Command, e.Status, detail)
	}
	return tw.Flush()
}
