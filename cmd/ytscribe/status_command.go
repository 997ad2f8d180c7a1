package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ytscribe/internal/queue"
)

const timeRound = time.Second

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var limitFlag int
	var clearFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show run history and summary counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if clearFlag {
				removed, err := store.ClearFinished(ctx)
				if err != nil {
					return fmt.Errorf("clear finished runs: %w", err)
				}
				fmt.Fprintf(out, "Removed %d finished runs\n", removed)
			}

			runs, err := store.List(ctx, limitFlag)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			summary, err := store.Health(ctx)
			if err != nil {
				return fmt.Errorf("summarize runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.RunID),
					string(run.Status),
					run.BaseName,
					truncate(run.URL, 48),
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(run.ErrorMessage, 40),
				})
			}
			table := renderTable(
				[]string{"Run", "Status", "Name", "URL", "Started", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(out, table)
			fmt.Fprintf(out, "Total %d: %d pending, %d processing, %d completed, %d failed\n",
				summary.Total, summary.Pending, summary.Processing, summary.Completed, summary.Failed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&clearFlag, "clear-finished", false, "Delete completed and failed runs first")
	return cmd
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 1 {
		return value[:max]
	}
	return value[:max-1] + "…"
}
