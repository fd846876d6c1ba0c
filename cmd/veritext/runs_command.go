package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"veritext/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent training runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			list, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No training runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, run := range list {
				detail := run.ErrorDetail
				if run.Status == runs.StatusCompleted {
					detail = summarizeMetrics(run.MetricsJSON)
				}
				rows = append(rows, []string{
					run.ID,
					run.Mode,
					string(run.Status),
					run.CreatedAt.Local().Format(time.DateTime),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Mode", "Status", "Created", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
