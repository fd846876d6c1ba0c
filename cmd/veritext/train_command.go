package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veritext/internal/logging"
	"veritext/internal/runs"
	"veritext/internal/training"
)

func newTrainCommand(ctx *commandContext) *cobra.Command {
	var quick bool

	cmd := &cobra.Command{
		Use:   "train <corpus.csv>",
		Short: "Train the classifier on a labeled corpus and publish the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			store, err := runs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			trainer := training.New(cfg, store, logger)
			run, report, err := trainer.Run(cmd.Context(), args[0], quick)
			if err != nil {
				if run != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "run %s failed\n", run.ID)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s completed.\n\n", run.ID)
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Accuracy", fmt.Sprintf("%.4f", report.Accuracy)},
					{"Precision", fmt.Sprintf("%.4f", report.Precision)},
					{"Recall", fmt.Sprintf("%.4f", report.Recall)},
					{"F1", fmt.Sprintf("%.4f", report.F1)},
					{"ROC AUC", fmt.Sprintf("%.4f", report.ROCAUC)},
					{"Features", fmt.Sprintf("%d", report.Features)},
					{"Epochs", fmt.Sprintf("%d", report.EpochsRun)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&quick, "quick", false, "Subsample the corpus and run a short training schedule")
	return cmd
}
