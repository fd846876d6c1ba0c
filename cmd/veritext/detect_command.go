package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"veritext/internal/detector"
	"veritext/internal/logging"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Classify text or a document as human or machine written",
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" && len(args) == 0 {
				return errors.New("provide text arguments or --file")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			svc := detector.New(cfg, logger)
			var result *detector.Result
			if filePath != "" {
				result, err = svc.DetectFile(cmd.Context(), filePath)
			} else {
				result, err = svc.Detect(cmd.Context(), strings.Join(args, " "))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Classification", result.Classification},
					{"AI probability", fmt.Sprintf("%.4f", result.AIProbability)},
					{"Human probability", fmt.Sprintf("%.4f", result.HumanProbability)},
					{"Confidence", result.Confidence},
					{"Confidence score", fmt.Sprintf("%.4f", result.ConfidenceScore)},
					{"Text length", fmt.Sprintf("%d", result.TextLength)},
					{"Word count", fmt.Sprintf("%d", result.WordCount)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Classify a document (txt, pdf, or docx) instead of inline text")
	return cmd
}
