package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veritext/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file to the default location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration file parses and passes validation",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = *ctx.configFlag
			}
			_, source, found, err := config.Load(path)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "No configuration file found; built-in defaults are valid")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration at %s is valid\n", source)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Data dir", cfg.Paths.DataDir},
					{"Model dir", cfg.Paths.ModelDir},
					{"Log dir", cfg.Paths.LogDir},
					{"API bind", cfg.Paths.APIBind},
					{"Seed", fmt.Sprintf("%d", cfg.Training.Seed)},
					{"Epochs", fmt.Sprintf("%d", cfg.Training.Epochs)},
					{"Batch size", fmt.Sprintf("%d", cfg.Training.BatchSize)},
					{"Learning rate", fmt.Sprintf("%g", cfg.Training.LearningRate)},
					{"Min text length", fmt.Sprintf("%d", cfg.Detection.MinTextLength)},
					{"Log level", cfg.LogLevel},
					{"Log format", cfg.LogFormat},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	})

	return cmd
}
