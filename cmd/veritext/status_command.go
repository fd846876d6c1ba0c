package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"veritext/internal/artifacts"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and model status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			daemonState := "not running"
			modelState := "not trained"

			client := &http.Client{Timeout: 3 * time.Second}
			resp, err := client.Get("http://" + cfg.Paths.APIBind + "/api/health")
			if err == nil {
				defer resp.Body.Close() //nolint:errcheck
				var health struct {
					Running    bool `json:"running"`
					PID        int  `json:"pid"`
					ModelReady bool `json:"model_ready"`
					Features   int  `json:"features"`
				}
				if decodeErr := json.NewDecoder(resp.Body).Decode(&health); decodeErr == nil && health.Running {
					daemonState = fmt.Sprintf("running (pid %d)", health.PID)
					if health.ModelReady {
						modelState = fmt.Sprintf("loaded (%d features)", health.Features)
					}
				}
			} else if _, loadErr := artifacts.Load(cfg.Paths.ModelDir); loadErr == nil {
				// No daemon, but a trained bundle exists on disk.
				modelState = "trained (daemon not running)"
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Component", "State"},
				[][]string{
					{"Daemon", daemonState},
					{"Model", modelState},
					{"API", cfg.Paths.APIBind},
					{"Model dir", cfg.Paths.ModelDir},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
