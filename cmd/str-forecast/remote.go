package main

import (
	"fmt"
	"time"

	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/pkg/client"
	"github.com/iwvelando/str-forecast/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRemoteCmd(opts *rootOptions) *cobra.Command {
	var (
		serverURL string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Use a running str-forecast server",
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the server")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")

	var optimize bool
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the configured property on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := opts.loadProperty()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			outputFormat, err := opts.resolveOutputFormat(conf)
			if err != nil {
				return err
			}

			resp, err := client.NewClient(serverURL, timeout).Simulate(cmd.Context(), conf.Property, optimize)
			if err != nil {
				return fmt.Errorf("remote simulation failed: %w", err)
			}
			logger.Debug("remote simulation finished",
				zap.String("op", "main.remoteSimulate"),
				zap.String("server", serverURL),
				zap.String("duration", resp.Duration),
			)
			logWarnings(logger, resp.Forecast.Warnings)

			return output.Write(cmd.OutOrStdout(), outputFormat, []forecast.Forecast{resp.Forecast})
		},
	}
	simulateCmd.Flags().BoolVar(&optimize, "optimize", false, "search for the occupancy that reaches the target monthly profit")

	cmd.AddCommand(simulateCmd)
	return cmd
}
