package main

import (
	"fmt"

	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var optimize bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the configured property",
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

			result, err := forecast.GetForecast(logger, *conf, forecast.Options{Optimize: optimize})
			if err != nil {
				logger.Error("failed to compute forecast",
					zap.String("op", "main.simulate"),
					zap.Error(err),
				)
				return fmt.Errorf("failed to compute forecast: %w", err)
			}
			logWarnings(logger, result.Warnings)

			return output.Write(cmd.OutOrStdout(), outputFormat, []forecast.Forecast{result})
		},
	}

	cmd.Flags().BoolVar(&optimize, "optimize", false, "search for the occupancy that reaches the target monthly profit")
	return cmd
}
