package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/internal/scheduler"
	"github.com/iwvelando/str-forecast/internal/server"
	"github.com/iwvelando/str-forecast/internal/store"
	"github.com/iwvelando/str-forecast/pkg/format"
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newPropertyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property",
		Short: "Manage saved properties in the configured store",
	}
	cmd.AddCommand(
		newPropertySaveCmd(opts),
		newPropertyListCmd(opts),
		newPropertyShowCmd(opts),
		newPropertyDeleteCmd(opts),
		newPropertyReportCmd(opts),
	)
	return cmd
}

// openStore opens the store described by the server configuration.
func (o *rootOptions) openStore(ctx context.Context) (store.Store, *server.Config, *zap.Logger, error) {
	cfg, err := server.LoadConfig(o.serverConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := initializeLogger(cfg.Logging, o.logLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	st, err := store.New(ctx, cfg.Storage, logger.Named("store"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	return st, cfg, logger, nil
}

func newPropertySaveCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the property from --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
			}
			property := conf.Property
			if name != "" {
				property.Name = strings.TrimSpace(name)
			}
			if err := property.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			st, _, logger, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Save(ctx, property.Name, property.Snapshot()); err != nil {
				return err
			}
			logger.Info("property saved",
				zap.String("op", "main.propertySave"),
				zap.String("property", property.Name),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", property.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "save under this name instead of property.name")
	return cmd
}

func newPropertyListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved properties with their headline figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, logger, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			snapshots, err := st.LoadAll(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tROOMS\tMONTHLY PROFIT\tPAYBACK")
			for _, snap := range snapshots {
				property, err := config.PropertyFromSnapshot(snap)
				if err != nil {
					logger.Warn("skipping unreadable property",
						zap.String("op", "main.propertyList"),
						zap.String("property", snap.Name()),
						zap.Error(err),
					)
					continue
				}
				result, err := simulation.Compute(property.Costs, property.Rooms, property.Operations)
				if err != nil {
					fmt.Fprintf(w, "%s\t-\tinvalid\t-\n", property.Name)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", property.Name, result.TotalRoomCount, format.Yen(result.MonthlyProfit), result.Payback)
			}
			return w.Flush()
		},
	}
}

func newPropertyShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved property as a configuration document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, _, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			snapshots, err := st.LoadAll(ctx)
			if err != nil {
				return err
			}
			for _, snap := range snapshots {
				if snap.Name() != strings.TrimSpace(args[0]) {
					continue
				}
				property, err := config.PropertyFromSnapshot(snap)
				if err != nil {
					return err
				}
				encoder := yaml.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent(2)
				if err := encoder.Encode(config.Configuration{Property: property}); err != nil {
					return err
				}
				return encoder.Close()
			}
			return fmt.Errorf("property %q not found", args[0])
		},
	}
}

func newPropertyDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, _, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newPropertyReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write a CSV report of every saved property now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cfg, logger, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			// Only RunOnce is used here, so the schedule is not registered.
			sched, err := scheduler.New(logger.Named("scheduler"), st, scheduler.Config{Directory: cfg.Report.Directory})
			if err != nil {
				return err
			}
			path, err := sched.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
