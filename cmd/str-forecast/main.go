package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath       string
	serverConfigPath string
	logLevel         string
	outputFormat     string
}

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "str-forecast",
		Short:         "Short-term-rental profitability simulator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to property configuration file")
	flags.StringVar(&opts.serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	rootCmd.AddCommand(
		newSimulateCmd(opts),
		newServeCmd(opts),
		newPropertyCmd(opts),
		newRemoteCmd(opts),
	)
	return rootCmd
}

// loadProperty loads the property configuration and a logger built from its
// logging section.
func (o *rootOptions) loadProperty() (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}
	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return conf, logger, nil
}

// resolveOutputFormat applies the CLI override over the configured format.
func (o *rootOptions) resolveOutputFormat(conf *config.Configuration) (string, error) {
	outputFormat := conf.Output.Format
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

func logWarnings(logger *zap.Logger, warnings []string) {
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
}
