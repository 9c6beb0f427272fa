// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/str-forecast/internal/optimizer"
	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"github.com/iwvelando/str-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for str-forecast.
type Configuration struct {
	Property  Property          `yaml:"property" mapstructure:"property"`
	Optimizer optimizer.Options `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Logging   LoggingConfig     `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig      `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// Property is one simulated property: its name and the engine input.
type Property struct {
	Name                string                          `yaml:"name" json:"name" mapstructure:"name"`
	Costs               simulation.InitialCosts         `yaml:"costs" json:"costs" mapstructure:"costs"`
	Rooms               []simulation.RoomType           `yaml:"rooms" json:"rooms" mapstructure:"rooms"`
	Operations          simulation.OperatingAssumptions `yaml:"operations" json:"operations" mapstructure:"operations"`
	TargetMonthlyProfit float64                         `yaml:"targetMonthlyProfit,omitempty" json:"targetMonthlyProfit" mapstructure:"targetMonthlyProfit"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// newViper returns a private viper instance so concurrent loads (one per
// HTTP request) never share state.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("property.costs.prepMonths", constants.DefaultPrepMonths)
	v.SetDefault("property.operations.targetOccupancyPct", constants.DefaultOccupancyPct)
	v.SetDefault("property.operations.otaFeePct", constants.DefaultOTAFeePct)
	v.SetDefault("property.operations.managementFeePct", constants.DefaultManagementPct)
	v.SetDefault("property.operations.capexPct", constants.DefaultCapexPct)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Property.Name = strings.TrimSpace(configuration.Property.Name)
	return &configuration, nil
}

// Validate checks the property against the engine's input ranges.
func (conf *Configuration) Validate() error {
	return conf.Property.Validate()
}

// ValidateConfiguration performs advisory validation of the configuration
// and returns warnings.
func (conf *Configuration) ValidateConfiguration() []string {
	validator := validation.PropertyValidator{
		Name:  conf.Property.Name,
		Input: conf.Property.Input(),
	}
	return validator.ValidateAll()
}

// Validate checks the property against the engine's input ranges.
func (p Property) Validate() error {
	if err := simulation.Validate(p.Costs, p.Rooms, p.Operations); err != nil {
		return err
	}
	if p.TargetMonthlyProfit < 0 {
		return fmt.Errorf("%w: targetMonthlyProfit must be a non-negative amount, got %v",
			simulation.ErrInvalidInput, p.TargetMonthlyProfit)
	}
	return nil
}
