// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/internal/optimizer"
	"github.com/iwvelando/str-forecast/pkg/optimization"
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"go.uber.org/zap"
)

// Forecast holds all information related to one simulated property.
type Forecast struct {
	Name         string                    `json:"name"`
	Input        simulation.Input          `json:"input"`
	Result       simulation.Result         `json:"result"`
	BreakEven    []simulation.BreakEvenRow `json:"breakEven"`
	Optimization *optimization.Summary     `json:"optimization,omitempty"`
	Warnings     []string                  `json:"warnings,omitempty"`
}

// Options control the optional parts of a forecast.
type Options struct {
	// Optimize runs the occupancy search for the target monthly profit.
	Optimize bool
}

// GetForecast runs the engine for the configured property.
func GetForecast(logger *zap.Logger, conf config.Configuration, opts Options) (Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	property := conf.Property
	input := property.Input()

	report, err := simulation.Simulate(input)
	if err != nil {
		logger.Debug(fmt.Sprintf("rejected property %s", property.Name),
			zap.String("op", "forecast.GetForecast"),
			zap.Error(err),
		)
		return Forecast{}, err
	}

	result := Forecast{
		Name:      property.Name,
		Input:     input,
		Result:    report.Result,
		BreakEven: report.BreakEven,
		Warnings:  conf.ValidateConfiguration(),
	}

	if opts.Optimize {
		runner, err := optimizer.NewRunner(logger, property.Name, input, conf.Optimizer)
		if err != nil {
			return Forecast{}, fmt.Errorf("optimizer setup failed: %w", err)
		}
		summary, err := runner.Run()
		if err != nil {
			return Forecast{}, fmt.Errorf("optimizer run failed: %w", err)
		}
		result.Optimization = &summary
	}

	logger.Debug(fmt.Sprintf("simulated property %s", property.Name),
		zap.String("op", "forecast.GetForecast"),
		zap.Float64("monthlyProfit", result.Result.MonthlyProfit),
		zap.String("payback", result.Result.Payback.String()),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// FromSnapshotProperty simulates a property decoded from the property store.
// Stored properties carry no optimizer settings, so the search uses defaults.
func FromSnapshotProperty(logger *zap.Logger, property config.Property, opts Options) (Forecast, error) {
	return GetForecast(logger, config.Configuration{Property: property}, opts)
}
