// Package optimizer searches for the lowest occupancy at which a property
// reaches its target monthly profit.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/format"
	"github.com/iwvelando/str-forecast/pkg/mathutil"
	"github.com/iwvelando/str-forecast/pkg/optimization"
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"go.uber.org/zap"
)

// FieldOccupancy is the only field the optimizer adjusts.
const FieldOccupancy = "targetOccupancyPct"

const (
	defaultTolerance     = 0.01
	defaultMaxIterations = 50
)

// Options bound the bisection search.
type Options struct {
	Min           float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64 `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize applies defaults and keeps the bounds inside the valid
// occupancy range.
func (o *Options) Normalize() {
	if o.Min < constants.MinOccupancyPct || o.Min > constants.MaxOccupancyPct {
		o.Min = constants.MinOccupancyPct
	}
	if o.Max <= 0 || o.Max > constants.MaxOccupancyPct {
		o.Max = constants.MaxOccupancyPct
	}
	if o.Min > o.Max {
		o.Min, o.Max = o.Max, o.Min
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Runner executes the occupancy search for one property.
type Runner struct {
	logger *zap.Logger
	name   string
	input  simulation.Input
	opts   Options
}

type evaluation struct {
	value  float64
	profit float64
	target float64
}

func (e evaluation) feasible() bool {
	return e.profit >= e.target
}

func (e evaluation) headroom() float64 {
	return e.profit - e.target
}

// NewRunner constructs a Runner. The input is validated up front so the
// search itself cannot fail halfway.
func NewRunner(logger *zap.Logger, name string, input simulation.Input, opts Options) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := simulation.Validate(input.Costs, input.Rooms, input.Operations); err != nil {
		return nil, err
	}
	if input.TargetMonthlyProfit < 0 {
		return nil, fmt.Errorf("%w: targetMonthlyProfit must be non-negative", simulation.ErrInvalidInput)
	}
	opts.Normalize()
	return &Runner{logger: logger, name: name, input: input, opts: opts}, nil
}

// Run finds the lowest occupancy within the bounds whose monthly profit
// meets the target. When even the upper bound misses, the summary reports
// the upper bound with Converged false.
func (r *Runner) Run() (optimization.Summary, error) {
	target := r.input.TargetMonthlyProfit
	original := r.input.Operations.TargetOccupancyPct

	lower, err := r.evaluate(r.opts.Min, target)
	if err != nil {
		return optimization.Summary{}, err
	}
	upper, err := r.evaluate(r.opts.Max, target)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		TargetName:      r.name,
		Field:           FieldOccupancy,
		Original:        original,
		OriginalDisplay: format.Percent(original),
		TargetProfit:    target,
	}

	switch {
	case lower.feasible():
		summary.Converged = true
		summary.Notes = append(summary.Notes, fmt.Sprintf("target profit %s is already met at the lowest occupancy %s",
			format.Yen(target), format.Percent(r.opts.Min)))
		r.fill(&summary, lower)
	case !upper.feasible():
		summary.Converged = false
		summary.Notes = append(summary.Notes, fmt.Sprintf("unable to reach target profit %s within occupancy %s to %s",
			format.Yen(target), format.Percent(r.opts.Min), format.Percent(r.opts.Max)))
		r.fill(&summary, upper)
	default:
		best, iterations, converged, err := r.bisect(lower, upper, target)
		if err != nil {
			return optimization.Summary{}, err
		}
		summary.Iterations = iterations
		summary.Converged = converged
		if !converged {
			summary.Notes = append(summary.Notes, fmt.Sprintf("stopped after %d iterations", iterations))
		}
		r.fill(&summary, best)
	}

	r.logger.Info("optimizer searched occupancy",
		zap.String("op", "optimizer.Run"),
		zap.String("property", r.name),
		zap.Float64("original", original),
		zap.Float64("value", summary.Value),
		zap.Float64("targetProfit", target),
		zap.Float64("profit", summary.Profit),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)

	return summary, nil
}

// bisect keeps hi feasible and lo infeasible until they are within tolerance.
func (r *Runner) bisect(lo, hi evaluation, target float64) (evaluation, int, bool, error) {
	iterations := 0
	for !mathutil.WithinTolerance(hi.value, lo.value, r.opts.Tolerance) && iterations < r.opts.MaxIterations {
		iterations++
		mid, err := r.evaluate((lo.value+hi.value)/2, target)
		if err != nil {
			return evaluation{}, iterations, false, err
		}
		if mid.feasible() {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, iterations, mathutil.WithinTolerance(hi.value, lo.value, r.opts.Tolerance), nil
}

func (r *Runner) evaluate(occupancy, target float64) (evaluation, error) {
	profit, err := simulation.MonthlyProfitAt(r.input.Rooms, r.input.Operations, occupancy)
	if err != nil {
		return evaluation{}, err
	}
	r.logger.Debug("optimizer probe",
		zap.String("op", "optimizer.evaluate"),
		zap.Float64("occupancy", occupancy),
		zap.Float64("profit", profit),
	)
	return evaluation{value: occupancy, profit: profit, target: target}, nil
}

func (r *Runner) fill(summary *optimization.Summary, eval evaluation) {
	summary.Value = eval.value
	summary.ValueDisplay = format.Percent(eval.value)
	summary.Profit = eval.profit
	summary.Headroom = eval.headroom()
}
