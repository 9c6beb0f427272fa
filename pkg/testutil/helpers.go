// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/pkg/simulation"
)

// ReferenceMonthlyProfit is the monthly profit of ReferenceInput at its
// 70% target occupancy.
const ReferenceMonthlyProfit = 631600.0

// ReferenceInput returns a ten-room property whose figures are easy to
// check by hand: ¥3,000,000 invested, ¥1,680,000 monthly revenue and a
// payback of 4.7 months.
func ReferenceInput() simulation.Input {
	return simulation.Input{
		Costs: simulation.InitialCosts{
			PrepMonths: 2,
			Deposit:    600000,
			Renovation: 1000000,
			Furniture:  800000,
		},
		Rooms: []simulation.RoomType{
			{Name: "Standard", Count: 10, ADR: 8000, ConsumablesPerNight: 200, UtilitiesPerNight: 300},
		},
		Operations: simulation.OperatingAssumptions{
			MonthlyRent:        300000,
			TargetOccupancyPct: 70,
			OTAFeePct:          15,
			ManagementFeePct:   20,
			CapexPct:           3,
			FixedMonthlyCosts:  5000,
		},
		TargetMonthlyProfit: 200000,
	}
}

// ReferenceProperty wraps ReferenceInput under the given name.
func ReferenceProperty(name string) config.Property {
	return config.PropertyFromInput(name, ReferenceInput())
}

// FindForecast finds a forecast by property name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindForecast(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}
