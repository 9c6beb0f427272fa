package testutil

import (
	"testing"

	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/pkg/simulation"
)

func TestFindForecast(t *testing.T) {
	results := []forecast.Forecast{
		{Name: "Property A", Result: simulation.Result{MonthlyProfit: 1000}},
		{Name: "Property B", Result: simulation.Result{MonthlyProfit: 2000}},
		{Name: "Another Property", Result: simulation.Result{MonthlyProfit: 3000}},
	}

	tests := []struct {
		name         string
		searchName   string
		expectFound  bool
		expectProfit float64
	}{
		{"Find existing property A", "Property A", true, 1000},
		{"Find existing property B", "Property B", true, 2000},
		{"Find with spaces in name", "Another Property", true, 3000},
		{"Non-existent property", "Missing", false, 0},
		{"Empty name", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindForecast(results, tt.searchName)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("FindForecast() = %v, expected nil", result)
				}
				return
			}
			if result == nil {
				t.Fatalf("FindForecast() returned nil, expected %s", tt.searchName)
			}
			if result.Result.MonthlyProfit != tt.expectProfit {
				t.Errorf("MonthlyProfit = %v, expected %v", result.Result.MonthlyProfit, tt.expectProfit)
			}
		})
	}
}

func TestFindForecastReturnsPointerIntoSlice(t *testing.T) {
	results := []forecast.Forecast{{Name: "A"}}
	FindForecast(results, "A").Warnings = []string{"changed"}
	if len(results[0].Warnings) != 1 {
		t.Error("expected FindForecast to return a pointer into the slice")
	}
}

func TestReferenceInputProfit(t *testing.T) {
	input := ReferenceInput()
	result, err := simulation.Compute(input.Costs, input.Rooms, input.Operations)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result.MonthlyProfit != ReferenceMonthlyProfit {
		t.Errorf("MonthlyProfit = %v, expected %v", result.MonthlyProfit, ReferenceMonthlyProfit)
	}
	if ReferenceProperty("x").Name != "x" {
		t.Error("ReferenceProperty must carry the given name")
	}
}
