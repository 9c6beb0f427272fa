package simulation

import (
	"errors"
	"testing"
)

func TestBreakEvenReferenceScenario(t *testing.T) {
	costs, rooms, ops := referenceInput()

	rows, err := BreakEven(costs, rooms, ops, 200000)
	if err != nil {
		t.Fatalf("BreakEven() error = %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(rows))
	}

	tests := []struct {
		index     int
		label     string
		nights    float64
		breakEven float64
		target    float64
	}{
		{0, "30%", 90, 6272.401433691756, 0},
		{4, "70%", 210, 3149.00153609831, 4685.099846390169},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			row := rows[tt.index]
			if row.Label != tt.label {
				t.Fatalf("label = %q, expected %q", row.Label, tt.label)
			}
			if !row.Applicable {
				t.Fatalf("expected applicable row")
			}
			assertClose(t, "OccupiedRoomNights", row.OccupiedRoomNights, tt.nights)
			assertClose(t, "BreakEvenADR", row.BreakEvenADR, tt.breakEven)
			if tt.target != 0 {
				assertClose(t, "TargetADR", row.TargetADR, tt.target)
			}
		})
	}
}

func TestBreakEvenADRZeroesProfit(t *testing.T) {
	costs, rooms, ops := referenceInput()
	rows, err := BreakEven(costs, rooms, ops, 150000)
	if err != nil {
		t.Fatalf("BreakEven() error = %v", err)
	}

	for _, row := range rows {
		priced := append([]RoomType(nil), rooms...)
		priced[0].ADR = row.BreakEvenADR
		profit, err := MonthlyProfitAt(priced, ops, row.OccupancyPct)
		if err != nil {
			t.Fatalf("MonthlyProfitAt() error = %v", err)
		}
		if profit > 1e-4 || profit < -1e-4 {
			t.Errorf("row %s: profit at break-even ADR = %v, expected 0", row.Label, profit)
		}

		priced[0].ADR = row.TargetADR
		profit, err = MonthlyProfitAt(priced, ops, row.OccupancyPct)
		if err != nil {
			t.Fatalf("MonthlyProfitAt() error = %v", err)
		}
		assertCloseLoose(t, "profit at target ADR", profit, 150000)
	}
}

func assertCloseLoose(t *testing.T, field string, got, want float64) {
	t.Helper()
	if got-want > 1e-4 || want-got > 1e-4 {
		t.Errorf("%s = %v, expected %v", field, got, want)
	}
}

func TestBreakEvenVariableRateGuard(t *testing.T) {
	costs, rooms, ops := referenceInput()
	ops.OTAFeePct = 30
	ops.ManagementFeePct = 40
	ops.CapexPct = 10

	rows, err := BreakEven(costs, rooms, ops, 0)
	if err != nil {
		t.Fatalf("80%% combined fees should still be computable, got %v", err)
	}
	for _, row := range rows {
		if row.BreakEvenADR <= 0 {
			t.Errorf("row %s: expected positive break-even ADR, got %v", row.Label, row.BreakEvenADR)
		}
	}
}

func TestBreakEvenInvalidInput(t *testing.T) {
	costs, rooms, ops := referenceInput()

	if _, err := BreakEven(costs, rooms, ops, -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative target profit: expected ErrInvalidInput, got %v", err)
	}
	if _, err := BreakEven(costs, nil, ops, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("no rooms: expected ErrInvalidInput, got %v", err)
	}
}

func TestSimulate(t *testing.T) {
	costs, rooms, ops := referenceInput()

	report, err := Simulate(Input{Costs: costs, Rooms: rooms, Operations: ops, TargetMonthlyProfit: 100000})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	assertClose(t, "MonthlyProfit", report.Result.MonthlyProfit, 631600)
	if len(report.BreakEven) != 8 {
		t.Errorf("expected 8 break-even rows, got %d", len(report.BreakEven))
	}

	if _, err := Simulate(Input{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty input: expected ErrInvalidInput, got %v", err)
	}
}
