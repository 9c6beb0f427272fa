package simulation

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/iwvelando/str-forecast/pkg/mathutil"
)

const tolerance = 1e-6

// referenceInput is the ten-room scenario used throughout the tests.
func referenceInput() (InitialCosts, []RoomType, OperatingAssumptions) {
	costs := InitialCosts{
		PrepMonths:  2,
		Deposit:     600000,
		Renovation:  1000000,
		Furniture:   800000,
		Contingency: 0,
	}
	rooms := []RoomType{
		{Name: "Type A", Count: 10, ADR: 8000, ConsumablesPerNight: 200, UtilitiesPerNight: 300},
	}
	ops := OperatingAssumptions{
		MonthlyRent:        300000,
		TargetOccupancyPct: 70,
		OTAFeePct:          15,
		ManagementFeePct:   20,
		CapexPct:           3,
		FixedMonthlyCosts:  5000,
	}
	return costs, rooms, ops
}

func assertClose(t *testing.T, field string, got, want float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, want, tolerance) {
		t.Errorf("%s = %v, expected %v", field, got, want)
	}
}

func TestComputeReferenceScenario(t *testing.T) {
	costs, rooms, ops := referenceInput()

	result, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	assertClose(t, "ActiveDays", result.ActiveDays, 21.0)
	assertClose(t, "TotalRevenue", result.TotalRevenue, 1680000)
	assertClose(t, "TotalOTAFee", result.TotalOTAFee, 252000)
	assertClose(t, "MaintenanceCost", result.MaintenanceCost, 50400)
	assertClose(t, "ManagementCost", result.ManagementCost, 336000)
	assertClose(t, "TotalConsumables", result.TotalConsumables, 42000)
	assertClose(t, "TotalUtilities", result.TotalUtilities, 63000)
	assertClose(t, "MonthlyOperatingCost", result.MonthlyOperatingCost, 1048400)
	assertClose(t, "MonthlyProfit", result.MonthlyProfit, 631600)
	assertClose(t, "PrepRentCost", result.PrepRentCost, 600000)
	assertClose(t, "TotalInvestment", result.TotalInvestment, 3000000)
	assertClose(t, "ExpenseRatioPct", result.ExpenseRatioPct, 62.404761904761905)
	assertClose(t, "ProfitMarginPct", result.ProfitMarginPct, 37.595238095238095)

	if result.TotalRoomCount != 10 {
		t.Errorf("TotalRoomCount = %d, expected 10", result.TotalRoomCount)
	}
	if !result.Payback.Recoverable {
		t.Fatalf("expected recoverable payback")
	}
	assertClose(t, "Payback.Months", result.Payback.Months, 3000000.0/631600.0)
	if got := result.Payback.String(); got != "4.7 months" {
		t.Errorf("Payback.String() = %q, expected %q", got, "4.7 months")
	}
}

func TestComputeBreakdownLists(t *testing.T) {
	costs, rooms, ops := referenceInput()
	result, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if len(result.InvestmentItems) != 12 {
		t.Fatalf("expected 12 investment items, got %d", len(result.InvestmentItems))
	}
	if result.InvestmentItems[0].Label != "Prep rent" || result.InvestmentItems[11].Label != "Contingency" {
		t.Errorf("unexpected investment item order: first %q, last %q",
			result.InvestmentItems[0].Label, result.InvestmentItems[11].Label)
	}

	sum := 0.0
	for _, item := range result.CostItems[:7] {
		sum += item.Amount
	}
	assertClose(t, "sum of cost items", sum, result.MonthlyOperatingCost)
	assertClose(t, "operating profit item", result.CostItems[7].Amount, result.MonthlyProfit)
}

func TestComputeZeroRevenueRoom(t *testing.T) {
	rooms := []RoomType{{Name: "Empty", Count: 1}}
	ops := OperatingAssumptions{
		MonthlyRent:        100000,
		TargetOccupancyPct: 70,
		OTAFeePct:          15,
		ManagementFeePct:   20,
		CapexPct:           3,
		FixedMonthlyCosts:  5000,
	}

	result, err := Compute(InitialCosts{}, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if result.TotalRevenue != 0 {
		t.Errorf("TotalRevenue = %v, expected 0", result.TotalRevenue)
	}
	if result.TotalOTAFee != 0 || result.MaintenanceCost != 0 || result.ManagementCost != 0 {
		t.Errorf("percentage costs should be 0, got ota=%v maintenance=%v management=%v",
			result.TotalOTAFee, result.MaintenanceCost, result.ManagementCost)
	}
	if result.MonthlyProfit != -result.MonthlyOperatingCost || result.MonthlyProfit > 0 {
		t.Errorf("MonthlyProfit = %v, expected -%v", result.MonthlyProfit, result.MonthlyOperatingCost)
	}
	if result.Payback != Unrecoverable {
		t.Errorf("Payback = %+v, expected unrecoverable", result.Payback)
	}
	if result.ProfitMarginPct != 0 || result.ExpenseRatioPct != 0 {
		t.Errorf("ratios should fall back to 0 with no revenue, got margin=%v expense=%v",
			result.ProfitMarginPct, result.ExpenseRatioPct)
	}
	for _, row := range result.Sensitivity {
		if row.ADREffective != 0 || row.ProfitMarginPct != 0 {
			t.Errorf("row %s: expected zero ADR and margin, got %v and %v", row.Label, row.ADREffective, row.ProfitMarginPct)
		}
		if row.Payback.Recoverable {
			t.Errorf("row %s: expected unrecoverable payback", row.Label)
		}
	}
}

func TestComputeLinearityInRoomCount(t *testing.T) {
	costs, _, ops := referenceInput()
	rooms := []RoomType{
		{Name: "Twin", Count: 3, ADR: 9000, ConsumablesPerNight: 250, UtilitiesPerNight: 310},
		{Name: "Single", Count: 2, ADR: 5500, ConsumablesPerNight: 120, UtilitiesPerNight: 180},
	}
	doubled := make([]RoomType, len(rooms))
	for i, room := range rooms {
		room.Count *= 2
		doubled[i] = room
	}

	base, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	twice, err := Compute(costs, doubled, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	assertClose(t, "TotalRevenue", twice.TotalRevenue, 2*base.TotalRevenue)
	assertClose(t, "TotalConsumables", twice.TotalConsumables, 2*base.TotalConsumables)
	assertClose(t, "TotalUtilities", twice.TotalUtilities, 2*base.TotalUtilities)
	assertClose(t, "TotalOTAFee", twice.TotalOTAFee, 2*base.TotalOTAFee)
	assertClose(t, "MaintenanceCost", twice.MaintenanceCost, 2*base.MaintenanceCost)
	assertClose(t, "ManagementCost", twice.ManagementCost, 2*base.ManagementCost)

	if mathutil.WithinTolerance(twice.MonthlyProfit, 2*base.MonthlyProfit, tolerance) {
		t.Errorf("MonthlyProfit should not simply double with fixed rent, got %v vs %v", twice.MonthlyProfit, base.MonthlyProfit)
	}
	assertClose(t, "MonthlyProfit", twice.MonthlyProfit, 2*base.MonthlyProfit+ops.MonthlyRent+ops.FixedMonthlyCosts)
}

func TestComputeOccupancyMonotonicity(t *testing.T) {
	costs, rooms, ops := referenceInput()

	previous := -1.0
	for occupancy := 10.0; occupancy <= 100.0; occupancy += 2.5 {
		ops.TargetOccupancyPct = occupancy
		result, err := Compute(costs, rooms, ops)
		if err != nil {
			t.Fatalf("Compute() at %v%% error = %v", occupancy, err)
		}
		if result.TotalRevenue < previous {
			t.Errorf("revenue decreased at %v%%: %v < %v", occupancy, result.TotalRevenue, previous)
		}
		previous = result.TotalRevenue
	}
}

func TestSensitivityGrid(t *testing.T) {
	costs, rooms, ops := referenceInput()
	expectedLabels := []string{"30%", "40%", "50%", "60%", "70%", "80%", "90%", "100%"}

	var reference []SensitivityRow
	for _, occupancy := range []float64{10, 33.3, 70, 100} {
		ops.TargetOccupancyPct = occupancy
		result, err := Compute(costs, rooms, ops)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if len(result.Sensitivity) != len(expectedLabels) {
			t.Fatalf("expected %d rows, got %d", len(expectedLabels), len(result.Sensitivity))
		}
		for i, row := range result.Sensitivity {
			if row.Label != expectedLabels[i] {
				t.Errorf("row %d label = %q, expected %q", i, row.Label, expectedLabels[i])
			}
		}
		if reference == nil {
			reference = result.Sensitivity
			continue
		}
		for i := range reference {
			if reference[i] != result.Sensitivity[i] {
				t.Errorf("row %s changed with target occupancy %v", reference[i].Label, occupancy)
			}
		}
	}
}

func TestSensitivityRowMetrics(t *testing.T) {
	costs, rooms, ops := referenceInput()
	result, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	row := result.Sensitivity[4]
	if row.Label != "70%" {
		t.Fatalf("expected 70%% row, got %s", row.Label)
	}
	assertClose(t, "Revenue", row.Revenue, result.TotalRevenue)
	assertClose(t, "TotalCost", row.TotalCost, result.MonthlyOperatingCost)
	assertClose(t, "Profit", row.Profit, result.MonthlyProfit)
	assertClose(t, "ADREffective", row.ADREffective, 8000)
	assertClose(t, "RevPAR", row.RevPAR, 1680000.0/300.0)
	assertClose(t, "GOPPAR", row.GOPPAR, 631600.0/300.0)
	assertClose(t, "ProfitMarginPct", row.ProfitMarginPct, 37.595238095238095)

	// 30% occupancy: revenue 720000, cost 300000+18000+27000+5000+21600+144000+108000.
	low := result.Sensitivity[0]
	assertClose(t, "low Revenue", low.Revenue, 720000)
	assertClose(t, "low TotalCost", low.TotalCost, 623600)
	assertClose(t, "low Profit", low.Profit, 96400)
}

func TestPaybackGuard(t *testing.T) {
	costs, rooms, ops := referenceInput()
	ops.MonthlyRent = 5000000

	result, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result.MonthlyProfit > 0 {
		t.Fatalf("expected a loss, got profit %v", result.MonthlyProfit)
	}
	if result.Payback.Recoverable || result.Payback.Months != 0 {
		t.Errorf("Payback = %+v, expected unrecoverable sentinel", result.Payback)
	}
	if got := result.Payback.String(); got != "unrecoverable" {
		t.Errorf("Payback.String() = %q", got)
	}
	for _, row := range result.Sensitivity {
		if row.Profit <= 0 && row.Payback.Recoverable {
			t.Errorf("row %s: loss with recoverable payback", row.Label)
		}
		if math.IsInf(row.Payback.Months, 0) || math.IsNaN(row.Payback.Months) || row.Payback.Months < 0 {
			t.Errorf("row %s: invalid payback months %v", row.Label, row.Payback.Months)
		}
	}
}

func TestFeesAreNotCapped(t *testing.T) {
	costs, rooms, ops := referenceInput()
	ops.OTAFeePct = 30
	ops.ManagementFeePct = 40
	ops.CapexPct = 10

	result, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	assertClose(t, "fees", result.TotalOTAFee+result.ManagementCost+result.MaintenanceCost, 0.8*result.TotalRevenue)
}

func TestComputeInvalidInput(t *testing.T) {
	costs, rooms, ops := referenceInput()

	tests := []struct {
		name   string
		mutate func(*InitialCosts, *[]RoomType, *OperatingAssumptions)
	}{
		{"No room types", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { *r = nil }},
		{"Too many room types", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) {
			*r = []RoomType{{Count: 1}, {Count: 1}, {Count: 1}, {Count: 1}, {Count: 1}, {Count: 1}}
		}},
		{"Zero room count", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) {
			*r = []RoomType{{Name: "A", Count: 0, ADR: 1000}}
		}},
		{"Negative ADR", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) {
			*r = []RoomType{{Name: "A", Count: 1, ADR: -1}}
		}},
		{"Occupancy below range", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.TargetOccupancyPct = 9.9 }},
		{"Occupancy above range", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.TargetOccupancyPct = 100.1 }},
		{"OTA fee above range", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.OTAFeePct = 31 }},
		{"Management fee negative", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.ManagementFeePct = -1 }},
		{"Capex above range", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.CapexPct = 10.5 }},
		{"NaN rent", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.MonthlyRent = math.NaN() }},
		{"Prep months above range", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { c.PrepMonths = 7 }},
		{"Negative deposit", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { c.Deposit = -10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := costs
			r := append([]RoomType(nil), rooms...)
			o := ops
			tt.mutate(&c, &r, &o)

			_, err := Compute(c, r, o)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Compute() error = %v, expected ErrInvalidInput", err)
			}
		})
	}
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	costs, rooms, ops := referenceInput()
	snapshot := append([]RoomType(nil), rooms...)

	if _, err := Compute(costs, rooms, ops); err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	for i := range rooms {
		if rooms[i] != snapshot[i] {
			t.Errorf("room %d mutated: %+v != %+v", i, rooms[i], snapshot[i])
		}
	}
}

func TestComputeConcurrentCalls(t *testing.T) {
	costs, rooms, ops := referenceInput()
	expected, err := Compute(costs, rooms, ops)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(occupancy float64) {
			defer wg.Done()
			o := ops
			o.TargetOccupancyPct = occupancy
			result, err := Compute(costs, rooms, o)
			if err != nil {
				errs <- err.Error()
				return
			}
			if occupancy == ops.TargetOccupancyPct && result.MonthlyProfit != expected.MonthlyProfit {
				errs <- "profit mismatch under concurrency"
			}
		}(float64(10 + i%10*10))
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestMonthlyProfitAt(t *testing.T) {
	_, rooms, ops := referenceInput()

	profit, err := MonthlyProfitAt(rooms, ops, 30)
	if err != nil {
		t.Fatalf("MonthlyProfitAt() error = %v", err)
	}
	assertClose(t, "profit at 30%", profit, 96400)

	if _, err := MonthlyProfitAt(rooms, ops, 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for 5%% occupancy, got %v", err)
	}
}

func TestOverflowingAmountsAreRejected(t *testing.T) {
	costs, rooms, ops := referenceInput()

	tests := []struct {
		name   string
		mutate func(*InitialCosts, *[]RoomType, *OperatingAssumptions)
	}{
		{"Huge ADR", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { (*r)[0].ADR = 1e307 }},
		{"Huge consumables", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { (*r)[0].ConsumablesPerNight = 1e307 }},
		{"Investment sum overflows", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) {
			c.Deposit = math.MaxFloat64
			c.Renovation = math.MaxFloat64
		}},
		{"Huge rent", func(c *InitialCosts, r *[]RoomType, o *OperatingAssumptions) { o.MonthlyRent = math.MaxFloat64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := costs
			r := append([]RoomType(nil), rooms...)
			o := ops
			tt.mutate(&c, &r, &o)

			result, err := Compute(c, r, o)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got err=%v profit=%v", err, result.MonthlyProfit)
			}
		})
	}

	r := append([]RoomType(nil), rooms...)
	r[0].ADR = 1e307
	if _, err := MonthlyProfitAt(r, ops, 70); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("MonthlyProfitAt: expected ErrInvalidInput, got %v", err)
	}

	o := ops
	o.MonthlyRent = math.MaxFloat64
	o.FixedMonthlyCosts = math.MaxFloat64
	if _, err := BreakEven(costs, rooms, o, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("BreakEven: expected ErrInvalidInput, got %v", err)
	}
}

func TestOccupancyLabel(t *testing.T) {
	tests := map[float64]string{30: "30%", 100: "100%", 72.5: "72.5%"}
	for input, expected := range tests {
		if got := OccupancyLabel(input); got != expected {
			t.Errorf("OccupancyLabel(%v) = %q, expected %q", input, got, expected)
		}
	}
}
