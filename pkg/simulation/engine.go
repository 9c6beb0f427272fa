package simulation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/mathutil"
)

// ErrInvalidInput is returned when a configuration is malformed or out of
// range. It is always wrapped with a description of the offending fields.
var ErrInvalidInput = errors.New("invalid input")

// monthlyFigures is one pass of the monthly pipeline at a given occupancy.
type monthlyFigures struct {
	activeDays    float64
	revenue       float64
	otaFee        float64
	consumables   float64
	utilities     float64
	maintenance   float64
	management    float64
	operatingCost float64
	profit        float64
}

// Compute runs the monthly pipeline at the target occupancy and at every
// point of the sensitivity grid.
func Compute(costs InitialCosts, rooms []RoomType, ops OperatingAssumptions) (Result, error) {
	if err := Validate(costs, rooms, ops); err != nil {
		return Result{}, err
	}

	investmentItems := investmentBreakdown(costs, ops.MonthlyRent)
	totalInvestment := 0.0
	for _, item := range investmentItems {
		totalInvestment += item.Amount
	}

	totalRooms := totalRoomCount(rooms)
	m := computeMonthly(rooms, ops, ops.TargetOccupancyPct)

	result := Result{
		TotalInvestment:      totalInvestment,
		PrepRentCost:         investmentItems[0].Amount,
		InvestmentItems:      investmentItems,
		TotalRoomCount:       totalRooms,
		ActiveDays:           m.activeDays,
		TotalRevenue:         m.revenue,
		TotalOTAFee:          m.otaFee,
		TotalConsumables:     m.consumables,
		TotalUtilities:       m.utilities,
		MaintenanceCost:      m.maintenance,
		ManagementCost:       m.management,
		MonthlyOperatingCost: m.operatingCost,
		MonthlyProfit:        m.profit,
		ExpenseRatioPct:      mathutil.CalculatePercentage(m.operatingCost, m.revenue),
		ProfitMarginPct:      mathutil.CalculatePercentage(m.profit, m.revenue),
		Payback:              paybackFor(totalInvestment, m.profit),
		CostItems: []LineItem{
			{Label: "Rent", Amount: ops.MonthlyRent},
			{Label: "Consumables", Amount: m.consumables},
			{Label: "Utilities", Amount: m.utilities},
			{Label: "Fixed costs", Amount: ops.FixedMonthlyCosts},
			{Label: "Maintenance", Amount: m.maintenance},
			{Label: "Management", Amount: m.management},
			{Label: "OTA fees", Amount: m.otaFee},
			{Label: "Operating profit", Amount: mathutil.Max(0, m.profit)},
		},
		Sensitivity: sensitivity(rooms, ops, totalRooms, totalInvestment),
	}

	if err := checkFinite(resultFigures(result)...); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Simulate computes the result and the break-even table for one input.
func Simulate(input Input) (Report, error) {
	result, err := Compute(input.Costs, input.Rooms, input.Operations)
	if err != nil {
		return Report{}, err
	}
	breakEven, err := BreakEven(input.Costs, input.Rooms, input.Operations, input.TargetMonthlyProfit)
	if err != nil {
		return Report{}, err
	}
	return Report{Result: result, BreakEven: breakEven}, nil
}

// MonthlyProfitAt returns the monthly profit the property would make at the
// given occupancy, holding every other assumption fixed. The occupancy is
// validated against the same range as the target occupancy.
func MonthlyProfitAt(rooms []RoomType, ops OperatingAssumptions, occupancyPct float64) (float64, error) {
	probe := ops
	probe.TargetOccupancyPct = occupancyPct
	if err := Validate(InitialCosts{}, rooms, probe); err != nil {
		return 0, err
	}
	m := computeMonthly(rooms, probe, occupancyPct)
	if err := checkFinite(m.revenue, m.operatingCost, m.profit); err != nil {
		return 0, err
	}
	return m.profit, nil
}

// Validate checks every documented input range. It never clamps.
func Validate(costs InitialCosts, rooms []RoomType, ops OperatingAssumptions) error {
	var problems []string

	if len(rooms) < constants.MinRoomTypes {
		problems = append(problems, "at least one room type is required")
	}
	if len(rooms) > constants.MaxRoomTypes {
		problems = append(problems, fmt.Sprintf("at most %d room types are allowed, got %d", constants.MaxRoomTypes, len(rooms)))
	}
	for i, room := range rooms {
		if room.Count < constants.MinRoomCount {
			problems = append(problems, fmt.Sprintf("room type %d (%s): count must be at least %d, got %d", i+1, room.Name, constants.MinRoomCount, room.Count))
		}
		problems = appendNonNegative(problems, fmt.Sprintf("room type %d (%s): adr", i+1, room.Name), room.ADR)
		problems = appendNonNegative(problems, fmt.Sprintf("room type %d (%s): consumablesPerNight", i+1, room.Name), room.ConsumablesPerNight)
		problems = appendNonNegative(problems, fmt.Sprintf("room type %d (%s): utilitiesPerNight", i+1, room.Name), room.UtilitiesPerNight)
	}

	if costs.PrepMonths < 0 || costs.PrepMonths > constants.MaxPrepMonths {
		problems = append(problems, fmt.Sprintf("prepMonths must be within [0, %d], got %d", constants.MaxPrepMonths, costs.PrepMonths))
	}
	for _, item := range costLineItems(costs) {
		problems = appendNonNegative(problems, item.Label, item.Amount)
	}

	problems = appendNonNegative(problems, "monthlyRent", ops.MonthlyRent)
	problems = appendNonNegative(problems, "fixedMonthlyCosts", ops.FixedMonthlyCosts)
	problems = appendRange(problems, "targetOccupancyPct", ops.TargetOccupancyPct, constants.MinOccupancyPct, constants.MaxOccupancyPct)
	problems = appendRange(problems, "otaFeePct", ops.OTAFeePct, constants.MinFeePct, constants.MaxOTAFeePct)
	problems = appendRange(problems, "managementFeePct", ops.ManagementFeePct, constants.MinFeePct, constants.MaxManagementFeePct)
	problems = appendRange(problems, "capexPct", ops.CapexPct, constants.MinFeePct, constants.MaxCapexPct)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// checkFinite rejects inputs that are finite on their own but overflow once
// multiplied through the pipeline.
func checkFinite(values ...float64) error {
	for _, v := range values {
		if !mathutil.IsFinite(v) {
			return fmt.Errorf("%w: amounts too large to simulate", ErrInvalidInput)
		}
	}
	return nil
}

func resultFigures(r Result) []float64 {
	figures := []float64{
		r.TotalInvestment, r.PrepRentCost, r.ActiveDays, r.TotalRevenue, r.TotalOTAFee,
		r.TotalConsumables, r.TotalUtilities, r.MaintenanceCost, r.ManagementCost,
		r.MonthlyOperatingCost, r.MonthlyProfit, r.ExpenseRatioPct, r.ProfitMarginPct,
		r.Payback.Months,
	}
	for _, item := range r.InvestmentItems {
		figures = append(figures, item.Amount)
	}
	for _, item := range r.CostItems {
		figures = append(figures, item.Amount)
	}
	for _, row := range r.Sensitivity {
		figures = append(figures, row.ActiveDays, row.Revenue, row.TotalCost, row.Profit,
			row.ADREffective, row.RevPAR, row.GOPPAR, row.ProfitMarginPct, row.Payback.Months)
	}
	return figures
}

func appendNonNegative(problems []string, field string, value float64) []string {
	if !mathutil.IsFinite(value) || value < 0 {
		return append(problems, fmt.Sprintf("%s must be a non-negative amount, got %v", field, value))
	}
	return problems
}

func appendRange(problems []string, field string, value, min, max float64) []string {
	if !mathutil.InRange(value, min, max) {
		return append(problems, fmt.Sprintf("%s must be within [%g, %g], got %v", field, min, max, value))
	}
	return problems
}

// computeMonthly is the core pipeline. Inputs must already be validated.
func computeMonthly(rooms []RoomType, ops OperatingAssumptions, occupancyPct float64) monthlyFigures {
	var m monthlyFigures
	m.activeDays = constants.DaysPerMonth * (occupancyPct / constants.PercentageMultiplier)

	for _, room := range rooms {
		count := float64(room.Count)
		m.revenue += room.ADR * count * m.activeDays
		m.consumables += room.ConsumablesPerNight * count * m.activeDays
		m.utilities += room.UtilitiesPerNight * count * m.activeDays
	}

	m.otaFee = mathutil.ApplyPercentage(m.revenue, ops.OTAFeePct)
	m.maintenance = mathutil.ApplyPercentage(m.revenue, ops.CapexPct)
	m.management = mathutil.ApplyPercentage(m.revenue, ops.ManagementFeePct)

	m.operatingCost = ops.MonthlyRent + m.consumables + m.utilities + ops.FixedMonthlyCosts +
		m.maintenance + m.management + m.otaFee
	m.profit = m.revenue - m.operatingCost
	return m
}

func sensitivity(rooms []RoomType, ops OperatingAssumptions, totalRooms int, totalInvestment float64) []SensitivityRow {
	rows := make([]SensitivityRow, 0, len(constants.SensitivityOccupancies))
	availableRoomNights := float64(totalRooms) * constants.DaysPerMonth

	for _, occupancy := range constants.SensitivityOccupancies {
		m := computeMonthly(rooms, ops, occupancy)
		rows = append(rows, SensitivityRow{
			Label:           OccupancyLabel(occupancy),
			OccupancyPct:    occupancy,
			ActiveDays:      m.activeDays,
			Revenue:         m.revenue,
			TotalCost:       m.operatingCost,
			Profit:          m.profit,
			ADREffective:    mathutil.SafeDivide(m.revenue, float64(totalRooms)*m.activeDays),
			RevPAR:          mathutil.SafeDivide(m.revenue, availableRoomNights),
			GOPPAR:          mathutil.SafeDivide(m.profit, availableRoomNights),
			ProfitMarginPct: mathutil.CalculatePercentage(m.profit, m.revenue),
			Payback:         paybackFor(totalInvestment, m.profit),
		})
	}
	return rows
}

// paybackFor never divides by a non-positive profit.
func paybackFor(totalInvestment, monthlyProfit float64) Payback {
	if monthlyProfit <= 0 || !mathutil.IsFinite(monthlyProfit) {
		return Unrecoverable
	}
	return Payback{Months: totalInvestment / monthlyProfit, Recoverable: true}
}

// investmentBreakdown lists the initial costs with the preparation-period
// rent first.
func investmentBreakdown(costs InitialCosts, monthlyRent float64) []LineItem {
	items := make([]LineItem, 0, 12)
	items = append(items, LineItem{Label: "Prep rent", Amount: monthlyRent * float64(costs.PrepMonths)})
	return append(items, costLineItems(costs)...)
}

func costLineItems(costs InitialCosts) []LineItem {
	return []LineItem{
		{Label: "Deposit", Amount: costs.Deposit},
		{Label: "Key money", Amount: costs.KeyMoney},
		{Label: "Broker fee", Amount: costs.BrokerFee},
		{Label: "Photography", Amount: costs.Photography},
		{Label: "Renovation", Amount: costs.Renovation},
		{Label: "Furniture", Amount: costs.Furniture},
		{Label: "Guarantor fee", Amount: costs.GuarantorFee},
		{Label: "Fire insurance", Amount: costs.FireInsurance},
		{Label: "License fee", Amount: costs.LicenseFee},
		{Label: "Fire safety work", Amount: costs.FireSafetyWork},
		{Label: "Contingency", Amount: costs.Contingency},
	}
}

func totalRoomCount(rooms []RoomType) int {
	total := 0
	for _, room := range rooms {
		total += room.Count
	}
	return total
}

// OccupancyLabel formats a grid occupancy as "70%".
func OccupancyLabel(occupancyPct float64) string {
	return fmt.Sprintf("%g%%", occupancyPct)
}
