package simulation

import (
	"fmt"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/mathutil"
)

// BreakEven computes, for every grid occupancy, the ADR at which monthly
// profit is zero and the ADR at which it equals targetMonthlyProfit.
//
// Fixed costs are the rent plus the fixed operating costs, variable costs
// are the room-weighted consumables and utilities per night, and the three
// fee percentages are taken off the top of every yen of revenue. A combined
// fee rate of 100% or more leaves no revenue to cover costs and is rejected
// as ErrInvalidInput.
func BreakEven(costs InitialCosts, rooms []RoomType, ops OperatingAssumptions, targetMonthlyProfit float64) ([]BreakEvenRow, error) {
	if err := Validate(costs, rooms, ops); err != nil {
		return nil, err
	}
	if !mathutil.IsFinite(targetMonthlyProfit) || targetMonthlyProfit < 0 {
		return nil, fmt.Errorf("%w: targetMonthlyProfit must be a non-negative amount, got %v", ErrInvalidInput, targetMonthlyProfit)
	}

	variableRate := (ops.OTAFeePct + ops.ManagementFeePct + ops.CapexPct) / constants.PercentageMultiplier
	if variableRate >= 1 {
		return nil, fmt.Errorf("%w: combined fee rate %.1f%% leaves no margin to break even", ErrInvalidInput, variableRate*constants.PercentageMultiplier)
	}
	contribution := 1 - variableRate

	totalRooms := float64(totalRoomCount(rooms))
	fixedCosts := ops.MonthlyRent + ops.FixedMonthlyCosts
	variableCosts := 0.0
	for _, room := range rooms {
		variableCosts += (room.ConsumablesPerNight + room.UtilitiesPerNight) * float64(room.Count)
	}
	avgVariableCost := mathutil.SafeDivide(variableCosts, totalRooms)

	rows := make([]BreakEvenRow, 0, len(constants.SensitivityOccupancies))
	for _, occupancy := range constants.SensitivityOccupancies {
		row := BreakEvenRow{
			Label:              OccupancyLabel(occupancy),
			OccupancyPct:       occupancy,
			OccupiedRoomNights: totalRooms * constants.DaysPerMonth * occupancy / constants.PercentageMultiplier,
		}
		if row.OccupiedRoomNights > 0 {
			row.Applicable = true
			row.BreakEvenADR = (fixedCosts/row.OccupiedRoomNights + avgVariableCost) / contribution
			row.TargetADR = ((fixedCosts+targetMonthlyProfit)/row.OccupiedRoomNights + avgVariableCost) / contribution
		}
		if err := checkFinite(row.OccupiedRoomNights, row.BreakEvenADR, row.TargetADR); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
