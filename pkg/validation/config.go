package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/mathutil"
	"github.com/iwvelando/str-forecast/pkg/simulation"
)

// HighFeeRatePct is the combined fee rate above which a warning is raised.
const HighFeeRatePct = 50.0

// ValidateFeeRates warns when the three revenue-based fees together take
// more than HighFeeRatePct of revenue. The fees are never capped, so a
// high combined rate silently eats the margin.
func ValidateFeeRates(ops simulation.OperatingAssumptions) string {
	combined := ops.OTAFeePct + ops.ManagementFeePct + ops.CapexPct
	if combined > HighFeeRatePct {
		return fmt.Sprintf("Combined OTA, management and capex fees take %.1f%% of revenue", combined)
	}
	return ""
}

// ValidateRooms warns about room types that cannot earn revenue and about
// repeated room type names.
func ValidateRooms(rooms []simulation.RoomType) []string {
	var warnings []string
	seen := make(map[string]int)
	for i, room := range rooms {
		if mathutil.IsZero(room.ADR) {
			warnings = append(warnings, fmt.Sprintf("Room type %d '%s' has an ADR of 0 and earns no revenue", i+1, room.Name))
		}
		key := strings.ToLower(strings.TrimSpace(room.Name))
		if first, ok := seen[key]; ok {
			warnings = append(warnings, fmt.Sprintf("Room types %d and %d share the name '%s'", first+1, i+1, room.Name))
			continue
		}
		seen[key] = i
	}
	return warnings
}

// ValidateResult warns about an unprofitable target occupancy and about
// grid occupancies that lose money.
func ValidateResult(result simulation.Result) []string {
	var warnings []string
	if !result.Payback.Recoverable {
		warnings = append(warnings, fmt.Sprintf("Monthly profit at target occupancy is not positive (%.0f); the investment is not recoverable", result.MonthlyProfit))
	}
	var losing []string
	for _, row := range result.Sensitivity {
		if row.Profit <= 0 {
			losing = append(losing, row.Label)
		}
	}
	if len(losing) > 0 && len(losing) < len(constants.SensitivityOccupancies) {
		warnings = append(warnings, fmt.Sprintf("The property loses money at %s occupancy", strings.Join(losing, ", ")))
	}
	return warnings
}

// PropertyValidator gathers the advisory checks for one property.
type PropertyValidator struct {
	Name  string
	Input simulation.Input
}

// ValidateAll returns every warning for the property. It assumes the input
// already passed simulation.Validate; invalid input yields no result warnings.
func (pv *PropertyValidator) ValidateAll() []string {
	var warnings []string
	if warning := ValidateFeeRates(pv.Input.Operations); warning != "" {
		warnings = append(warnings, warning)
	}
	warnings = append(warnings, ValidateRooms(pv.Input.Rooms)...)

	result, err := simulation.Compute(pv.Input.Costs, pv.Input.Rooms, pv.Input.Operations)
	if err == nil {
		warnings = append(warnings, ValidateResult(result)...)
	}

	if pv.Name == "" {
		return warnings
	}
	for i := range warnings {
		warnings[i] = fmt.Sprintf("Property '%s': %s", pv.Name, warnings[i])
	}
	return warnings
}
