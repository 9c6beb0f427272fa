package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/str-forecast/pkg/simulation"
)

func TestValidateFeeRates(t *testing.T) {
	tests := []struct {
		name       string
		ops        simulation.OperatingAssumptions
		expectWarn bool
	}{
		{
			name:       "Typical fees",
			ops:        simulation.OperatingAssumptions{OTAFeePct: 15, ManagementFeePct: 20, CapexPct: 3},
			expectWarn: false,
		},
		{
			name:       "Exactly at threshold",
			ops:        simulation.OperatingAssumptions{OTAFeePct: 20, ManagementFeePct: 25, CapexPct: 5},
			expectWarn: false,
		},
		{
			name:       "Maximum fees",
			ops:        simulation.OperatingAssumptions{OTAFeePct: 30, ManagementFeePct: 40, CapexPct: 10},
			expectWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateFeeRates(tt.ops)
			if hasWarning := warning != ""; hasWarning != tt.expectWarn {
				t.Errorf("ValidateFeeRates() warning = %t, expected %t", hasWarning, tt.expectWarn)
			}
		})
	}
}

func TestValidateRooms(t *testing.T) {
	rooms := []simulation.RoomType{
		{Name: "Twin", Count: 2, ADR: 9000},
		{Name: "twin ", Count: 1, ADR: 8000},
		{Name: "Storage", Count: 1, ADR: 0},
	}

	warnings := ValidateRooms(rooms)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "share the name") {
		t.Errorf("expected duplicate name warning, got %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "ADR of 0") {
		t.Errorf("expected zero ADR warning, got %q", warnings[1])
	}

	if got := ValidateRooms([]simulation.RoomType{{Name: "Closet", Count: 1, ADR: 0.005}}); len(got) != 1 {
		t.Errorf("expected a sub-yen ADR to count as zero, got %v", got)
	}
}

func TestPropertyValidatorValidateAll(t *testing.T) {
	pv := PropertyValidator{
		Name: "Osaka Loft",
		Input: simulation.Input{
			Rooms: []simulation.RoomType{{Name: "Loft", Count: 2, ADR: 10000, ConsumablesPerNight: 300, UtilitiesPerNight: 300}},
			Operations: simulation.OperatingAssumptions{
				MonthlyRent:        250000,
				TargetOccupancyPct: 40,
				OTAFeePct:          15,
				ManagementFeePct:   20,
				CapexPct:           3,
			},
		},
	}

	warnings := pv.ValidateAll()
	if len(warnings) == 0 {
		t.Fatal("expected warnings for a loss-making property")
	}
	for _, warning := range warnings {
		if !strings.HasPrefix(warning, "Property 'Osaka Loft': ") {
			t.Errorf("warning missing property prefix: %q", warning)
		}
	}
	if !strings.Contains(strings.Join(warnings, "\n"), "not recoverable") {
		t.Errorf("expected unrecoverable warning, got %v", warnings)
	}
}

func TestPropertyValidatorProfitable(t *testing.T) {
	pv := PropertyValidator{
		Input: simulation.Input{
			Rooms: []simulation.RoomType{{Name: "A", Count: 10, ADR: 8000, ConsumablesPerNight: 200, UtilitiesPerNight: 300}},
			Operations: simulation.OperatingAssumptions{
				MonthlyRent:        300000,
				TargetOccupancyPct: 70,
				OTAFeePct:          15,
				ManagementFeePct:   20,
				CapexPct:           3,
				FixedMonthlyCosts:  5000,
			},
		},
	}

	if warnings := pv.ValidateAll(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
