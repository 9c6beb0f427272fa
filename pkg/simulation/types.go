// Package simulation computes the monthly economics of a short-term-rental
// property: revenue, costs, profit, payback and the occupancy sensitivity
// and break-even tables.
//
// Every function in this package is pure. Inputs are passed by value, never
// mutated, and no state is kept between calls, so the engine may be called
// concurrently without locking.
package simulation

import "fmt"

// RoomType is one configured category of rooms.
type RoomType struct {
	Name                string  `json:"name" yaml:"name" mapstructure:"name"`
	Count               int     `json:"count" yaml:"count" mapstructure:"count"`
	ADR                 float64 `json:"adr" yaml:"adr" mapstructure:"adr"`
	ConsumablesPerNight float64 `json:"consumablesPerNight" yaml:"consumablesPerNight" mapstructure:"consumablesPerNight"`
	UtilitiesPerNight   float64 `json:"utilitiesPerNight" yaml:"utilitiesPerNight" mapstructure:"utilitiesPerNight"`
}

// InitialCosts holds the one-off startup line items. The empty-rent cost of
// the preparation period is derived from PrepMonths and the monthly rent.
type InitialCosts struct {
	PrepMonths     int     `json:"prepMonths" yaml:"prepMonths" mapstructure:"prepMonths"`
	Deposit        float64 `json:"deposit" yaml:"deposit" mapstructure:"deposit"`
	KeyMoney       float64 `json:"keyMoney" yaml:"keyMoney" mapstructure:"keyMoney"`
	BrokerFee      float64 `json:"brokerFee" yaml:"brokerFee" mapstructure:"brokerFee"`
	Photography    float64 `json:"photography" yaml:"photography" mapstructure:"photography"`
	Renovation     float64 `json:"renovation" yaml:"renovation" mapstructure:"renovation"`
	Furniture      float64 `json:"furniture" yaml:"furniture" mapstructure:"furniture"`
	GuarantorFee   float64 `json:"guarantorFee" yaml:"guarantorFee" mapstructure:"guarantorFee"`
	FireInsurance  float64 `json:"fireInsurance" yaml:"fireInsurance" mapstructure:"fireInsurance"`
	LicenseFee     float64 `json:"licenseFee" yaml:"licenseFee" mapstructure:"licenseFee"`
	FireSafetyWork float64 `json:"fireSafetyWork" yaml:"fireSafetyWork" mapstructure:"fireSafetyWork"`
	Contingency    float64 `json:"contingency" yaml:"contingency" mapstructure:"contingency"`
}

// OperatingAssumptions are the monthly rate assumptions. Percentages are
// plain numbers (15 means 15%) and each fee applies to total revenue on its
// own; they are not compounded or capped in combination.
type OperatingAssumptions struct {
	MonthlyRent        float64 `json:"monthlyRent" yaml:"monthlyRent" mapstructure:"monthlyRent"`
	TargetOccupancyPct float64 `json:"targetOccupancyPct" yaml:"targetOccupancyPct" mapstructure:"targetOccupancyPct"`
	OTAFeePct          float64 `json:"otaFeePct" yaml:"otaFeePct" mapstructure:"otaFeePct"`
	ManagementFeePct   float64 `json:"managementFeePct" yaml:"managementFeePct" mapstructure:"managementFeePct"`
	CapexPct           float64 `json:"capexPct" yaml:"capexPct" mapstructure:"capexPct"`
	FixedMonthlyCosts  float64 `json:"fixedMonthlyCosts" yaml:"fixedMonthlyCosts" mapstructure:"fixedMonthlyCosts"`
}

// Input bundles everything a single simulation run needs.
type Input struct {
	Costs               InitialCosts         `json:"costs" yaml:"costs" mapstructure:"costs"`
	Rooms               []RoomType           `json:"rooms" yaml:"rooms" mapstructure:"rooms"`
	Operations          OperatingAssumptions `json:"operations" yaml:"operations" mapstructure:"operations"`
	TargetMonthlyProfit float64              `json:"targetMonthlyProfit" yaml:"targetMonthlyProfit" mapstructure:"targetMonthlyProfit"`
}

// Payback is the number of months of profit needed to recover the initial
// investment. Recoverable is false when monthly profit is not positive, in
// which case Months is always 0.
type Payback struct {
	Months      float64 `json:"months"`
	Recoverable bool    `json:"recoverable"`
}

// Unrecoverable is the payback sentinel for non-positive profit.
var Unrecoverable = Payback{}

// String renders the payback as "12.3 months" or "unrecoverable".
func (p Payback) String() string {
	if !p.Recoverable {
		return "unrecoverable"
	}
	return fmt.Sprintf("%.1f months", p.Months)
}

// LineItem is a labelled amount used for cost breakdowns.
type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Result is the headline breakdown at the target occupancy plus the
// sensitivity table.
type Result struct {
	TotalInvestment      float64          `json:"totalInvestment"`
	PrepRentCost         float64          `json:"prepRentCost"`
	InvestmentItems      []LineItem       `json:"investmentItems"`
	TotalRoomCount       int              `json:"totalRoomCount"`
	ActiveDays           float64          `json:"activeDays"`
	TotalRevenue         float64          `json:"totalRevenue"`
	TotalOTAFee          float64          `json:"totalOtaFee"`
	TotalConsumables     float64          `json:"totalConsumables"`
	TotalUtilities       float64          `json:"totalUtilities"`
	MaintenanceCost      float64          `json:"maintenanceCost"`
	ManagementCost       float64          `json:"managementCost"`
	MonthlyOperatingCost float64          `json:"monthlyOperatingCost"`
	MonthlyProfit        float64          `json:"monthlyProfit"`
	ExpenseRatioPct      float64          `json:"expenseRatioPct"`
	ProfitMarginPct      float64          `json:"profitMarginPct"`
	Payback              Payback          `json:"payback"`
	CostItems            []LineItem       `json:"costItems"`
	Sensitivity          []SensitivityRow `json:"sensitivity"`
}

// SensitivityRow is the full pipeline recomputed at one grid occupancy.
type SensitivityRow struct {
	Label           string  `json:"label"`
	OccupancyPct    float64 `json:"occupancyPct"`
	ActiveDays      float64 `json:"activeDays"`
	Revenue         float64 `json:"revenue"`
	TotalCost       float64 `json:"totalCost"`
	Profit          float64 `json:"profit"`
	ADREffective    float64 `json:"adrEffective"`
	RevPAR          float64 `json:"revpar"`
	GOPPAR          float64 `json:"goppar"`
	ProfitMarginPct float64 `json:"profitMarginPct"`
	Payback         Payback `json:"payback"`
}

// BreakEvenRow holds the nightly rates needed to break even and to reach the
// target profit at one grid occupancy. Applicable is false when there are no
// occupied room-nights, in which case both rates are 0.
type BreakEvenRow struct {
	Label              string  `json:"label"`
	OccupancyPct       float64 `json:"occupancyPct"`
	OccupiedRoomNights float64 `json:"occupiedRoomNights"`
	BreakEvenADR       float64 `json:"breakEvenAdr"`
	TargetADR          float64 `json:"targetAdr"`
	Applicable         bool    `json:"applicable"`
}

// Report is the combined output of Simulate.
type Report struct {
	Result    Result         `json:"result"`
	BreakEven []BreakEvenRow `json:"breakEven"`
}
