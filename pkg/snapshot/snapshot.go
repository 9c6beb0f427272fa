// Package snapshot converts a property between the engine input and the
// flat key/value map the property stores persist.
package snapshot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Snapshot keys.
const (
	KeyPropertyName        = "property_name"
	KeyMonthlyRent         = "monthly_rent"
	KeyPrepMonths          = "prep_months"
	KeyDeposit             = "deposit"
	KeyKeyMoney            = "key_money"
	KeyBrokerFee           = "broker_fee"
	KeyPhotography         = "photography"
	KeyRenovation          = "renovation"
	KeyFurniture           = "furniture"
	KeyGuarantorFee        = "guarantor_fee"
	KeyFireInsurance       = "fire_insurance"
	KeyLicenseFee          = "license_fee"
	KeyFireSafetyWork      = "fire_safety_work"
	KeyContingency         = "contingency"
	KeyRoomTypeCount       = "room_type_count"
	KeyTargetOccupancy     = "target_occupancy"
	KeyOTAFeeRate          = "ota_fee_rate"
	KeyManagementFeeRate   = "management_fee_rate"
	KeyCapexRate           = "capex_rate"
	KeyFixedOpCosts        = "fixed_op_costs"
	KeyTargetMonthlyProfit = "target_monthly_profit"
)

// ErrInvalidSnapshot is returned when a snapshot value cannot be coerced.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the flat representation of one saved property.
type Snapshot map[string]string

// Name returns the property name the snapshot is stored under.
func (s Snapshot) Name() string {
	return strings.TrimSpace(s[KeyPropertyName])
}

// RoomKey returns the key of one field of the i-th (0-based) room type.
func RoomKey(i int, field string) string {
	return fmt.Sprintf("room_%d_%s", i+1, field)
}

// Encode flattens a property into a snapshot. Numbers are written with the
// shortest decimal representation that reads back to the same value.
func Encode(name string, input simulation.Input) Snapshot {
	s := Snapshot{
		KeyPropertyName:        name,
		KeyMonthlyRent:         formatFloat(input.Operations.MonthlyRent),
		KeyPrepMonths:          strconv.Itoa(input.Costs.PrepMonths),
		KeyDeposit:             formatFloat(input.Costs.Deposit),
		KeyKeyMoney:            formatFloat(input.Costs.KeyMoney),
		KeyBrokerFee:           formatFloat(input.Costs.BrokerFee),
		KeyPhotography:         formatFloat(input.Costs.Photography),
		KeyRenovation:          formatFloat(input.Costs.Renovation),
		KeyFurniture:           formatFloat(input.Costs.Furniture),
		KeyGuarantorFee:        formatFloat(input.Costs.GuarantorFee),
		KeyFireInsurance:       formatFloat(input.Costs.FireInsurance),
		KeyLicenseFee:          formatFloat(input.Costs.LicenseFee),
		KeyFireSafetyWork:      formatFloat(input.Costs.FireSafetyWork),
		KeyContingency:         formatFloat(input.Costs.Contingency),
		KeyRoomTypeCount:       strconv.Itoa(len(input.Rooms)),
		KeyTargetOccupancy:     formatFloat(input.Operations.TargetOccupancyPct),
		KeyOTAFeeRate:          formatFloat(input.Operations.OTAFeePct),
		KeyManagementFeeRate:   formatFloat(input.Operations.ManagementFeePct),
		KeyCapexRate:           formatFloat(input.Operations.CapexPct),
		KeyFixedOpCosts:        formatFloat(input.Operations.FixedMonthlyCosts),
		KeyTargetMonthlyProfit: formatFloat(input.TargetMonthlyProfit),
	}
	for i, room := range input.Rooms {
		s[RoomKey(i, "name")] = room.Name
		s[RoomKey(i, "count")] = strconv.Itoa(room.Count)
		s[RoomKey(i, "adr")] = formatFloat(room.ADR)
		s[RoomKey(i, "consumables")] = formatFloat(room.ConsumablesPerNight)
		s[RoomKey(i, "utilities")] = formatFloat(room.UtilitiesPerNight)
	}
	return s
}

// Decode rebuilds the property name and engine input from a snapshot.
// Unknown keys are ignored; missing keys take the input form defaults.
// Range checks are left to the engine.
func Decode(s Snapshot) (string, simulation.Input, error) {
	d := decoder{s: s}
	var input simulation.Input

	input.Operations = simulation.OperatingAssumptions{
		MonthlyRent:        d.float(KeyMonthlyRent, 0),
		TargetOccupancyPct: d.float(KeyTargetOccupancy, constants.DefaultOccupancyPct),
		OTAFeePct:          d.float(KeyOTAFeeRate, constants.DefaultOTAFeePct),
		ManagementFeePct:   d.float(KeyManagementFeeRate, constants.DefaultManagementPct),
		CapexPct:           d.float(KeyCapexRate, constants.DefaultCapexPct),
		FixedMonthlyCosts:  d.float(KeyFixedOpCosts, 0),
	}
	input.Costs = simulation.InitialCosts{
		PrepMonths:     d.int(KeyPrepMonths, constants.DefaultPrepMonths),
		Deposit:        d.float(KeyDeposit, 0),
		KeyMoney:       d.float(KeyKeyMoney, 0),
		BrokerFee:      d.float(KeyBrokerFee, 0),
		Photography:    d.float(KeyPhotography, 0),
		Renovation:     d.float(KeyRenovation, 0),
		Furniture:      d.float(KeyFurniture, 0),
		GuarantorFee:   d.float(KeyGuarantorFee, 0),
		FireInsurance:  d.float(KeyFireInsurance, 0),
		LicenseFee:     d.float(KeyLicenseFee, 0),
		FireSafetyWork: d.float(KeyFireSafetyWork, 0),
		Contingency:    d.float(KeyContingency, 0),
	}
	input.TargetMonthlyProfit = d.float(KeyTargetMonthlyProfit, 0)

	roomTypes := d.int(KeyRoomTypeCount, constants.MinRoomTypes)
	if roomTypes < 0 || roomTypes > constants.MaxRoomTypes {
		d.fail(KeyRoomTypeCount, fmt.Errorf("must be within [0, %d]", constants.MaxRoomTypes))
		roomTypes = 0
	}
	for i := 0; i < roomTypes; i++ {
		name, ok := s[RoomKey(i, "name")]
		if !ok {
			name = fmt.Sprintf("Type %c", 'A'+i)
		}
		input.Rooms = append(input.Rooms, simulation.RoomType{
			Name:                name,
			Count:               d.int(RoomKey(i, "count"), constants.MinRoomCount),
			ADR:                 d.float(RoomKey(i, "adr"), 0),
			ConsumablesPerNight: d.float(RoomKey(i, "consumables"), 0),
			UtilitiesPerNight:   d.float(RoomKey(i, "utilities"), 0),
		})
	}

	if len(d.problems) > 0 {
		return "", simulation.Input{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(d.problems, "; "))
	}
	return s.Name(), input, nil
}

type decoder struct {
	s        Snapshot
	problems []string
}

func (d *decoder) fail(key string, err error) {
	d.problems = append(d.problems, fmt.Sprintf("%s: %v", key, err))
}

func (d *decoder) float(key string, fallback float64) float64 {
	raw, ok := d.s[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil {
		d.fail(key, err)
		return fallback
	}
	return v
}

// int accepts integral floats such as "3.0", which spreadsheets produce.
func (d *decoder) int(key string, fallback int) int {
	raw, ok := d.s[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil {
		d.fail(key, err)
		return fallback
	}
	if v != float64(int(v)) {
		d.fail(key, fmt.Errorf("expected a whole number, got %s", raw))
		return fallback
	}
	return int(v)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}
