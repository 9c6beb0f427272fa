package config

import (
	"github.com/iwvelando/str-forecast/pkg/simulation"
	"github.com/iwvelando/str-forecast/pkg/snapshot"
)

// Input converts the property into the engine input. The room list is
// copied so the engine never aliases configuration state.
func (p Property) Input() simulation.Input {
	return simulation.Input{
		Costs:               p.Costs,
		Rooms:               append([]simulation.RoomType(nil), p.Rooms...),
		Operations:          p.Operations,
		TargetMonthlyProfit: p.TargetMonthlyProfit,
	}
}

// PropertyFromInput builds a Property from a name and an engine input.
func PropertyFromInput(name string, input simulation.Input) Property {
	return Property{
		Name:                name,
		Costs:               input.Costs,
		Rooms:               append([]simulation.RoomType(nil), input.Rooms...),
		Operations:          input.Operations,
		TargetMonthlyProfit: input.TargetMonthlyProfit,
	}
}

// Snapshot flattens the property for the property stores.
func (p Property) Snapshot() snapshot.Snapshot {
	return snapshot.Encode(p.Name, p.Input())
}

// PropertyFromSnapshot rebuilds a Property from a stored snapshot.
func PropertyFromSnapshot(s snapshot.Snapshot) (Property, error) {
	name, input, err := snapshot.Decode(s)
	if err != nil {
		return Property{}, err
	}
	return PropertyFromInput(name, input), nil
}
