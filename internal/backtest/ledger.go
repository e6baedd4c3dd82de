package backtest

import "energy-core/internal/model"

// Totals summarizes one Result into the per-scenario-x-tariff headline
// numbers a report or API response surfaces without re-walking every hour.
type Totals struct {
	Scenario model.Scenario
	Tariff   model.Tariff

	TotalEnergyMWh float64
	TotalPLN       float64
	NettoTotalPLN  float64
	VATPLN         float64
}

// Summarize aggregates a Result's pricing buffer into one Totals row per
// scenario x tariff pair.
func Summarize(r *Result) []Totals {
	byKey := map[[2]string]*Totals{}
	var order [][2]string

	for _, row := range r.Pricing {
		key := [2]string{string(row.Scenario), string(row.Tariff)}
		t, ok := byKey[key]
		if !ok {
			t = &Totals{Scenario: row.Scenario, Tariff: row.Tariff}
			byKey[key] = t
			order = append(order, key)
		}
		t.TotalEnergyMWh += row.EnergyMWh
		t.TotalPLN += row.Total
		t.NettoTotalPLN += row.NettoTotal
		t.VATPLN += row.VAT
	}

	out := make([]Totals, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}
