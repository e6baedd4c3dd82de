// Package pricing implements C4, Pricing & Tariff: loss valuation,
// opportunity cost of cap bindings, and full invoice-style itemization per
// scenario x tariff, including the per-day peak-ratio coefficient K.
//
// Grounded on the "sum of applicable rate components" idiom in
// _examples/cepro-simt-flux/config/timed_charge.go (TimedCharge.perKwhRate /
// SumTimedCharges) and on the concrete tariff field names and K-coefficient
// bucket/A-value table in
// _examples/original_source/src/energia_prep2/calc/00_snapshot.py. As with
// the proposer, calc/04_pricing.py and calc/04b_pricing_dyst.py were
// filtered to stubs during distillation; the computation itself follows
// spec §4.5 directly.
package pricing

import (
	"fmt"
	"math"

	"energy-core/internal/core"
	"energy-core/internal/model"
	"energy-core/internal/params"
)

// Price runs C4 over the hourly and commit buffers, returning one
// model.PricingRow per (hour, scenario, tariff).
func Price(hours []model.HourRow, commit []model.CommitRow, cons *params.Consolidated) ([]model.PricingRow, error) {
	n := len(hours)
	if len(commit) != n {
		return nil, core.NewDataShapeError("hourly vs commit buffer length", len(commit), n)
	}

	monthHours := monthHourCounts(hours)

	var out []model.PricingRow
	for _, scenario := range model.AllScenarios {
		energy := scenarioEnergy(scenario, hours, commit)
		kPerDay := dailyKCoefficients(hours, energy, cons.KParameter)

		for _, tariff := range model.AllTariffs {
			rates, ok := cons.DistRates[tariff]
			if !ok {
				return nil, core.NewParameterError("dist_rates", fmt.Sprintf("missing tariff %s", tariff))
			}

			for i, h := range hours {
				monthKey := monthKeyOf(h)
				hoursInMonth := float64(monthHours[monthKey])

				row := model.PricingRow{Index: i, Scenario: scenario, Tariff: tariff}
				row.EnergyMWh = energy[i]

				priceImport := core.FiniteOrZero(h.PriceImport)

				// Commodity.
				if cons.Contract.Model == "fixed" {
					row.Commodity = energy[i] * cons.Contract.FixedPricePLNPerMWh
				} else {
					row.Commodity = energy[i] * priceImport * (1 + cons.Contract.DeltaFraction)
				}

				// Commercial fees.
				row.CommercialVar = energy[i] * cons.Contract.VarMarginPLNPerMWh
				row.CommercialFixed = energy[i] * cons.Contract.FixMarginPLNPerMWh
				if hoursInMonth > 0 {
					row.TradingFee = cons.Contract.MonthlyTradingFeePLN / hoursInMonth
				}

				// Distribution variable.
				zoneRate := zoneRateFor(tariff, h, rates)
				row.DistributionVar = energy[i] * zoneRate

				// Distribution fixed.
				if hoursInMonth > 0 {
					monthlyFixed := (rates.FixedPerKWMonth+rates.TransPerKWMonth)*cons.Contract.ContractPowerKW + rates.AbonPLNMonth
					row.DistributionFixed = monthlyFixed / hoursInMonth
				}

				// System fees.
				row.SystemOzeKog = energy[i] * (cons.SystemFees.RateOZEPLNPerMWh + cons.SystemFees.RateKogPLNPerMWh)
				if h.MaskPeakFee > 0 {
					dayKey := h.Calendar.DateKey()
					deltaS := kPerDay[dayKey]
					row.KBucket = cons.KParameter.Bucket(deltaS)
					row.KCoefficient = cons.KParameter.Coefficient(deltaS)
					row.CapacityFee = energy[i] * cons.SystemFees.RateMocPLNPerMWh * row.KCoefficient
				}

				// Excise.
				row.Excise = energy[i] * cons.Fiscal.ExcisePLNPerMWh

				row.NettoTotal = row.Commodity + row.CommercialVar + row.CommercialFixed + row.TradingFee +
					row.DistributionVar + row.DistributionFixed + row.SystemOzeKog + row.CapacityFee + row.Excise
				row.VAT = row.NettoTotal * cons.Fiscal.VATFraction
				row.Total = row.NettoTotal + row.VAT

				// Loss valuation (scenario/tariff-independent quantities:
				// every scenario/tariff row of an hour carries the same
				// values, so every persisted stage-04 row is self-contained
				// per spec §6).
				priceExport := core.FiniteOrZero(h.PriceExport)
				cm := commit[i]
				row.PLNLossConvCh = cm.LossConvCh * priceImport
				row.PLNLossConvDisToGrid = cm.LossConvDisToGrid * priceExport
				row.PLNLossConvDisToLoad = cm.LossConvDisToLoad * priceImport
				row.PLNLossIdleArbi = cm.LossIdleArbi * priceImport
				row.PLNLossIdleOze = cm.LossIdleOze * priceExport
				row.PLNWastedSurplusCap = cm.WastedSurplusDueToExportCap * priceExport
				row.PLNCapBlockedDisAC = cm.CapBlockedDisAC * priceExport
				row.PLNCapBlockedChAC = cm.CapBlockedChAC * priceImport
				row.PLNUnservedLoadAfterCap = cm.UnservedLoadAfterCap * priceImport

				out = append(out, row)
			}
		}
	}

	return out, nil
}

// scenarioEnergy returns the per-hour billed import quantity for a scenario
// (spec §4.5): grid = load; oze_grid = deficit_net; mag_oze = import_for_load.
func scenarioEnergy(scenario model.Scenario, hours []model.HourRow, commit []model.CommitRow) []float64 {
	out := make([]float64, len(hours))
	for i, h := range hours {
		switch scenario {
		case model.ScenarioGrid:
			out[i] = h.Load
		case model.ScenarioOzeGrid:
			out[i] = h.DeficitNet
		case model.ScenarioMagOze:
			out[i] = commit[i].ImportForLoad
		}
	}
	return out
}

// zoneRateFor selects the distribution variable rate per tariff's zone
// table (spec §4.5): B23 uses am/pm/off directly; B22 folds am+pm into
// "day" (same rate) vs "off" as night; B21 is a single flat rate applied
// regardless of zone.
func zoneRateFor(tariff model.Tariff, h model.HourRow, rates params.DistRateSet) float64 {
	switch tariff {
	case model.TariffB21:
		return rates.RateAM
	case model.TariffB22:
		if h.MaskOff > 0 {
			return rates.RateOff
		}
		return rates.RateAM
	default: // B23
		switch {
		case h.MaskAM > 0:
			return rates.RateAM
		case h.MaskPM > 0:
			return rates.RatePM
		default:
			return rates.RateOff
		}
	}
}

func monthKeyOf(h model.HourRow) string {
	return fmt.Sprintf("%04d-%02d", h.Calendar.Year, int(h.Calendar.Month))
}

func monthHourCounts(hours []model.HourRow) map[string]int {
	out := map[string]int{}
	for _, h := range hours {
		out[monthKeyOf(h)]++
	}
	return out
}

// dailyKCoefficients computes ΔS per day from the scenario's own billed
// energy series (spec §4.5): average energy in peak-fee hours vs other
// hours of the day, with the degenerate rules for empty denominators.
func dailyKCoefficients(hours []model.HourRow, energy []float64, _ model.KParameter) map[string]float64 {
	type acc struct {
		peakSum, peakN, offSum, offN float64
	}
	byDay := map[string]*acc{}
	order := []string{}
	for i, h := range hours {
		key := h.Calendar.DateKey()
		a, ok := byDay[key]
		if !ok {
			a = &acc{}
			byDay[key] = a
			order = append(order, key)
		}
		if h.MaskPeakFee > 0 {
			a.peakSum += energy[i]
			a.peakN++
		} else {
			a.offSum += energy[i]
			a.offN++
		}
	}

	out := map[string]float64{}
	for _, key := range order {
		a := byDay[key]
		var avgPeak, avgOff float64
		if a.peakN > 0 {
			avgPeak = a.peakSum / a.peakN
		}
		if a.offN > 0 {
			avgOff = a.offSum / a.offN
		}
		switch {
		case a.offN == 0 || a.peakN == 0:
			// No off hours or no peak-fee hours at all (spec §4.5):
			// degenerate, treat as 0 (the empty-peak-window case is the
			// open question decided in DESIGN.md: ΔS=0 when there is
			// nothing to compare against).
			out[key] = 0
		case avgOff == 0 && avgPeak == 0:
			out[key] = 0
		case avgOff == 0 && avgPeak > 0:
			out[key] = math.Inf(1)
		default:
			out[key] = (avgPeak/avgOff - 1) * 100
		}
	}
	return out
}
