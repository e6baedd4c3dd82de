// Package validate implements C5, the Validator: invariant checks over the
// buffers a run produced, run in-process immediately after C4 rather than
// as a later SQL pass over already-persisted rows.
//
// Grounded on _examples/original_source/src/energia_prep2/calc/06_validate.py
// (_check_02_proposer/_check_03_commit/_check_04_pricing's finiteness,
// non-negativity, SOC-bound and row-count-parity predicates), translated
// from SQL predicates over persisted tables into Go checks over the
// in-memory buffers.
package validate

import (
	"fmt"
	"math"

	"energy-core/internal/core"
	"energy-core/internal/model"
)

// Run checks every universal invariant from spec §8 over one run's buffers.
// It returns the first violation found wrapped in the appropriate taxonomy
// type, or nil if every invariant holds.
func Run(hours []model.HourRow, proposals []model.ProposerRow, commit []model.CommitRow, pricing []model.PricingRow, cyclesPerDay int) error {
	n := len(hours)
	if len(proposals) != n || len(commit) != n {
		return core.NewDataShapeError("row-count parity across stage buffers", len(commit), n)
	}

	for i, h := range hours {
		sum := h.MaskAM + h.MaskPM + h.MaskOff
		if math.Abs(sum-1) > core.Eps {
			return core.NewDataShapeError(fmt.Sprintf("mask_am+mask_pm+mask_off != 1 at hour %d", i), 0, 0)
		}
	}

	cyclesPerDayCount := map[string]int{}
	for i, h := range hours {
		cyclesPerDayCount[h.Calendar.DateKey()] = proposals[i].CycleCount
	}
	for day, cycles := range cyclesPerDayCount {
		if cycles > cyclesPerDay {
			return core.NewParameterError("daily cycle count", fmt.Sprintf("%s realized %d cycles, budget %d", day, cycles, cyclesPerDay))
		}
	}

	for i, p := range proposals {
		if p.PropChAC < 0 {
			return core.NewNumericError("prop_ch_ac negative", i)
		}
		if p.PropDisAC < 0 {
			return core.NewNumericError("prop_dis_ac negative", i)
		}
		if !core.IsFinite(p.PropChAC) || !core.IsFinite(p.PropDisAC) {
			return core.NewNumericError("proposer flow non-finite", i)
		}
	}

	for i, c := range commit {
		hr := hours[i]
		if c.SOCOzeAfter < -core.Eps || c.SOCOzeAfter > hr.Caps.EmaxOze+core.Eps {
			return core.NewNumericError("soc_oze out of bounds", i)
		}
		if c.SOCArbiAfter < -core.Eps || c.SOCArbiAfter > hr.Caps.EmaxArbi+core.Eps {
			return core.NewNumericError("soc_arbi out of bounds", i)
		}

		flows := []float64{
			c.ChFromSurplus, c.ChFromGrid, c.DisToLoad, c.DisToGrid,
			c.ImportForLoad, c.ImportForArbi, c.ExportFromSurplus, c.ExportFromArbi,
			c.LossIdleOze, c.LossIdleArbi, c.LossConvCh, c.LossConvDisToGrid, c.LossConvDisToLoad,
			c.WastedSurplusDueToExportCap, c.UnservedLoadAfterCap,
		}
		for _, f := range flows {
			if f < -core.Eps {
				return core.NewNumericError("negative flow or loss", i)
			}
			if !core.IsFinite(f) {
				return core.NewNumericError("non-finite flow or loss", i)
			}
		}

		if c.ExportFromSurplus+c.ExportFromArbi > hr.Caps.CapGridExportAC+core.Eps {
			return core.NewParameterError("export cap", fmt.Sprintf("hour %d exceeds cap_grid_export_ac", i))
		}
		if c.ImportForLoad+c.ImportForArbi > hr.Caps.CapGridImportAC+core.Eps {
			return core.NewParameterError("import cap", fmt.Sprintf("hour %d exceeds cap_grid_import_ac", i))
		}

		wantArbi := c.RevArbiToGrid - c.CostGridToArbi
		if math.Abs(c.CashflowArbi-wantArbi) > core.Eps {
			return core.NewNumericError("cashflow_arbi mismatch", i)
		}
		wantNet := c.CashflowArbi + c.RevSurplusExport - c.CostImportForLoad
		if math.Abs(c.CashflowNet-wantNet) > core.Eps {
			return core.NewNumericError("cashflow_net mismatch", i)
		}
	}

	for _, row := range pricing {
		if !core.IsFinite(row.Total) || !core.IsFinite(row.NettoTotal) || !core.IsFinite(row.VAT) {
			return core.NewNumericError(fmt.Sprintf("pricing total non-finite (%s/%s)", row.Scenario, row.Tariff), row.Index)
		}
	}

	return nil
}
