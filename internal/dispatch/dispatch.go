// Package dispatch implements C3, the Commit/Dispatch stage: hour-level
// realization of production/load coverage and proposer intent under a
// strict priority order, split BESS pools, conversion efficiencies, idle
// self-discharge, and post-hoc grid-cap enforcement with reversal.
//
// Grounded on the teacher's battery physics in
// _examples/brianmickel-battery-backtest/internal/model/battery.go
// (ApplyDispatch/ClipDispatch: power/SOC clamping, efficiency conversion,
// the "request then clip to feasible" idiom) generalized from one battery
// to two pools with a fixed priority order and cap-reversal semantics per
// spec §4.4.
package dispatch

import (
	"energy-core/internal/core"
	"energy-core/internal/model"
)

// State is the mutable per-run dispatch context carried across hours
// (spec §9: "use a single mutable context structure passed through the
// loop; do not hide it in global state").
type State struct {
	SOCOze  float64 // MWh
	SOCArbi float64 // MWh
}

// Run executes C3 over the full hourly and proposer buffers, returning one
// model.CommitRow per hour and the final dispatch state. arbiDisToLoad
// mirrors the consolidated policy's arbi_dis_to_load flag (spec §4.4 step 2).
func Run(hours []model.HourRow, proposals []model.ProposerRow, init State, arbiDisToLoad bool) ([]model.CommitRow, State, error) {
	if len(hours) != len(proposals) {
		return nil, State{}, core.NewDataShapeError("hourly vs proposer buffer length", len(proposals), len(hours))
	}

	st := init
	out := make([]model.CommitRow, len(hours))

	for i := range hours {
		row, next := commitHour(hours[i], proposals[i], st, arbiDisToLoad)
		out[i] = row
		st = next
	}

	return out, st, nil
}

func commitHour(h model.HourRow, p model.ProposerRow, st State, arbiDisToLoad bool) (model.CommitRow, State) {
	bess := h.Caps
	var c model.CommitRow

	c.SOCOzeBefore = st.SOCOze
	c.SOCArbiBefore = st.SOCArbi

	chBudget := bess.CapBessChNet
	disBudget := bess.CapBessDisNet

	// 1. Absorb surplus: OZE first, then ARBI, then export.
	surplus := h.SurplusNet
	toOze := minf(surplus, bess.EmaxOze-st.SOCOze)
	toOze = core.ClampNonNegative(toOze)
	st.SOCOze += toOze
	surplus -= toOze

	toArbiFromSurplus := minf(surplus, bess.EmaxArbi-st.SOCArbi, chBudget)
	toArbiFromSurplus = core.ClampNonNegative(toArbiFromSurplus)
	st.SOCArbi += toArbiFromSurplus
	chBudget -= toArbiFromSurplus
	surplus -= toArbiFromSurplus

	c.ChFromSurplus = toOze + toArbiFromSurplus
	exportFromSurplus := core.ClampNonNegative(surplus)

	// 2. Cover deficit: OZE first, then optionally ARBI, then import.
	deficit := h.DeficitNet
	fromOze := minf(deficit, st.SOCOze)
	fromOze = core.ClampNonNegative(fromOze)
	st.SOCOze -= fromOze
	deficit -= fromOze
	c.LossConvDisToLoad += fromOze * (1/bess.EtaDis - 1)

	fromArbiToLoad := 0.0
	if deficit > 0 && arbiDisToLoad {
		fromArbiToLoad = minf(deficit, st.SOCArbi, disBudget)
		fromArbiToLoad = core.ClampNonNegative(fromArbiToLoad)
		st.SOCArbi -= fromArbiToLoad
		disBudget -= fromArbiToLoad
		deficit -= fromArbiToLoad
		c.LossConvDisToLoad += fromArbiToLoad * (1/bess.EtaDis - 1)
	}
	c.DisToLoad = fromOze + fromArbiToLoad
	importForLoad := core.ClampNonNegative(deficit)

	// 3. Arbitrage discharge to grid (from proposer).
	netNeeded := p.PropDisAC / bess.EtaDis
	netAvail := minf(st.SOCArbi, disBudget)
	netUsed := minf(netNeeded, netAvail)
	netUsed = core.ClampNonNegative(netUsed)
	acRealizedDis := netUsed * bess.EtaDis
	st.SOCArbi -= netUsed
	disBudget -= netUsed
	c.DisToGrid = netUsed
	c.LossConvDisToGrid = netUsed - acRealizedDis
	exportFromArbi := acRealizedDis

	// 4. Arbitrage charge from grid (from proposer).
	netNeededCh := p.PropChAC * bess.EtaCh
	netAvailCh := minf(bess.EmaxArbi-st.SOCArbi, chBudget)
	netStored := minf(netNeededCh, netAvailCh)
	netStored = core.ClampNonNegative(netStored)
	acRealizedCh := netStored / bess.EtaCh
	st.SOCArbi += netStored
	chBudget -= netStored
	c.ChFromGrid = netStored
	c.LossConvCh = acRealizedCh - netStored
	importForArbi := acRealizedCh

	// 5. Enforce grid caps on the AC sums, with reversal.
	if exportFromSurplus+exportFromArbi > bess.CapGridExportAC {
		c.BindExportCap = true
		over := exportFromSurplus + exportFromArbi - bess.CapGridExportAC
		cutArbi := minf(over, exportFromArbi)
		cutNet := cutArbi / bess.EtaDis
		exportFromArbi -= cutArbi
		st.SOCArbi += cutNet // revert SOC, restore discharge budget
		c.DisToGrid -= cutNet
		c.LossConvDisToGrid -= cutNet - cutArbi
		c.CapBlockedDisAC = cutArbi
		over -= cutArbi
		if over > 0 {
			cut := minf(over, exportFromSurplus)
			exportFromSurplus -= cut
			c.WastedSurplusDueToExportCap += cut
		}
	}
	if importForLoad+importForArbi > bess.CapGridImportAC {
		c.BindImportCap = true
		over := importForLoad + importForArbi - bess.CapGridImportAC
		cutArbi := minf(over, importForArbi)
		importForArbi -= cutArbi
		revertedNet := cutArbi * bess.EtaCh
		st.SOCArbi -= revertedNet // revert SOC, restore charge budget
		c.ChFromGrid -= revertedNet
		c.LossConvCh -= cutArbi - revertedNet
		c.CapBlockedChAC = cutArbi
		over -= cutArbi
		if over > 0 {
			cut := minf(over, importForLoad)
			importForLoad -= cut
			c.UnservedLoadAfterCap += cut
		}
	}

	c.ExportFromSurplus = core.ClampNonNegative(exportFromSurplus)
	c.ExportFromArbi = core.ClampNonNegative(exportFromArbi)
	c.ImportForLoad = core.ClampNonNegative(importForLoad)
	c.ImportForArbi = core.ClampNonNegative(importForArbi)
	c.LossConvCh = core.ClampNonNegative(c.LossConvCh)
	c.LossConvDisToGrid = core.ClampNonNegative(c.LossConvDisToGrid)

	// 6. Idle self-discharge.
	socOzeBeforeIdle := st.SOCOze
	socArbiBeforeIdle := st.SOCArbi
	st.SOCOze *= 1 - bess.LambdaH
	st.SOCArbi *= 1 - bess.LambdaH
	c.LossIdleOze = socOzeBeforeIdle - st.SOCOze
	c.LossIdleArbi = socArbiBeforeIdle - st.SOCArbi

	c.SOCOzeAfter = st.SOCOze
	c.SOCArbiAfter = st.SOCArbi
	if bess.EmaxOze > 0 {
		c.SOCOzePct = st.SOCOze / bess.EmaxOze
	}
	if bess.EmaxArbi > 0 {
		c.SOCArbiPct = st.SOCArbi / bess.EmaxArbi
	}

	// Cash flow (spec §3/§4.4): non-finite prices contribute 0 here, but
	// the HourRow price columns themselves are left untouched.
	priceImport := core.FiniteOrZero(h.PriceImport)
	priceExport := core.FiniteOrZero(h.PriceExport)

	c.RevArbiToGrid = c.ExportFromArbi * priceExport
	c.RevSurplusExport = c.ExportFromSurplus * priceExport
	c.CostGridToArbi = c.ImportForArbi * priceImport
	c.CostImportForLoad = c.ImportForLoad * priceImport
	c.CashflowArbi = c.RevArbiToGrid - c.CostGridToArbi
	c.CashflowNet = c.CashflowArbi + c.RevSurplusExport - c.CostImportForLoad

	return c, st
}

func minf(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
