// Package proposer implements C2, the Arbitrage Proposer: a deterministic
// daily pairing of low-price import hours with high-price export hours,
// gated by profitability thresholds with hour- and SOC-dependent bonuses
// and a cycle budget.
//
// Grounded structurally on the teacher's day-grouping loop in
// _examples/brianmickel-battery-backtest/internal/strategy/oracle.go
// (optimizeDPByDay's single-pass day boundary detection) and on
// ScheduleStrategy's stateful per-call mutation style in schedule.go. The
// pairing/threshold/bonus rules themselves come from spec §4.3 directly:
// the equivalent original_source stage (calc/02_proposer.py) was filtered
// to a stub during distillation, so there is no literal Python source to
// translate here.
package proposer

import (
	"math"
	"sort"

	"energy-core/internal/core"
	"energy-core/internal/model"
)

// Propose runs C2 over the full hourly buffer, returning one
// model.ProposerRow per hour. initialSOCArbi is the absolute NET energy
// (MWh) in the ARBI pool carried in from the prior run's final state.
func Propose(rows []model.HourRow, policy model.ArbitragePolicy, bess model.BESSConfig, initialSOCArbi float64) ([]model.ProposerRow, error) {
	n := len(rows)
	if n == 0 {
		return nil, core.NewDataShapeError("hourly buffer", 0, 0)
	}

	out := make([]model.ProposerRow, n)
	for i := range out {
		out[i].PairLow = -1
		out[i].PairHigh = -1
	}

	days := groupByDay(rows)

	socSim := initialSOCArbi
	pending := 0.0
	capChACEff := math.Min(bess.CapGridImportAC, bess.CapBessChNet/bess.EtaCh)
	capDisACEff := math.Min(bess.CapGridExportAC, bess.CapBessDisNet*bess.EtaDis)

	for _, day := range days {
		pairLow, pairHigh := pairDay(rows, day, policy.CyclesPerDay)

		if !policy.AllowCarryOver {
			pending = 0 // first hour of each new date_key: reset pending, SOC_sim persists
		}
		cyclesToday := 0

		for _, i := range day {
			row := &out[i]
			if high, ok := pairLow[i]; ok {
				row.PairLow = high
				delta := rows[high].PriceExport - rows[i].PriceImport
				row.DeltaK = delta
				row.HasDeltaK = true
			}
			if low, ok := pairHigh[i]; ok {
				row.PairHigh = low
				if !row.HasDeltaK {
					row.DeltaK = rows[i].PriceExport - rows[low].PriceImport
					row.HasDeltaK = true
				}
			}

			isLow := row.PairLow >= 0
			isHigh := row.PairHigh >= 0

			if isLow {
				thrLow := policy.BaseMinProfit
				if rows[i].BonusHrsCh == 1 {
					thrLow += policy.HourBonusCh
				}
				if socSim <= policy.PLow*bess.EmaxArbi {
					thrLow += policy.SOCBonusCh
				}
				row.ThrLow = thrLow

				headroom := bess.EmaxArbi - socSim
				if row.DeltaK-thrLow >= 0 && headroom > 0 && cyclesToday < policy.CyclesPerDay {
					chargeNet := math.Min(capChACEff*bess.EtaCh, headroom)
					row.PropChAC = chargeNet / bess.EtaCh
					row.DecCh = true
					socSim += chargeNet
					pending += chargeNet
				}
			}

			if isHigh {
				thrHigh := policy.BaseMinProfit
				if rows[i].BonusHrsDis == 1 {
					thrHigh += policy.HourBonusDis
				}
				if socSim >= policy.PHigh*bess.EmaxArbi {
					thrHigh += policy.SOCBonusDis
				}
				row.ThrHigh = thrHigh

				if row.DeltaK-thrHigh >= 0 && socSim > 0 && cyclesToday < policy.CyclesPerDay {
					canDisNet := math.Min(capDisACEff/bess.EtaDis, socSim)
					if policy.ForceOrder {
						canDisNet = math.Min(canDisNet, pending)
					}
					row.PropDisAC = canDisNet * bess.EtaDis
					row.DecDis = true
					socSim -= canDisNet
					pending = core.ClampNonNegative(pending - canDisNet)
					if pending <= core.EpsEnergy {
						cyclesToday++
						pending = 0
					}
				}
			}

			row.SOCSim = socSim
			row.Pending = pending
			row.CycleCount = cyclesToday
		}
	}

	return out, nil
}

func groupByDay(rows []model.HourRow) [][]int {
	var days [][]int
	var cur []int
	var curKey string
	for i, r := range rows {
		key := r.Calendar.DateKey()
		if i == 0 {
			curKey = key
		}
		if key != curKey {
			days = append(days, cur)
			cur = nil
			curKey = key
		}
		cur = append(cur, i)
	}
	if len(cur) > 0 {
		days = append(days, cur)
	}
	return days
}

// pairDay selects up to K lowest-import and K highest-export hours within
// one day and greedily pairs them preserving time order (spec §4.3).
// Returns pairLow[lowIdx]=highIdx and pairHigh[highIdx]=lowIdx.
func pairDay(rows []model.HourRow, day []int, k int) (map[int]int, map[int]int) {
	lowCandidates := append([]int{}, day...)
	sort.SliceStable(lowCandidates, func(a, b int) bool {
		ia, ib := lowCandidates[a], lowCandidates[b]
		if rows[ia].PriceImport != rows[ib].PriceImport {
			return rows[ia].PriceImport < rows[ib].PriceImport
		}
		return ia < ib
	})
	if len(lowCandidates) > k {
		lowCandidates = lowCandidates[:k]
	}

	highCandidates := append([]int{}, day...)
	sort.SliceStable(highCandidates, func(a, b int) bool {
		ia, ib := highCandidates[a], highCandidates[b]
		if rows[ia].PriceExport != rows[ib].PriceExport {
			return rows[ia].PriceExport > rows[ib].PriceExport
		}
		return ia < ib
	})
	if len(highCandidates) > k {
		highCandidates = highCandidates[:k]
	}

	sort.Ints(lowCandidates)

	used := map[int]bool{}
	pairLow := map[int]int{}
	pairHigh := map[int]int{}

	for _, low := range lowCandidates {
		bestHigh := -1
		bestPrice := math.Inf(-1)
		for _, high := range highCandidates {
			if used[high] || high <= low {
				continue
			}
			if rows[high].PriceExport > bestPrice {
				bestPrice = rows[high].PriceExport
				bestHigh = high
			}
		}
		if bestHigh == -1 {
			continue
		}
		used[bestHigh] = true
		pairLow[low] = bestHigh
		pairHigh[bestHigh] = low
	}

	return pairLow, pairHigh
}
