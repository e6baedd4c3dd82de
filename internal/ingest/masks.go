// Package ingest implements C1, the Ingestor / Mask Builder: it joins the
// calendar axis, load, production and market prices, builds the per-hour
// tariff-zone and peak-fee masks, and computes surplus/deficit.
//
// Mask construction is grounded on
// _examples/original_source/src/energia_prep2/calc/01_ingest.py
// (_build_peak_masks_24h_am_pm / _mask_from_se) and on the teacher's
// wrap-around window check in
// _examples/brianmickel-battery-backtest/internal/strategy/schedule.go
// (ScheduleStrategy.inWindow), generalized from a single-instant predicate
// to a full 24-length mask vector.
package ingest

import (
	"fmt"

	"energy-core/internal/core"
	"energy-core/internal/params"
)

// hoursInWindow returns the set of hours in [0,24) covered by a window on
// the 24-hour ring. start==end==0 means empty (spec §4.2).
func hoursInWindow(w params.WindowSpec) map[int]bool {
	out := map[int]bool{}
	if w.Start == 0 && w.End == 0 {
		return out
	}
	if w.Start == w.End {
		// A non-degenerate full-ring window (start==end, both != 0) covers all 24 hours.
		for h := 0; h < 24; h++ {
			out[h] = true
		}
		return out
	}
	if w.Start < w.End {
		for h := w.Start; h < w.End; h++ {
			out[h] = true
		}
		return out
	}
	// Wrap past midnight: [start,24) U [0,end).
	for h := w.Start; h < 24; h++ {
		out[h] = true
	}
	for h := 0; h < w.End; h++ {
		out[h] = true
	}
	return out
}

// ZoneMasks24 is the 24-length {am,pm,off} mask for one (month,mode).
type ZoneMasks24 struct {
	AM  [24]float64
	PM  [24]float64
	Off [24]float64
}

// BuildZoneMasks24 builds the per-hour AM/PM/OFF mask vectors for one
// (month,mode) given its morning and afternoon windows (spec §4.2):
//   - if both windows are empty: all-off
//   - else: windows must not overlap, and the three masks must sum to 24
//     hours across the day (every hour covered exactly once).
func BuildZoneMasks24(morn, aft params.WindowSpec) (ZoneMasks24, error) {
	var out ZoneMasks24

	mornHours := hoursInWindow(morn)
	aftHours := hoursInWindow(aft)

	if len(mornHours) == 0 && len(aftHours) == 0 {
		for h := 0; h < 24; h++ {
			out.Off[h] = 1
		}
		return out, nil
	}

	for h := range mornHours {
		if aftHours[h] {
			return ZoneMasks24{}, core.NewDataShapeError(fmt.Sprintf("morn/aft window overlap at hour %d", h), 0, 0)
		}
	}

	for h := 0; h < 24; h++ {
		switch {
		case mornHours[h]:
			out.AM[h] = 1
		case aftHours[h]:
			out.PM[h] = 1
		default:
			out.Off[h] = 1
		}
	}

	total := len(mornHours) + len(aftHours) + (24 - len(mornHours) - len(aftHours))
	if total != 24 {
		return ZoneMasks24{}, core.NewDataShapeError("zone mask does not sum to 24", total, 24)
	}
	return out, nil
}

// BuildPeakFeeMask24 builds the 24-length capacity-fee peak mask for one
// (month,mode); same window-family rule as BuildZoneMasks24 but with a
// single window instead of two.
func BuildPeakFeeMask24(peak params.WindowSpec) [24]float64 {
	var out [24]float64
	for h := range hoursInWindow(peak) {
		out[h] = 1
	}
	return out
}
