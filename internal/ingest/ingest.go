package ingest

import (
	"math"
	"sort"

	"energy-core/internal/core"
	"energy-core/internal/model"
	"energy-core/internal/params"
)

// PriceSeries carries the hourly import/export price vectors, aligned 1:1
// with the calendar axis. NaN entries are permitted (spec §6: "may be NaN,
// treated as 0 in aggregates") and must reach HourRow unmodified.
type PriceSeries struct {
	Import []float64
	Export []float64
}

// ProductionSeries carries the three unit-capacity generator series and the
// consumption series, already interpolated onto the UTC axis but not yet
// scaled; Build applies the production and consumption multipliers.
type ProductionSeries struct {
	PV1, PV2, Wind []float64
	Load           []float64
}

// Build runs C1 over an already-aligned calendar axis and series, producing
// one model.HourRow per hour plus the per-day bonus-hour masks (spec §4.2).
func Build(calendar []model.HourStamp, prices PriceSeries, prod ProductionSeries, cons *params.Consolidated) ([]model.HourRow, error) {
	n := len(calendar)
	if n == 0 {
		return nil, core.NewDataShapeError("calendar axis", 0, 0)
	}
	if len(prices.Import) != n || len(prices.Export) != n {
		return nil, core.NewDataShapeError("price series", len(prices.Import), n)
	}
	if len(prod.PV1) != n || len(prod.PV2) != n || len(prod.Wind) != n || len(prod.Load) != n {
		return nil, core.NewDataShapeError("production/load series", len(prod.Load), n)
	}

	zoneCache := map[zoneCacheKey]ZoneMasks24{}
	peakCache := map[PeakFeeScheduleKeyAlias][24]float64{}

	rows := make([]model.HourRow, n)
	for i, stamp := range calendar {
		mode := stamp.Mode()

		zkey := zoneCacheKey{month: int(stamp.Month), mode: mode}
		zm, ok := zoneCache[zkey]
		if !ok {
			// All three tariffs share the same am/pm/off partition at the
			// hourly-axis level in this design (distribution-rate values
			// differ by tariff, the zone partition does not); use B21's
			// schedule row as the canonical partition source, falling back
			// to B22, then B23, if B21 is absent.
			sched, err := lookupZoneSchedule(cons, int(stamp.Month), mode)
			if err != nil {
				return nil, err
			}
			zm, err = BuildZoneMasks24(sched.Morn, sched.Aft)
			if err != nil {
				return nil, err
			}
			zoneCache[zkey] = zm
		}

		pkey := PeakFeeScheduleKeyAlias{month: int(stamp.Month), mode: mode}
		pm, ok := peakCache[pkey]
		if !ok {
			window, exists := cons.PeakFeeSchedule[params.PeakFeeScheduleKey{Month: int(stamp.Month), Mode: mode}]
			if !exists {
				return nil, core.NewParameterError("peak_fee_schedule", "missing row for month/mode")
			}
			pm = BuildPeakFeeMask24(window)
			peakCache[pkey] = pm
		}

		prodTotal := prod.PV1[i]*cons.Multipliers.ProdPV1 + prod.PV2[i]*cons.Multipliers.ProdPV2 + prod.Wind[i]*cons.Multipliers.ProdWind
		load := prod.Load[i] * cons.Multipliers.ConsumptionFraction

		surplus := math.Max(prodTotal-load, 0)
		deficit := math.Max(load-prodTotal, 0)

		rows[i] = model.HourRow{
			Calendar:    stamp,
			PriceImport: prices.Import[i],
			PriceExport: prices.Export[i],
			MaskAM:      zm.AM[stamp.Hour],
			MaskPM:      zm.PM[stamp.Hour],
			MaskOff:     zm.Off[stamp.Hour],
			MaskPeakFee: pm[stamp.Hour],
			ProdTotal:   prodTotal,
			Load:        load,
			SurplusNet:  surplus,
			DeficitNet:  deficit,
			Caps:        cons.BESS,
		}
	}

	if err := assignBonusHours(rows, cons.ArbitragePolicy.BonusHoursCh, cons.ArbitragePolicy.BonusHoursDis); err != nil {
		return nil, err
	}

	return rows, nil
}

type zoneCacheKey struct {
	month int
	mode  model.Mode
}

// PeakFeeScheduleKeyAlias mirrors params.PeakFeeScheduleKey; kept distinct
// so the local cache key doesn't depend on the params package's key shape.
type PeakFeeScheduleKeyAlias struct {
	month int
	mode  model.Mode
}

func lookupZoneSchedule(cons *params.Consolidated, month int, mode model.Mode) (params.RawDistScheduleForm, error) {
	for _, tariff := range []model.Tariff{model.TariffB21, model.TariffB22, model.TariffB23} {
		if row, ok := cons.DistSchedule[params.DistScheduleKey{Tariff: tariff, Month: month, Mode: mode}]; ok {
			return row, nil
		}
	}
	return params.RawDistScheduleForm{}, core.NewParameterError("dist_schedule", "no schedule row for any tariff at this month/mode")
}

// assignBonusHours marks bonus_hrs_ch/bonus_hrs_dis per calendar day (spec
// §4.2): charge bonus hours prefer mask_off=1, falling back to non-off
// ("peak-zone") hours; discharge bonus hours prefer non-off hours, falling
// back to off hours. Ties within a preference class break on earlier hour.
func assignBonusHours(rows []model.HourRow, wCh, wDis int) error {
	if wCh == 0 && wDis == 0 {
		return nil
	}

	byDay := map[string][]int{}
	order := []string{}
	for i, r := range rows {
		key := r.Calendar.DateKey()
		if _, ok := byDay[key]; !ok {
			order = append(order, key)
		}
		byDay[key] = append(byDay[key], i)
	}

	for _, day := range order {
		idxs := byDay[day]
		sort.Ints(idxs)

		pick := func(preferOff bool, want int) []int {
			var preferred, fallback []int
			for _, i := range idxs {
				isOff := rows[i].MaskOff > 0
				if isOff == preferOff {
					preferred = append(preferred, i)
				} else {
					fallback = append(fallback, i)
				}
			}
			chosen := append([]int{}, preferred...)
			if len(chosen) < want {
				chosen = append(chosen, fallback...)
			}
			if len(chosen) > want {
				chosen = chosen[:want]
			}
			return chosen
		}

		for _, i := range pick(true, wCh) {
			rows[i].BonusHrsCh = 1
		}
		for _, i := range pick(false, wDis) {
			rows[i].BonusHrsDis = 1
		}
	}
	return nil
}
