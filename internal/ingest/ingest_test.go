package ingest

import (
	"testing"
	"time"

	"energy-core/internal/model"
	"energy-core/internal/params"
)

func minimalConsolidated(t *testing.T) *params.Consolidated {
	t.Helper()
	var distSchedules []params.RawDistScheduleForm
	var peakFeeSchedules []params.RawPeakFeeScheduleForm
	for _, tariff := range model.AllTariffs {
		for month := 1; month <= 12; month++ {
			for _, mode := range []model.Mode{model.ModeWork, model.ModeFree} {
				distSchedules = append(distSchedules, params.RawDistScheduleForm{
					Tariff: tariff, Month: month, Mode: mode,
					Morn: params.WindowSpec{Start: 6, End: 10},
					Aft:  params.WindowSpec{Start: 17, End: 21},
				})
			}
		}
	}
	for month := 1; month <= 12; month++ {
		for _, mode := range []model.Mode{model.ModeWork, model.ModeFree} {
			peakFeeSchedules = append(peakFeeSchedules, params.RawPeakFeeScheduleForm{
				Month: month, Mode: mode, Peak: params.WindowSpec{Start: 17, End: 21},
			})
		}
	}
	var distRates []params.RawDistRatesForm
	for _, tariff := range model.AllTariffs {
		distRates = append(distRates, params.RawDistRatesForm{Tariff: tariff, RateAM: 100, RatePM: 150, RateOff: 50})
	}

	forms := params.Forms{
		BESS: params.RawBESSForm{
			EmaxTotalMWh: 10, ArbiFractionPct: 30,
			ChargeEfficiencyPct: 95, DischargeEfficiencyPct: 95,
			HoursToFullCh: 4, HoursToFullDis: 4,
		},
		Contract: params.RawContractForm{
			ImportPowerMW: 2, ExportPowerMW: 2, ContractPowerKW: 500,
			Model: "fixed", FixedPricePLNPerMWh: 300,
		},
		Fiscal:          params.RawFiscalForm{VATPct: 23, ExcisePLNPerMWh: 5},
		ArbitragePolicy: params.RawArbitragePolicyForm{CyclesPerDay: 1, BaseMinProfit: 50},
		KParameter: params.RawKParameterForm{
			Thresholds: [3]float64{5, 10, 15},
			A:          map[string]float64{"K1": 0.17, "K2": 0.5, "K3": 0.83, "K4": 1.0},
		},
		DistSchedules:    distSchedules,
		PeakFeeSchedules: peakFeeSchedules,
		DistRates:        distRates,
	}

	cons, err := params.Consolidate(forms)
	if err != nil {
		t.Fatalf("consolidate: %v", err)
	}
	return cons
}

func TestBuild_ProducesOneRowPerHourWithMasks(t *testing.T) {
	cons := minimalConsolidated(t)
	loc := time.UTC
	calendar := model.NewCalendarAxis(
		time.Date(2026, 3, 2, 0, 0, 0, 0, loc),
		time.Date(2026, 3, 3, 0, 0, 0, 0, loc),
		loc,
		func(string) bool { return true },
		func(string) bool { return false },
	)

	n := len(calendar)
	flat := make([]float64, n)
	rows, err := Build(calendar, PriceSeries{Import: flat, Export: flat}, ProductionSeries{PV1: flat, PV2: flat, Wind: flat, Load: flat}, cons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != n {
		t.Fatalf("len(rows) = %d, want %d", len(rows), n)
	}
	for i, r := range rows {
		sum := r.MaskAM + r.MaskPM + r.MaskOff
		if sum != 1 {
			t.Errorf("hour %d: mask_am+mask_pm+mask_off = %v, want 1", i, sum)
		}
		if r.Caps.EmaxArbi != cons.BESS.EmaxArbi {
			t.Errorf("hour %d: caps not broadcast from consolidated BESS", i)
		}
	}
}

func TestBuild_SeriesLengthMismatchFails(t *testing.T) {
	cons := minimalConsolidated(t)
	calendar := model.NewCalendarAxis(
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		time.UTC,
		func(string) bool { return true },
		func(string) bool { return false },
	)
	short := make([]float64, len(calendar)-1)
	full := make([]float64, len(calendar))
	_, err := Build(calendar, PriceSeries{Import: short, Export: full}, ProductionSeries{PV1: full, PV2: full, Wind: full, Load: full}, cons)
	if err == nil {
		t.Fatalf("expected error for mismatched price series length")
	}
}

func TestAssignBonusHours_PrefersOffForChargeNonOffForDischarge(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := make([]model.HourRow, 24)
	for h := 0; h < 24; h++ {
		rows[h] = model.HourRow{
			Calendar: model.HourStamp{TSLocal: day.Add(time.Duration(h) * time.Hour)},
			MaskOff:  0,
		}
		if h < 12 {
			rows[h].MaskOff = 1
		}
	}

	if err := assignBonusHours(rows, 2, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chCount, disCount := 0, 0
	for h := 0; h < 24; h++ {
		if rows[h].BonusHrsCh == 1 {
			chCount++
			if h >= 12 {
				t.Errorf("hour %d: charge bonus assigned to a non-off hour before off hours were exhausted", h)
			}
		}
		if rows[h].BonusHrsDis == 1 {
			disCount++
			if h < 12 {
				t.Errorf("hour %d: discharge bonus assigned to an off hour before non-off hours were exhausted", h)
			}
		}
	}
	if chCount != 2 {
		t.Errorf("charge bonus hours = %d, want 2", chCount)
	}
	if disCount != 2 {
		t.Errorf("discharge bonus hours = %d, want 2", disCount)
	}
}
