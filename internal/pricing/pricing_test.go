package pricing

import (
	"testing"
	"time"

	"energy-core/internal/model"
	"energy-core/internal/params"
)

func TestPrice_KCoefficientSelection(t *testing.T) {
	// S6: peak hours all consume 6 MWh, off hours all consume 2 MWh,
	// delta_s = (6/2 - 1)*100 = 200%, which selects K4 (A=1.0) against
	// thresholds [5,10,15].
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	hours := make([]model.HourRow, 24)
	commit := make([]model.CommitRow, 24)
	for h := 0; h < 24; h++ {
		isPeak := h < 6
		load := 2.0
		var peakMask float64
		if isPeak {
			load = 6.0
			peakMask = 1
		}
		hours[h] = model.HourRow{
			Calendar: model.HourStamp{
				TSUTC: day.Add(time.Duration(h) * time.Hour), TSLocal: day.Add(time.Duration(h) * time.Hour),
				Year: 2026, Month: time.March, Day: 2, Hour: h,
			},
			Load:        load,
			MaskPeakFee: peakMask,
			MaskAM:      1,
		}
	}

	cons := &params.Consolidated{
		Contract:   params.Contract{Model: "fixed", ContractPowerKW: 1},
		Fiscal:     params.Fiscal{},
		SystemFees: params.RawSystemFeesForm{RateMocPLNPerMWh: 10},
		KParameter: model.KParameter{
			Thresholds: [3]float64{5, 10, 15},
			A:          map[string]float64{"K1": 0.17, "K2": 0.5, "K3": 0.83, "K4": 1.0},
		},
		DistRates: map[model.Tariff]params.DistRateSet{
			model.TariffB21: {},
			model.TariffB22: {},
			model.TariffB23: {},
		},
	}

	out, err := Price(hours, commit, cons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, row := range out {
		if row.Scenario != model.ScenarioGrid || row.Tariff != model.TariffB21 {
			continue
		}
		if hours[row.Index].MaskPeakFee == 0 {
			continue
		}
		found = true
		if row.KBucket != "K4" {
			t.Errorf("hour %d: k_bucket = %q, want K4", row.Index, row.KBucket)
		}
		if row.KCoefficient != 1.0 {
			t.Errorf("hour %d: k_coefficient = %v, want 1.0", row.Index, row.KCoefficient)
		}
		wantFee := row.EnergyMWh * 10 * 1.0
		if row.CapacityFee != wantFee {
			t.Errorf("hour %d: capacity_fee = %v, want %v", row.Index, row.CapacityFee, wantFee)
		}
	}
	if !found {
		t.Fatalf("no grid/B21 peak-hour rows found")
	}
}
