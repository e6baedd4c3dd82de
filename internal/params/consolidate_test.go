package params

import (
	"math"
	"testing"

	"energy-core/internal/model"
)

func TestRetainedFraction(t *testing.T) {
	got := retainedFraction(0.9, 24)
	want := math.Pow(0.9, 1.0/24)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("retainedFraction(0.9,24) = %v, want %v", got, want)
	}
	if got := retainedFraction(0, 24); got != 0 {
		t.Errorf("retainedFraction(0,24) = %v, want 0", got)
	}
}

func TestLambdaHFromBESS_PrefersHourlyThenDailyThenMonthly(t *testing.T) {
	hourly, err := lambdaHFromBESS(RawBESSForm{SelfDischargeHourlyPct: 0.1, SelfDischargeDailyPct: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hourly != 0.001 {
		t.Errorf("hourly lambda = %v, want 0.001", hourly)
	}

	daily, err := lambdaHFromBESS(RawBESSForm{SelfDischargeDailyPct: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDaily := 1 - retainedFraction(0.95, 24)
	if math.Abs(daily-wantDaily) > 1e-12 {
		t.Errorf("daily-derived lambda = %v, want %v", daily, wantDaily)
	}

	none, err := lambdaHFromBESS(RawBESSForm{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none != 0 {
		t.Errorf("lambda with nothing set = %v, want 0", none)
	}
}

func TestTimeToFull(t *testing.T) {
	if got, err := timeToFull(0, 4, "field"); err != nil || got != 4 {
		t.Errorf("timeToFull(0,4) = %v,%v want 4,nil", got, err)
	}
	if got, err := timeToFull(0.5, 0, "field"); err != nil || got != 2 {
		t.Errorf("timeToFull(0.5,0) = %v,%v want 2,nil", got, err)
	}
	if _, err := timeToFull(0, 0, "field"); err == nil {
		t.Errorf("expected error when neither c-rate nor hours-to-full is set")
	}
}

// fullForms builds a minimally valid Forms value: every required scalar
// populated and the full 72-row distribution schedule (3 tariffs x 12
// months x 2 modes) present.
func fullForms() Forms {
	var distSchedules []RawDistScheduleForm
	for _, tariff := range model.AllTariffs {
		for month := 1; month <= 12; month++ {
			for _, mode := range []model.Mode{model.ModeWork, model.ModeFree} {
				distSchedules = append(distSchedules, RawDistScheduleForm{
					Tariff: tariff, Month: month, Mode: mode,
					Morn: WindowSpec{Start: 6, End: 10},
					Aft:  WindowSpec{Start: 17, End: 21},
				})
			}
		}
	}
	var peakFeeSchedules []RawPeakFeeScheduleForm
	for month := 1; month <= 12; month++ {
		for _, mode := range []model.Mode{model.ModeWork, model.ModeFree} {
			peakFeeSchedules = append(peakFeeSchedules, RawPeakFeeScheduleForm{
				Month: month, Mode: mode, Peak: WindowSpec{Start: 17, End: 21},
			})
		}
	}
	var distRates []RawDistRatesForm
	for _, tariff := range model.AllTariffs {
		distRates = append(distRates, RawDistRatesForm{Tariff: tariff, RateAM: 100, RatePM: 150, RateOff: 50})
	}

	return Forms{
		BESS: RawBESSForm{
			EmaxTotalMWh: 10, ArbiFractionPct: 30,
			ChargeEfficiencyPct: 95, DischargeEfficiencyPct: 95,
			HoursToFullCh: 4, HoursToFullDis: 4,
		},
		Contract: RawContractForm{
			ImportPowerMW: 2, ExportPowerMW: 2, ContractPowerKW: 500,
			Model: "fixed", FixedPricePLNPerMWh: 300,
		},
		Fiscal:          RawFiscalForm{VATPct: 23, ExcisePLNPerMWh: 5},
		ArbitragePolicy: RawArbitragePolicyForm{CyclesPerDay: 1, BaseMinProfit: 50},
		KParameter: RawKParameterForm{
			Thresholds: [3]float64{5, 10, 15},
			A:          map[string]float64{"K1": 0.17, "K2": 0.5, "K3": 0.83, "K4": 1.0},
		},
		DistSchedules:    distSchedules,
		PeakFeeSchedules: peakFeeSchedules,
		DistRates:        distRates,
	}
}

func TestConsolidate_Success(t *testing.T) {
	cons, err := Consolidate(fullForms())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cons.BESS.EmaxArbi != 3 {
		t.Errorf("EmaxArbi = %v, want 3", cons.BESS.EmaxArbi)
	}
	if cons.BESS.EmaxOze != 7 {
		t.Errorf("EmaxOze = %v, want 7", cons.BESS.EmaxOze)
	}
	if cons.Contract.DeltaFraction != 0 {
		t.Errorf("DeltaFraction = %v, want 0", cons.Contract.DeltaFraction)
	}
	if len(cons.DistSchedule) != 3*12*2 {
		t.Errorf("len(DistSchedule) = %d, want %d", len(cons.DistSchedule), 3*12*2)
	}
	if len(cons.DistRates) != 3 {
		t.Errorf("len(DistRates) = %d, want 3", len(cons.DistRates))
	}
}

func TestConsolidate_MissingDistScheduleRowFails(t *testing.T) {
	forms := fullForms()
	forms.DistSchedules = forms.DistSchedules[1:] // drop one (tariff,month,mode) row
	if _, err := Consolidate(forms); err == nil {
		t.Fatalf("expected error for incomplete distribution schedule")
	}
}

func TestConsolidate_UnknownTariffInDistRatesFails(t *testing.T) {
	forms := fullForms()
	forms.DistRates[0].Tariff = "B99"
	if _, err := Consolidate(forms); err == nil {
		t.Fatalf("expected error for unknown tariff in dist_rates")
	}
}

func TestConsolidate_BadContractModelFails(t *testing.T) {
	forms := fullForms()
	forms.Contract.Model = "bogus"
	if _, err := Consolidate(forms); err == nil {
		t.Fatalf("expected error for unknown contract model")
	}
}
