package proposer

import (
	"testing"
	"time"

	"energy-core/internal/model"
)

func buildDayRows(importPrice, exportPrice func(hour int) float64) []model.HourRow {
	rows := make([]model.HourRow, 24)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24; h++ {
		rows[h] = model.HourRow{
			Calendar: model.HourStamp{
				TSUTC:   day.Add(time.Duration(h) * time.Hour),
				TSLocal: day.Add(time.Duration(h) * time.Hour),
				Year:    2026, Month: time.March, Day: 2, Hour: h,
			},
			PriceImport: importPrice(h),
			PriceExport: exportPrice(h),
		}
	}
	return rows
}

func TestPropose_SingleArbitrageCycle(t *testing.T) {
	rows := buildDayRows(
		func(h int) float64 {
			if h == 3 || h == 4 {
				return 100
			}
			return 1000
		},
		func(h int) float64 {
			if h == 18 || h == 19 {
				return 500
			}
			return 0
		},
	)

	bess := model.BESSConfig{
		EmaxArbi:        1,
		EtaCh:           1,
		EtaDis:          1,
		CapBessChNet:    10,
		CapBessDisNet:   10,
		CapGridImportAC: 10,
		CapGridExportAC: 10,
	}
	policy := model.ArbitragePolicy{
		CyclesPerDay:  1,
		BaseMinProfit: 50,
	}

	out, err := Propose(rows, policy, bess, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out[3].PropChAC != 1 {
		t.Errorf("prop_ch_ac at hour 3 = %v, want 1", out[3].PropChAC)
	}
	if out[3].PairLow != 18 {
		t.Errorf("pair_low[3] = %v, want 18", out[3].PairLow)
	}
	if out[18].PropDisAC != 1 {
		t.Errorf("prop_dis_ac at hour 18 = %v, want 1", out[18].PropDisAC)
	}
	if out[18].CycleCount != 1 {
		t.Errorf("cycle count at hour 18 = %v, want 1", out[18].CycleCount)
	}

	for h := 0; h < 24; h++ {
		if h == 3 || h == 18 {
			continue
		}
		if out[h].PropChAC != 0 || out[h].PropDisAC != 0 {
			t.Errorf("hour %d: unexpected proposal ch=%v dis=%v", h, out[h].PropChAC, out[h].PropDisAC)
		}
	}
}

func TestPropose_SOCBonusActivation(t *testing.T) {
	// S5: soc_arbi = 0.05*emax_arbi, p_low=10%, soc_bonus_ch=30, base_min_profit=50
	// => thr_low = 80. Delta=85 enables CH; delta=70 does not.
	bess := model.BESSConfig{
		EmaxArbi:        1,
		EtaCh:           1,
		EtaDis:          1,
		CapBessChNet:    10,
		CapBessDisNet:   10,
		CapGridImportAC: 10,
		CapGridExportAC: 10,
	}
	policy := model.ArbitragePolicy{
		CyclesPerDay:  1,
		BaseMinProfit: 50,
		PLow:          0.10,
		SOCBonusCh:    30,
	}
	initialSOC := 0.05 * bess.EmaxArbi

	enables := func(importPrice, exportPrice float64) model.ProposerRow {
		rows := buildDayRows(
			func(h int) float64 {
				if h == 3 {
					return importPrice
				}
				return 1000
			},
			func(h int) float64 {
				if h == 18 {
					return exportPrice
				}
				return 0
			},
		)
		out, err := Propose(rows, policy, bess, initialSOC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return out[3]
	}

	withDelta85 := enables(15, 100) // export 100 - import 15 = 85
	if withDelta85.ThrLow != 80 {
		t.Fatalf("thr_low = %v, want 80", withDelta85.ThrLow)
	}
	if !withDelta85.DecCh {
		t.Errorf("delta=85 >= thr_low=80: expected charge decision to fire")
	}

	withDelta70 := enables(30, 100) // export 100 - import 30 = 70
	if withDelta70.DecCh {
		t.Errorf("delta=70 < thr_low=80: expected charge decision NOT to fire")
	}
}
